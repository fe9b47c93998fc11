package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// AccessLog logs method, path, status, elapsed time and response size for
// every request.
func AccessLog(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		evt := log.Info()
		if status >= fiber.StatusInternalServerError {
			evt = log.Warn()
		}
		evt.Int("status", status).
			Dur("elapsed", time.Since(start)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("bytes", len(c.Response().Body())).
			Msg("request done")

		return err
	}
}
