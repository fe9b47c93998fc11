package httpapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/flight-data-pipeline/internal/flights"
)

var validate = validator.New()

// RegisterRoutes wires the job triggers into the Fiber app. Request bodies
// are accepted and ignored; the invoker only sees the job result.
func RegisterRoutes(app *fiber.App, fetcher flights.FetchJob, transformer flights.TransformJob) {
	v1 := app.Group("/api/v1")

	v1.Post("/jobs/fetch", func(c *fiber.Ctx) error {
		res := fetcher.Run(c.UserContext())
		return c.Status(res.HTTPStatus()).JSON(res)
	})

	v1.Post("/jobs/transform", func(c *fiber.Ctx) error {
		var q transformQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res := transformer.Run(c.UserContext(), q.Date)
		return c.Status(res.HTTPStatus()).JSON(res)
	})
}

// transformQuery holds query parameters for the transform trigger.
type transformQuery struct {
	Date string `validate:"omitempty,datetime=2006-01-02"`
}

func (q *transformQuery) bind(c *fiber.Ctx) error {
	q.Date = c.Query("date")
	return validate.Struct(q)
}
