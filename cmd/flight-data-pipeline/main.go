package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	httpapi "github.com/i474232898/flight-data-pipeline/internal/api/http"
	"github.com/i474232898/flight-data-pipeline/internal/config"
	"github.com/i474232898/flight-data-pipeline/internal/flights"
	"github.com/i474232898/flight-data-pipeline/internal/flights/providers"
	"github.com/i474232898/flight-data-pipeline/internal/logger"
	"github.com/i474232898/flight-data-pipeline/internal/scheduler"
	"github.com/i474232898/flight-data-pipeline/internal/store"
)

const usage = `usage: flight-data-pipeline [serve | fetch | transform [-date YYYY-MM-DD]]`

func main() {
	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "flight-data-pipeline",
	})

	fetcher, transformer, err := build(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build pipeline")
	}

	switch cmd {
	case "serve":
		serve(cfg, fetcher, transformer, log)
	case "fetch":
		os.Exit(printResult(fetcher.Run(context.Background())))
	case "transform":
		fs := flag.NewFlagSet("transform", flag.ExitOnError)
		date := fs.String("date", "", "partition date YYYY-MM-DD (default: today, UTC)")
		_ = fs.Parse(args)
		os.Exit(printResult(transformer.Run(context.Background(), *date)))
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
}

// build wires both jobs against the configured object store. The store and
// HTTP client are created once and shared by every invocation.
func build(cfg *config.AppConfig) (*flights.Fetcher, *flights.Transformer, error) {
	var blobs flights.Store
	switch cfg.BlobBackend {
	case config.BackendMemory:
		blobs = store.NewMemoryStore()
	default:
		s3Store, err := store.NewS3Store(store.S3Config{
			Region:         cfg.AWSRegion,
			Endpoint:       cfg.S3Endpoint,
			ForcePathStyle: cfg.S3ForcePathStyle,
		})
		if err != nil {
			return nil, nil, err
		}
		blobs = s3Store
	}

	// Shared HTTP client for outbound API calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	source := providers.NewAviationstackProvider(httpClient, cfg.APIBaseURL, cfg.APIAccessKey)

	fetcher := flights.NewFetcher(source, blobs, cfg.FetcherConfig(), logger.Named("fetcher"))
	transformer := flights.NewTransformer(blobs, cfg.TransformerConfig(), logger.Named("transformer"))
	return fetcher, transformer, nil
}

func serve(cfg *config.AppConfig, fetcher *flights.Fetcher, transformer *flights.Transformer, log zerolog.Logger) {
	if cfg.SchedulerEnabled {
		sched := scheduler.New(fetcher, transformer, cfg.FetchAt, cfg.TransformAt, logger.Named("scheduler"))
		if err := sched.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start scheduler")
		}
		defer sched.Stop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "flight-data-pipeline",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Jobs run inside the request.
		WriteTimeout: 10 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"status":  flights.StatusFailure,
				"message": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(httpapi.AccessLog(logger.Named("http")))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "flight-data-pipeline",
		})
	})

	httpapi.RegisterRoutes(app, fetcher, transformer)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("listening")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}

// printResult writes the result as JSON and returns the process exit code.
func printResult(res flights.Result) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(res)
	if !res.OK() {
		return 1
	}
	return 0
}
