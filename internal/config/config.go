package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/flight-data-pipeline/internal/flights"
	"github.com/i474232898/flight-data-pipeline/internal/flights/providers"
)

const (
	BackendS3     = "s3"
	BackendMemory = "memory"
)

type AppConfig struct {
	APIBaseURL   string `validate:"required,url"`
	APIAccessKey string `validate:"required"`

	// Pagination of the upstream API.
	PageSize  int `validate:"min=1"`
	RecordCap int `validate:"min=1"`

	HTTPTimeout time.Duration `validate:"gt=0"`

	RawBucket       string `validate:"required"`
	ProcessedBucket string `validate:"required"`

	BlobBackend      string `validate:"oneof=s3 memory"`
	AWSRegion        string `validate:"required_if=BlobBackend s3"`
	S3Endpoint       string `validate:"omitempty,url"`
	S3ForcePathStyle bool

	// Daily schedule, HH:MM in UTC.
	SchedulerEnabled bool
	FetchAt          string `validate:"datetime=15:04"`
	TransformAt      string `validate:"datetime=15:04"`

	SkipMalformed bool

	Port      string `validate:"required,numeric"`
	LogLevel  string `validate:"oneof=trace debug info warn error"`
	LogFormat string `validate:"oneof=json console"`
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults. A .env
// file in the working directory is loaded first when present.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.APIBaseURL = getenvDefault("AVIATIONSTACK_API_URL", providers.DefaultAviationstackURL)
	cfg.APIAccessKey = os.Getenv("AVIATIONSTACK_ACCESS_KEY")

	cfg.PageSize = getenvInt("FETCH_PAGE_SIZE", flights.DefaultPageSize)
	cfg.RecordCap = getenvInt("FETCH_RECORD_CAP", flights.DefaultRecordCap)

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.RawBucket = getenvDefault("RAW_BUCKET", "flights-buckets")
	cfg.ProcessedBucket = getenvDefault("PROCESSED_BUCKET", "processed-flights-buckets")

	cfg.BlobBackend = strings.ToLower(getenvDefault("BLOB_BACKEND", BackendS3))
	cfg.AWSRegion = getenvDefault("AWS_REGION", os.Getenv("AWS_DEFAULT_REGION"))
	cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.S3ForcePathStyle = getenvBool("S3_FORCE_PATH_STYLE", false)

	cfg.SchedulerEnabled = getenvBool("SCHEDULER_ENABLED", true)
	cfg.FetchAt = getenvDefault("FETCH_AT", "00:30")
	cfg.TransformAt = getenvDefault("TRANSFORM_AT", "01:00")

	cfg.SkipMalformed = getenvBool("TRANSFORM_SKIP_MALFORMED", false)

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "info"))
	cfg.LogFormat = strings.ToLower(getenvDefault("LOG_FORMAT", "json"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags above.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// FetcherConfig is the slice of configuration the fetch job needs.
func (c *AppConfig) FetcherConfig() flights.FetcherConfig {
	return flights.FetcherConfig{
		PageSize:  c.PageSize,
		RecordCap: c.RecordCap,
		Bucket:    c.RawBucket,
	}
}

// TransformerConfig is the slice of configuration the transform job needs.
func (c *AppConfig) TransformerConfig() flights.TransformerConfig {
	return flights.TransformerConfig{
		SourceBucket:      c.RawBucket,
		DestinationBucket: c.ProcessedBucket,
		SkipMalformed:     c.SkipMalformed,
	}
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err == nil {
			return b
		}
	}
	return def
}
