package flights

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/i474232898/flight-data-pipeline/internal/common"
)

// PageSource abstracts the paginated upstream flight API.
type PageSource interface {
	Page(ctx context.Context, offset, limit int) ([]json.RawMessage, error)
}

// FetchJob is the fetch half of the pipeline as seen by its invokers.
type FetchJob interface {
	Run(ctx context.Context) Result
}

// TransformJob is the transform half of the pipeline as seen by its invokers.
type TransformJob interface {
	Run(ctx context.Context, date string) Result
}

// Store is the object storage both jobs write to. Get must report a missing
// object with store.ErrNotFound.
type Store interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
}

// RawKey is the partition key of the raw snapshot for a date.
func RawKey(date string) string {
	return fmt.Sprintf("flights_data/date=%s/data.json", date)
}

// ProcessedKey is the partition key of the processed CSV for a date.
func ProcessedKey(date string) string {
	return fmt.Sprintf("processed_flights_data/date=%s/processed_data.csv", date)
}

// Clock returns the current time. Partition dates are taken from it in UTC.
type Clock func() time.Time

func (c Clock) today() string {
	if c == nil {
		return common.PartitionDate(time.Now())
	}
	return common.PartitionDate(c())
}
