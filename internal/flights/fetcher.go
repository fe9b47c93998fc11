package flights

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultPageSize  = 100
	DefaultRecordCap = 500
)

// FetcherConfig controls pagination and where the snapshot is written.
type FetcherConfig struct {
	PageSize  int
	RecordCap int
	Bucket    string
}

// Fetcher pages through the upstream API and stores the raw snapshot for the
// current UTC date.
type Fetcher struct {
	source PageSource
	store  Store
	cfg    FetcherConfig
	clock  Clock
	log    zerolog.Logger
}

// NewFetcher creates a Fetcher. Non-positive page size or cap fall back to the defaults.
func NewFetcher(source PageSource, st Store, cfg FetcherConfig, log zerolog.Logger) *Fetcher {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.RecordCap <= 0 {
		cfg.RecordCap = DefaultRecordCap
	}
	return &Fetcher{
		source: source,
		store:  st,
		cfg:    cfg,
		log:    log.With().Str("job", "fetch").Logger(),
	}
}

// WithClock overrides the clock used for the partition date.
func (f *Fetcher) WithClock(c Clock) *Fetcher {
	f.clock = c
	return f
}

// Run performs one fetch invocation. Nothing is written unless every page
// request succeeded.
func (f *Fetcher) Run(ctx context.Context) Result {
	runID := uuid.NewString()
	log := f.log.With().Str("run_id", runID).Logger()

	date := f.clock.today()
	key := RawKey(date)

	records, err := f.collect(ctx, log)
	if err != nil {
		log.Error().Err(err).Msg("fetch aborted")
		return failed(runID, err)
	}

	body, err := json.Marshal(records)
	if err != nil {
		log.Error().Err(err).Msg("encode snapshot")
		return failed(runID, err)
	}

	if err := f.store.Put(ctx, f.cfg.Bucket, key, body, "application/json"); err != nil {
		log.Error().Err(err).Str("key", key).Msg("upload snapshot")
		return failed(runID, err)
	}

	log.Info().Str("key", key).Int("records", len(records)).Msg("snapshot uploaded")
	return succeeded(runID, key, len(records), "Data for %s successfully uploaded to %s", date, key)
}

// collect accumulates records until the cap is reached or the upstream
// returns an empty page. At most ceil(cap/pageSize) pages are requested.
func (f *Fetcher) collect(ctx context.Context, log zerolog.Logger) ([]json.RawMessage, error) {
	var (
		limit    = f.cfg.PageSize
		maxPages = (f.cfg.RecordCap + limit - 1) / limit
		records  = make([]json.RawMessage, 0, f.cfg.RecordCap)
		offset   int
	)

	for page := 0; page < maxPages; page++ {
		batch, err := f.source.Page(ctx, offset, limit)
		if err != nil {
			return nil, fmt.Errorf("page at offset %d: %w", offset, err)
		}

		log.Debug().Int("offset", offset).Int("records", len(batch)).Msg("page received")

		if len(batch) == 0 {
			break
		}

		records = append(records, batch...)
		if len(records) >= f.cfg.RecordCap {
			records = records[:f.cfg.RecordCap]
			break
		}

		offset += limit
	}

	return records, nil
}
