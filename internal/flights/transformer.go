package flights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/i474232898/flight-data-pipeline/internal/common"
	"github.com/i474232898/flight-data-pipeline/internal/store"
)

// TransformerConfig names the buckets and the malformed-record policy.
type TransformerConfig struct {
	SourceBucket      string
	DestinationBucket string

	// SkipMalformed drops records with missing sections instead of failing
	// the whole batch.
	SkipMalformed bool
}

// Transformer turns a raw daily snapshot into the processed CSV.
type Transformer struct {
	store Store
	cfg   TransformerConfig
	clock Clock
	log   zerolog.Logger
}

// NewTransformer creates a Transformer.
func NewTransformer(st Store, cfg TransformerConfig, log zerolog.Logger) *Transformer {
	return &Transformer{
		store: st,
		cfg:   cfg,
		log:   log.With().Str("job", "transform").Logger(),
	}
}

// WithClock overrides the clock used when no date is given.
func (t *Transformer) WithClock(c Clock) *Transformer {
	t.clock = c
	return t
}

// Run transforms the snapshot for date (YYYY-MM-DD, today in UTC when empty).
// The destination is written only when every step succeeded.
func (t *Transformer) Run(ctx context.Context, date string) Result {
	runID := uuid.NewString()
	if date == "" {
		date = t.clock.today()
	}
	log := t.log.With().Str("run_id", runID).Str("date", date).Logger()

	if !common.ValidPartitionDate(date) {
		err := fmt.Errorf("%w: %q", errInvalidDate, date)
		log.Error().Err(err).Msg("transform rejected")
		return failed(runID, err)
	}

	srcKey, dstKey := RawKey(date), ProcessedKey(date)

	raw, err := t.store.Get(ctx, t.cfg.SourceBucket, srcKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			err = fmt.Errorf("%w: %s/%s", ErrBlobNotFound, t.cfg.SourceBucket, srcKey)
		}
		log.Error().Err(err).Str("key", srcKey).Msg("read snapshot")
		return failed(runID, err)
	}

	rows, err := t.Transform(raw)
	if err != nil {
		log.Error().Err(err).Str("key", srcKey).Msg("transform aborted")
		return failed(runID, err)
	}

	body, err := MarshalRows(rows)
	if err != nil {
		log.Error().Err(err).Msg("encode csv")
		return failed(runID, err)
	}

	if err := t.store.Put(ctx, t.cfg.DestinationBucket, dstKey, body, "text/csv"); err != nil {
		log.Error().Err(err).Str("key", dstKey).Msg("upload csv")
		return failed(runID, err)
	}

	log.Info().Str("key", dstKey).Int("rows", len(rows)).Msg("processed data uploaded")
	return succeeded(runID, dstKey, len(rows), "Processed data for %s successfully uploaded to %s", date, dstKey)
}

// Transform decodes a raw snapshot and flattens it into rows, one per record
// in input order.
func (t *Transformer) Transform(raw []byte) ([]Row, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBlobParse, err)
	}

	records := make([]RawFlight, 0, len(items))
	for i, item := range items {
		rec, err := extract(i, item)
		if err != nil {
			if !t.cfg.SkipMalformed {
				return nil, err
			}
			t.log.Warn().Err(err).Int("record", i).Msg("skipping malformed record")
			continue
		}
		records = append(records, rec)
	}

	return buildRows(records), nil
}

// extract decodes one record and checks that its sections are present.
func extract(i int, item json.RawMessage) (RawFlight, error) {
	var rec RawFlight
	if err := json.Unmarshal(item, &rec); err != nil {
		return rec, fmt.Errorf("%w: record %d: %v", ErrFieldExtraction, i, err)
	}

	switch {
	case rec.Departure == nil:
		return rec, fmt.Errorf("%w: record %d: missing departure", ErrFieldExtraction, i)
	case rec.Arrival == nil:
		return rec, fmt.Errorf("%w: record %d: missing arrival", ErrFieldExtraction, i)
	case rec.Flight == nil:
		return rec, fmt.Errorf("%w: record %d: missing flight", ErrFieldExtraction, i)
	}
	return rec, nil
}

// buildRows constructs the whole row set in a single pass.
func buildRows(records []RawFlight) []Row {
	rows := make([]Row, len(records))
	for i := range records {
		rec, row := &records[i], &rows[i]

		row.FlightDate = toDate(rec.FlightDate)

		row.DepartureAirport = rec.Departure.Airport.String()
		row.DepartureIATA = rec.Departure.IATA.String()
		row.DepartureDelay = toInt(rec.Departure.Delay)
		row.DepartureScheduled = toTimestamp(rec.Departure.Scheduled)
		row.DepartureActual = toTimestamp(rec.Departure.Actual)

		row.ArrivalAirport = rec.Arrival.Airport.String()
		row.ArrivalIATA = rec.Arrival.IATA.String()
		row.ArrivalDelay = toInt(rec.Arrival.Delay)
		row.ArrivalScheduled = toTimestamp(rec.Arrival.Scheduled)
		row.ArrivalActual = toTimestamp(rec.Arrival.Actual)

		row.FlightNumber = toInt(rec.Flight.Number)
		row.FlightIATA = rec.Flight.IATA.String()

		row.Year, row.Month, row.Day = datePart(row.FlightDate)
	}
	return rows
}

// MarshalRows renders rows as CSV with a header line.
func MarshalRows(rows []Row) ([]byte, error) {
	if rows == nil {
		rows = []Row{}
	}
	body, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("marshal csv: %w", err)
	}
	return body, nil
}
