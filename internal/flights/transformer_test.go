package flights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/flight-data-pipeline/internal/store"
)

const (
	processedBucket = "processed"
	testDate        = "2024-01-01"

	header = "flight_date,departure_airport,departure_iata,departure_delay,departure_scheduled," +
		"departure_actual,arrival_airport,arrival_iata,arrival_delay,arrival_scheduled,arrival_actual," +
		"flight_number,flight_iata,year,month,day"

	sampleRecord = `{"flight_date":"2024-01-01",` +
		`"departure":{"airport":"JFK","iata":"JFK","delay":"5","scheduled":"2024-01-01T10:00:00","actual":"2024-01-01T10:05:00"},` +
		`"arrival":{"airport":"LAX","iata":"LAX","delay":null,"scheduled":"2024-01-01T13:00:00","actual":null},` +
		`"flight":{"number":"101","iata":"AA101"}}`
)

func newTestTransformer(st Store, skip bool) *Transformer {
	return NewTransformer(st, TransformerConfig{
		SourceBucket:      rawBucket,
		DestinationBucket: processedBucket,
		SkipMalformed:     skip,
	}, zerolog.Nop()).WithClock(fixedClock(fixedNow))
}

func seed(t *testing.T, st *store.MemoryStore, date, body string) {
	t.Helper()
	require.NoError(t, st.Put(context.Background(), rawBucket, RawKey(date), []byte(body), "application/json"))
}

func csvLines(t *testing.T, st *store.MemoryStore, date string) []string {
	t.Helper()
	obj, err := st.Object(processedBucket, ProcessedKey(date))
	require.NoError(t, err)
	assert.Equal(t, "text/csv", obj.ContentType)
	return strings.Split(strings.TrimSuffix(string(obj.Body), "\n"), "\n")
}

// TestTransformerEndToEnd verifies a single record is flattened and typed.
func TestTransformerEndToEnd(t *testing.T) {
	st := store.NewMemoryStore()
	seed(t, st, testDate, "["+sampleRecord+"]")

	res := newTestTransformer(st, false).Run(context.Background(), testDate)
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, "processed_flights_data/date=2024-01-01/processed_data.csv", res.Key)
	assert.Equal(t, 1, res.Records)

	lines := csvLines(t, st, testDate)
	require.Len(t, lines, 2)
	assert.Equal(t, header, lines[0])
	assert.Equal(t,
		"2024-01-01,JFK,JFK,5,2024-01-01 10:00:00,2024-01-01 10:05:00,LAX,LAX,0,2024-01-01 13:00:00,,101,AA101,2024,1,1",
		lines[1])
}

func TestTransformRowValues(t *testing.T) {
	rows, err := newTestTransformer(store.NewMemoryStore(), false).Transform([]byte("[" + sampleRecord + "]"))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	r := rows[0]
	assert.Equal(t, "JFK", r.DepartureAirport)
	assert.Equal(t, 5, r.DepartureDelay)
	assert.Equal(t, 0, r.ArrivalDelay)
	assert.Equal(t, 101, r.FlightNumber)
	assert.Equal(t, "AA101", r.FlightIATA)
	assert.False(t, r.ArrivalActual.Valid)
	assert.Equal(t, NullInt{Int: 2024, Valid: true}, r.Year)
	assert.Equal(t, NullInt{Int: 1, Valid: true}, r.Month)
	assert.Equal(t, NullInt{Int: 1, Valid: true}, r.Day)
}

func TestTransformDerivesPartitionColumns(t *testing.T) {
	rec := `{"flight_date":"2024-03-15","departure":{},"arrival":{},"flight":{}}`

	rows, err := newTestTransformer(store.NewMemoryStore(), false).Transform([]byte("[" + rec + "]"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2024, rows[0].Year.Int)
	assert.Equal(t, 3, rows[0].Month.Int)
	assert.Equal(t, 15, rows[0].Day.Int)
}

// TestTransformCoercesDelays covers numeric, textual and missing delays.
func TestTransformCoercesDelays(t *testing.T) {
	recs := []string{
		`{"departure":{"delay":"12"},"arrival":{"delay":7},"flight":{"number":42}}`,
		`{"departure":{"delay":"N/A"},"arrival":{},"flight":{"number":null}}`,
		`{"departure":{"delay":null},"arrival":{"delay":"3.0"},"flight":{}}`,
	}

	rows, err := newTestTransformer(store.NewMemoryStore(), false).Transform([]byte("[" + strings.Join(recs, ",") + "]"))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []int{12, 0, 0}, []int{rows[0].DepartureDelay, rows[1].DepartureDelay, rows[2].DepartureDelay})
	assert.Equal(t, []int{7, 0, 3}, []int{rows[0].ArrivalDelay, rows[1].ArrivalDelay, rows[2].ArrivalDelay})
	assert.Equal(t, []int{42, 0, 0}, []int{rows[0].FlightNumber, rows[1].FlightNumber, rows[2].FlightNumber})

	for _, r := range rows {
		assert.False(t, r.FlightDate.Valid)
		assert.False(t, r.Year.Valid)
	}
}

// TestTransformKeepsEveryRecordInOrder verifies no record is dropped.
func TestTransformKeepsEveryRecordInOrder(t *testing.T) {
	recs := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		recs = append(recs, fmt.Sprintf(
			`{"flight_date":"2024-01-01","departure":{"iata":"D%d"},"arrival":{},"flight":{"number":"%d"}}`, i, i))
	}

	rows, err := newTestTransformer(store.NewMemoryStore(), false).Transform([]byte("[" + strings.Join(recs, ",") + "]"))
	require.NoError(t, err)
	require.Len(t, rows, 50)
	for i, r := range rows {
		assert.Equal(t, i, r.FlightNumber)
		assert.Equal(t, fmt.Sprintf("D%d", i), r.DepartureIATA)
	}
}

func TestTransformerEmptySnapshotWritesHeaderOnly(t *testing.T) {
	st := store.NewMemoryStore()
	seed(t, st, testDate, "[]")

	res := newTestTransformer(st, false).Run(context.Background(), testDate)
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, 0, res.Records)
	assert.Equal(t, []string{header}, csvLines(t, st, testDate))
}

// TestTransformerInvalidJSONWritesNothing verifies a malformed blob aborts
// the run before the destination is touched.
func TestTransformerInvalidJSONWritesNothing(t *testing.T) {
	st := store.NewMemoryStore()
	seed(t, st, testDate, `[{"flight_date":`)
	before := st.Puts()

	res := newTestTransformer(st, false).Run(context.Background(), testDate)
	assert.False(t, res.OK())
	assert.Equal(t, 500, res.HTTPStatus())
	assert.Equal(t, before, st.Puts())
	assert.Empty(t, st.Keys(processedBucket))
}

func TestTransformerMissingBlob(t *testing.T) {
	st := store.NewMemoryStore()

	res := newTestTransformer(st, false).Run(context.Background(), testDate)
	assert.False(t, res.OK())
	assert.Contains(t, res.Message, ErrBlobNotFound.Error())
	assert.Equal(t, 0, st.Puts())
}

func TestTransformErrorKinds(t *testing.T) {
	tr := newTestTransformer(store.NewMemoryStore(), false)

	_, err := tr.Transform([]byte(`{"data":[]}`))
	assert.True(t, errors.Is(err, ErrBlobParse))

	_, err = tr.Transform([]byte(`not json`))
	assert.True(t, errors.Is(err, ErrBlobParse))

	for _, rec := range []string{
		`{"flight_date":"2024-01-01","arrival":{},"flight":{}}`,
		`{"flight_date":"2024-01-01","departure":null,"arrival":{},"flight":{}}`,
		`{"flight_date":"2024-01-01","departure":{},"arrival":{}}`,
		`{"flight_date":"2024-01-01","departure":"JFK","arrival":{},"flight":{}}`,
		`42`,
		`null`,
	} {
		_, err := tr.Transform([]byte("[" + sampleRecord + "," + rec + "]"))
		require.Error(t, err, rec)
		assert.True(t, errors.Is(err, ErrFieldExtraction), rec)
		assert.Contains(t, err.Error(), "record 1", rec)
	}
}

// TestTransformerMalformedRecordAbortsBatch verifies one bad record fails the
// whole run by default.
func TestTransformerMalformedRecordAbortsBatch(t *testing.T) {
	st := store.NewMemoryStore()
	seed(t, st, testDate, "["+sampleRecord+`,{"flight_date":"2024-01-01"}]`)

	res := newTestTransformer(st, false).Run(context.Background(), testDate)
	assert.False(t, res.OK())
	assert.Contains(t, res.Message, "missing departure")
	assert.Empty(t, st.Keys(processedBucket))
}

func TestTransformerSkipMalformed(t *testing.T) {
	st := store.NewMemoryStore()
	seed(t, st, testDate, "["+sampleRecord+`,{"flight_date":"2024-01-01"},`+sampleRecord+"]")

	res := newTestTransformer(st, true).Run(context.Background(), testDate)
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, 2, res.Records)
	assert.Len(t, csvLines(t, st, testDate), 3)
}

func TestTransformerDefaultsToToday(t *testing.T) {
	st := store.NewMemoryStore()
	seed(t, st, "2024-03-15", "[]")

	res := newTestTransformer(st, false).Run(context.Background(), "")
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, ProcessedKey("2024-03-15"), res.Key)
}

func TestTransformerRejectsBadDate(t *testing.T) {
	st := store.NewMemoryStore()

	for _, d := range []string{"2024-1-1", "15/03/2024", "2024-02-30", "../../etc"} {
		res := newTestTransformer(st, false).Run(context.Background(), d)
		assert.False(t, res.OK(), d)
	}
	assert.Equal(t, 0, st.Puts())
}

func TestTransformerStoreFailure(t *testing.T) {
	mem := store.NewMemoryStore()
	seed(t, mem, testDate, "[]")

	res := newTestTransformer(failingPutStore{mem}, false).Run(context.Background(), testDate)
	assert.False(t, res.OK())
	assert.Contains(t, res.Message, "access denied")
}

func TestMarshalRowsNil(t *testing.T) {
	body, err := MarshalRows(nil)
	require.NoError(t, err)
	assert.Equal(t, header+"\n", string(body))
	assert.Equal(t, header, strings.Join(Columns, ","))
}
