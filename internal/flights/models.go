package flights

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Field is a scalar leaf of a raw flight record. The upstream API mixes
// strings, numbers and nulls for the same key, so the literal is kept as text
// and typed later during coercion. Valid is false for null or absent keys.
type Field struct {
	Text  string
	Valid bool
}

// UnmarshalJSON keeps strings unquoted and any other literal verbatim.
func (f *Field) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = Field{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = Field{Text: s, Valid: true}
		return nil
	}
	*f = Field{Text: string(b), Valid: true}
	return nil
}

// String returns the text of the field, or "" when it holds no value.
func (f Field) String() string {
	if !f.Valid {
		return ""
	}
	return f.Text
}

// Endpoint is the departure or arrival section of a raw record.
type Endpoint struct {
	Airport   Field `json:"airport"`
	IATA      Field `json:"iata"`
	Delay     Field `json:"delay"`
	Scheduled Field `json:"scheduled"`
	Actual    Field `json:"actual"`
}

// FlightIdent is the flight section of a raw record.
type FlightIdent struct {
	Number Field `json:"number"`
	IATA   Field `json:"iata"`
}

// RawFlight is the subset of an upstream flight record the transform reads.
// Nested sections are pointers so a missing section is detectable.
type RawFlight struct {
	FlightDate Field        `json:"flight_date"`
	Departure  *Endpoint    `json:"departure"`
	Arrival    *Endpoint    `json:"arrival"`
	Flight     *FlightIdent `json:"flight"`
}

// NullTime is a parsed date or timestamp that may hold no value. It renders
// with the layout chosen when it was parsed.
type NullTime struct {
	Time   time.Time
	Valid  bool
	layout string
}

// MarshalCSV renders an empty cell when there is no value.
func (t NullTime) MarshalCSV() (string, error) {
	if !t.Valid {
		return "", nil
	}
	return t.Time.Format(t.layout), nil
}

// NullInt is an integer that may hold no value.
type NullInt struct {
	Int   int
	Valid bool
}

// MarshalCSV renders an empty cell when there is no value.
func (n NullInt) MarshalCSV() (string, error) {
	if !n.Valid {
		return "", nil
	}
	return strconv.Itoa(n.Int), nil
}

// Row is one flattened flight. Field order is the CSV column order.
type Row struct {
	FlightDate         NullTime `csv:"flight_date"`
	DepartureAirport   string   `csv:"departure_airport"`
	DepartureIATA      string   `csv:"departure_iata"`
	DepartureDelay     int      `csv:"departure_delay"`
	DepartureScheduled NullTime `csv:"departure_scheduled"`
	DepartureActual    NullTime `csv:"departure_actual"`
	ArrivalAirport     string   `csv:"arrival_airport"`
	ArrivalIATA        string   `csv:"arrival_iata"`
	ArrivalDelay       int      `csv:"arrival_delay"`
	ArrivalScheduled   NullTime `csv:"arrival_scheduled"`
	ArrivalActual      NullTime `csv:"arrival_actual"`
	FlightNumber       int      `csv:"flight_number"`
	FlightIATA         string   `csv:"flight_iata"`

	// Partition columns derived from FlightDate.
	Year  NullInt `csv:"year"`
	Month NullInt `csv:"month"`
	Day   NullInt `csv:"day"`
}

// Columns is the fixed CSV header, in order.
var Columns = []string{
	"flight_date",
	"departure_airport",
	"departure_iata",
	"departure_delay",
	"departure_scheduled",
	"departure_actual",
	"arrival_airport",
	"arrival_iata",
	"arrival_delay",
	"arrival_scheduled",
	"arrival_actual",
	"flight_number",
	"flight_iata",
	"year",
	"month",
	"day",
}
