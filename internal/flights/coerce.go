package flights

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout       = "2006-01-02"
	timestampLayout  = "2006-01-02 15:04:05"
	timestampZLayout = "2006-01-02 15:04:05-07:00"
)

// inputLayouts are tried in order. zoned marks layouts that carry an offset.
var inputLayouts = []struct {
	layout string
	zoned  bool
}{
	{time.RFC3339Nano, true},
	{"2006-01-02 15:04:05Z07:00", true},
	{"2006-01-02T15:04:05.999999999", false},
	{"2006-01-02 15:04:05.999999999", false},
	{dateLayout, false},
}

// toInt coerces a numeric or numeric-looking field to an integer, truncating
// decimals. Anything unparseable or missing becomes 0.
func toInt(f Field) int {
	if !f.Valid {
		return 0
	}
	s := strings.TrimSpace(f.Text)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return int(n)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v >= math.MaxInt64 || v <= math.MinInt64 {
		return 0
	}
	return int(v)
}

// parseTime returns the parsed instant and whether the input carried a zone.
func parseTime(f Field) (time.Time, bool, bool) {
	if !f.Valid {
		return time.Time{}, false, false
	}
	s := strings.TrimSpace(f.Text)
	if s == "" {
		return time.Time{}, false, false
	}
	for _, l := range inputLayouts {
		if ts, err := time.Parse(l.layout, s); err == nil {
			return ts, l.zoned, true
		}
	}
	return time.Time{}, false, false
}

// toDate parses a calendar date. Invalid input yields no value.
func toDate(f Field) NullTime {
	ts, _, ok := parseTime(f)
	if !ok {
		return NullTime{}
	}
	return NullTime{Time: ts, Valid: true, layout: dateLayout}
}

// toTimestamp parses a timestamp. Invalid input yields no value.
func toTimestamp(f Field) NullTime {
	ts, zoned, ok := parseTime(f)
	if !ok {
		return NullTime{}
	}
	layout := timestampLayout
	if zoned {
		layout = timestampZLayout
	}
	return NullTime{Time: ts, Valid: true, layout: layout}
}

// datePart derives year, month and day. All three are empty when d is.
func datePart(d NullTime) (year, month, day NullInt) {
	if !d.Valid {
		return NullInt{}, NullInt{}, NullInt{}
	}
	return NullInt{Int: d.Time.Year(), Valid: true},
		NullInt{Int: int(d.Time.Month()), Valid: true},
		NullInt{Int: d.Time.Day(), Valid: true}
}
