package common

import (
	"strings"
	"time"
)

// DateLayout is the layout of the date in every partition key.
const DateLayout = "2006-01-02"

// PartitionDate formats t as a partition date. Dates are always taken in UTC
// so the fetch and transform jobs agree wherever they run.
func PartitionDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ValidPartitionDate reports whether s is a well-formed partition date.
func ValidPartitionDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
