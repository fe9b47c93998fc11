package flights

import "errors"

// Failure kinds reported by the fetch and transform jobs. Wrapped errors keep
// the kind reachable through errors.Is.
var (
	ErrUpstreamRequest = errors.New("upstream request failed")
	ErrUpstreamParse   = errors.New("upstream response malformed")
	ErrBlobNotFound    = errors.New("source blob not found")
	ErrBlobParse       = errors.New("source blob malformed")
	ErrFieldExtraction = errors.New("field extraction failed")

	errInvalidDate = errors.New("invalid partition date")
)
