package flights

import (
	"fmt"
	"net/http"
)

// Status is the outcome of a single job invocation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Result is what every job invocation returns to its invoker.
type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Key     string `json:"key,omitempty"`
	Records int    `json:"records"`
}

// HTTPStatus maps the result onto the status code an HTTP invoker expects.
func (r Result) HTTPStatus() int {
	if r.Status == StatusSuccess {
		return http.StatusOK
	}
	return http.StatusInternalServerError
}

// OK reports whether the invocation succeeded.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

func succeeded(runID, key string, records int, format string, args ...any) Result {
	return Result{
		Status:  StatusSuccess,
		Message: fmt.Sprintf(format, args...),
		RunID:   runID,
		Key:     key,
		Records: records,
	}
}

func failed(runID string, err error) Result {
	return Result{
		Status:  StatusFailure,
		Message: fmt.Sprintf("Error: %v", err),
		RunID:   runID,
	}
}
