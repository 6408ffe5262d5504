// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrRequestFailed matches every failed catalog request via errors.Is.
	ErrRequestFailed = errors.New("catalog request failed")

	// ErrBlankQuery is returned when Search is called with blank text.
	// Callers are expected to check before calling.
	ErrBlankQuery = errors.New("search text is blank")
)

// Operation names used in errors, logs and metrics.
const (
	OpSearch = "search"
	OpDetail = "detail"
)

// RequestFailedError reports a failed search or detail request. Its message
// is generic; the transport detail is only reachable through
// Unwrap and StatusCode for logging.
type RequestFailedError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RequestFailedError) Error() string {
	if e.Op == OpDetail {
		return "failed to fetch work details"
	}
	return "search failed"
}

// Unwrap returns the underlying cause, if any.
func (e *RequestFailedError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrRequestFailed) match.
func (e *RequestFailedError) Is(target error) bool { return target == ErrRequestFailed }

// Detail describes the cause for log output.
func (e *RequestFailedError) Detail() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.StatusCode != 0:
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	default:
		return "unknown"
	}
}
