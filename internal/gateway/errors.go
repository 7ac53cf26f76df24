package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork matches every failure to get a 2xx answer from the back end:
	// transport errors, timeouts and non-2xx statuses.
	ErrNetwork = errors.New("gateway: back end unavailable or rejected the request")

	// ErrNotFound matches a 404 from the back end.
	ErrNotFound = errors.New("gateway: record not found")
)

// RequestError is a non-2xx response from the back end.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("backend %s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return true
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// transportError wraps a failure below HTTP (dial, timeout, cancelled context, bad JSON).
type transportError struct {
	op  string
	err error
}

func (e *transportError) Error() string        { return fmt.Sprintf("backend %s: %v", e.op, e.err) }
func (e *transportError) Unwrap() error        { return e.err }
func (e *transportError) Is(target error) bool { return target == ErrNetwork }
