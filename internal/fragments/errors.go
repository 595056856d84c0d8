package fragments

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRequestFailed matches any *RequestError.
	ErrRequestFailed = errors.New("request failed")
	// ErrNetwork matches any *NetworkError.
	ErrNetwork = errors.New("network error")
	// ErrDecode marks a response body that did not match its declared type.
	ErrDecode = errors.New("decode response")
)

// RequestError reports a non-2xx response from the fragments service.
type RequestError struct {
	Method     string
	Path       string
	Status     int
	StatusText string
	// Message is the service's error message, when the body carried one.
	Message string
}

func (e *RequestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %d %s", e.Method, e.Path, e.Status, e.StatusText)
	if msg := strings.TrimSpace(e.Message); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	return b.String()
}

func (e *RequestError) Is(target error) bool { return target == ErrRequestFailed }

// NetworkError reports a transport-level failure before any response arrived.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// StatusCode extracts the HTTP status from err, or 0 when err is not a
// *RequestError.
func StatusCode(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status
	}
	return 0
}
