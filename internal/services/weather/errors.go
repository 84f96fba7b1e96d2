package weather

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrMissingLocation     = errors.New("either city or lat/lon coordinates are required")
	ErrLocationNotFound    = errors.New("location not found")
	ErrInvalidCredentials  = errors.New("invalid API key")
	ErrUpstreamUnavailable = errors.New("error fetching weather data")
)

// UpstreamError describes a failed call to one upstream endpoint. It unwraps
// to the sentinel the failure was classified as.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Err        error
	kind       error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s endpoint returned status %d", e.kind, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s endpoint: %v", e.kind, e.Endpoint, e.Err)
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.Err}
}

func statusError(endpoint string, status int) error {
	return &UpstreamError{Endpoint: endpoint, StatusCode: status, kind: classifyStatus(status)}
}

func transportError(endpoint string, err error) error {
	return &UpstreamError{Endpoint: endpoint, Err: err, kind: ErrUpstreamUnavailable}
}

func classifyStatus(status int) error {
	switch status {
	case http.StatusNotFound:
		return ErrLocationNotFound
	case http.StatusUnauthorized:
		return ErrInvalidCredentials
	default:
		return ErrUpstreamUnavailable
	}
}

// Classify folds any error into one of the upstream sentinels.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrLocationNotFound):
		return ErrLocationNotFound
	case errors.Is(err, ErrInvalidCredentials):
		return ErrInvalidCredentials
	default:
		return ErrUpstreamUnavailable
	}
}
