package gemini

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential means no API key is configured.
	ErrMissingCredential = errors.New("API key not configured")
	// ErrMalformedResponse means the upstream envelope had no candidate content.
	ErrMalformedResponse = errors.New("malformed upstream response")
)

// APIError is a non-2xx answer or an error envelope from the upstream.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("Gemini API error: %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("Gemini API error: %d %s", e.StatusCode, e.Status)
}

// NetworkError wraps a transport failure.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "request failed: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Kind classifies err for logging: "configuration", "upstream", "network" or
// "unknown".
func Kind(err error) string {
	var apiErr *APIError
	var netErr *NetworkError
	switch {
	case errors.Is(err, ErrMissingCredential):
		return "configuration"
	case errors.As(err, &apiErr), errors.Is(err, ErrMalformedResponse):
		return "upstream"
	case errors.As(err, &netErr):
		return "network"
	default:
		return "unknown"
	}
}
