package nhlapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Error classes. Match with errors.Is; the concrete value is an *APIError.
var (
	ErrNetwork     = errors.New("network error")
	ErrAuth        = errors.New("authentication failed")
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("invalid request parameters")
	ErrServer      = errors.New("server error")
	ErrUnknownHTTP = errors.New("unexpected http status")
)

// APIError is returned for every failed backend call.
type APIError struct {
	Kind       error
	StatusCode int // 0 for transport failures
	Path       string
	Detail     string
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("nhlapi %s: %s", e.Path, e.Message())
}

// Message is the user-facing text for the error.
func (e *APIError) Message() string {
	switch e.Kind {
	case ErrNetwork:
		return "Network error: Unable to connect to API"
	case ErrAuth:
		return "Authentication failed: Invalid or missing bearer token"
	case ErrNotFound:
		return orDefault(e.Detail, "Resource not found")
	case ErrValidation:
		return orDefault(e.Detail, "Invalid request parameters")
	case ErrServer:
		return "Server error: Please try again later"
	}
	return orDefault(e.Detail, fmt.Sprintf("HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode)))
}

func (e *APIError) Is(target error) bool { return e.Kind == target }

func (e *APIError) Unwrap() error { return e.Err }

// classify maps a non-2xx status to its error class.
func classify(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return ErrAuth
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnprocessableEntity:
		return ErrValidation
	case http.StatusInternalServerError:
		return ErrServer
	}
	return ErrUnknownHTTP
}

// UserMessage extracts the user-facing text from any error chain.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	return err.Error()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
