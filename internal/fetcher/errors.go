package fetcher

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error that occurred during a fetch operation
type ErrorType string

const (
	// ErrorTypeNetwork indicates a network-level error (connection refused, DNS, etc.)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit indicates the request was rejected due to rate limiting (HTTP 429)
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeServer indicates a server error (HTTP 5xx)
	ErrorTypeServer ErrorType = "server"
	// ErrorTypeClient indicates a client error (HTTP 4xx except 429)
	ErrorTypeClient ErrorType = "client"
	// ErrorTypeStatusMismatch indicates a non-error status that differs from the expected one
	ErrorTypeStatusMismatch ErrorType = "status_mismatch"
	// ErrorTypeTimeout indicates the request timed out or the wait was cancelled
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeEmptyData indicates the price sequence had no usable data
	ErrorTypeEmptyData ErrorType = "empty_data"
	// ErrorTypeUnknownSource indicates an unrecognized candle tag
	ErrorTypeUnknownSource ErrorType = "unknown_source"
	// ErrorTypeMalformedResponse indicates an expected JSON key was absent or mistyped
	ErrorTypeMalformedResponse ErrorType = "malformed_response"
	// ErrorTypeUnknown indicates an error of unknown type
	ErrorTypeUnknown ErrorType = "unknown"
)

// FetchError represents a structured error from a fetch operation
type FetchError struct {
	Type       ErrorType
	Retryable  bool
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Transport reports whether the error belongs to the transport family,
// i.e. the upstream never answered with the expected status.
func (e *FetchError) Transport() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServer, ErrorTypeClient,
		ErrorTypeStatusMismatch, ErrorTypeTimeout:
		return true
	}
	return false
}

// NewNetworkError creates a network error
func NewNetworkError(cause error) *FetchError {
	return &FetchError{
		Type:      ErrorTypeNetwork,
		Retryable: true,
		Message:   "network request failed",
		Cause:     cause,
	}
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(statusCode int) *FetchError {
	return &FetchError{
		Type:       ErrorTypeRateLimit,
		Retryable:  true,
		StatusCode: statusCode,
		Message:    "rate limit exceeded",
	}
}

// NewServerError creates a server error
func NewServerError(statusCode int) *FetchError {
	return &FetchError{
		Type:       ErrorTypeServer,
		Retryable:  true,
		StatusCode: statusCode,
		Message:    "server returned an error",
	}
}

// NewClientError creates a client error
func NewClientError(statusCode int, message string) *FetchError {
	return &FetchError{
		Type:       ErrorTypeClient,
		Retryable:  false,
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(cause error) *FetchError {
	return &FetchError{
		Type:      ErrorTypeTimeout,
		Retryable: true,
		Message:   "request timed out",
		Cause:     cause,
	}
}

// NewEmptyDataError creates an error for a price list without usable data
func NewEmptyDataError(message string) *FetchError {
	return &FetchError{
		Type:    ErrorTypeEmptyData,
		Message: message,
	}
}

// NewUnknownSourceError creates an error for an unrecognized candle tag
func NewUnknownSourceError(candle string) *FetchError {
	return &FetchError{
		Type:    ErrorTypeUnknownSource,
		Message: fmt.Sprintf("unknown candle %q", candle),
	}
}

// NewMalformedResponseError creates an error for a response missing an expected key
func NewMalformedResponseError(message string) *FetchError {
	return &FetchError{
		Type:    ErrorTypeMalformedResponse,
		Message: message,
	}
}

// ClassifyHTTPError classifies an HTTP status code into an appropriate FetchError
func ClassifyHTTPError(statusCode int) *FetchError {
	switch {
	case statusCode == 429:
		return NewRateLimitError(statusCode)
	case statusCode >= 500:
		return NewServerError(statusCode)
	case statusCode >= 400:
		return NewClientError(statusCode, fmt.Sprintf("client error: HTTP %d", statusCode))
	default:
		return &FetchError{
			Type:       ErrorTypeUnknown,
			Retryable:  false,
			StatusCode: statusCode,
			Message:    fmt.Sprintf("unexpected status code: %d", statusCode),
		}
	}
}

// NewStatusMismatchError creates a transport error for a response whose status
// differs from expected. Error statuses keep their HTTP classification.
func NewStatusMismatchError(expected, got int) *FetchError {
	if got >= 400 {
		return ClassifyHTTPError(got)
	}
	return &FetchError{
		Type:       ErrorTypeStatusMismatch,
		Retryable:  true,
		StatusCode: got,
		Message:    fmt.Sprintf("expected status %d", expected),
	}
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown when err is not a FetchError.
func TypeOf(err error) ErrorType {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Type
	}
	return ErrorTypeUnknown
}
