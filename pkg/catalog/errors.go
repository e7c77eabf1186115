package catalog

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrMissingCredential is returned when no session credential is configured.
	ErrMissingCredential = errors.New("missing session credential")
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassNetwork represents connection and timeout failures.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassStatus represents non-2xx HTTP responses.
	ErrorClassStatus ErrorClass = "status"

	// ErrorClassDecode represents bodies that do not match the expected schema.
	ErrorClassDecode ErrorClass = "decode"
)

// TransportError is returned when a request could not be completed, either
// because the network failed or the service answered with a non-2xx status.
type TransportError struct {
	Endpoint   string
	StatusCode int // 0 for network failures
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog request %s failed (status %d): %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("catalog request %s failed: %v", e.Endpoint, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Class returns the error class used for metrics.
func (e *TransportError) Class() ErrorClass {
	if e.StatusCode != 0 {
		return ErrorClassStatus
	}
	return ErrorClassNetwork
}

// DecodeError is returned when a response body does not decode into the
// expected structure.
type DecodeError struct {
	Endpoint string
	Err      error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Endpoint, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *DecodeError) Unwrap() error {
	return e.Err
}
