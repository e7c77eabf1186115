package catalog

import (
	"errors"
	"testing"
)

func TestTransportError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *TransportError
		expected string
		class    ErrorClass
	}{
		{
			name: "status error",
			err: &TransportError{
				Endpoint:   ListPath,
				StatusCode: 500,
				Err:        errors.New("500 Internal Server Error"),
			},
			expected: "catalog request /v1/games/list failed (status 500): 500 Internal Server Error",
			class:    ErrorClassStatus,
		},
		{
			name: "network error",
			err: &TransportError{
				Endpoint: SortsPath,
				Err:      errors.New("connection refused"),
			},
			expected: "catalog request /v1/games/sorts failed: connection refused",
			class:    ErrorClassNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
			if got := tt.err.Class(); got != tt.class {
				t.Errorf("Class() = %q, want %q", got, tt.class)
			}
		})
	}
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("boom")

	if !errors.Is(&TransportError{Endpoint: ListPath, Err: cause}, cause) {
		t.Error("errors.Is should see through TransportError")
	}
	if !errors.Is(&DecodeError{Endpoint: ListPath, Err: cause}, cause) {
		t.Error("errors.Is should see through DecodeError")
	}
}
