package poller

import (
	"errors"
	"fmt"
)

// ErrSortNotFound is wrapped by NotFoundError.
var ErrSortNotFound = errors.New("sort not found")

// NotFoundError is returned when no sort carries the requested name.
type NotFoundError struct {
	Name string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %q sort offered by the catalog", e.Name)
}

// Unwrap implements error unwrapping for errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrSortNotFound
}
