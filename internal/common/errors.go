package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel error kinds. Callers classify failures with errors.Is and map
// them to HTTP statuses via HTTPStatus.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrStorage      = errors.New("storage failure")
	ErrPersistence  = errors.New("persistence failure")
	// ErrInvariant indicates corrupted image-set state (duplicate index,
	// zero or multiple main images). It is internal-only: surfacing it to
	// a client means a bug in the mutation path.
	ErrInvariant = errors.New("invariant violation")
)

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// InvalidInputf wraps ErrInvalidInput with a formatted message.
func InvalidInputf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// StorageErr wraps an object-store failure.
func StorageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

// PersistenceErr wraps a database failure.
func PersistenceErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}

// HTTPStatus maps an error kind to a response status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrStorage), errors.Is(err, ErrPersistence), errors.Is(err, ErrInvariant):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
