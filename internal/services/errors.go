package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/stwalsh4118/estatehub/internal/geo"
)

// Service-level errors. Every failure returned by a service wraps exactly one
// of these kinds.
var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthorized    = errors.New("caller is not the owning manager")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = geo.ErrInvalidArgument
)

// ValidationError lists the rejected input fields keyed by their JSON name.
// It unwraps to ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// fieldErrors accumulates per-field validation failures.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// isKnownKind reports whether err carries one of the service error kinds.
func isKnownKind(err error) bool {
	for _, kind := range []error{ErrNotFound, ErrValidation, ErrUnauthorized, ErrConflict, ErrInvalidArgument} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
