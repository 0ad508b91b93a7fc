package models

import (
	"bytes"
	"encoding/json"
)

// Optional is a three-state field for partial updates: absent (the key was
// not sent), null (the key was sent as JSON null) or a value.
type Optional[T any] struct {
	set   bool
	null  bool
	value T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{set: true, value: v}
}

// Null returns an Optional explicitly set to null.
func Null[T any]() Optional[T] {
	return Optional[T]{set: true, null: true}
}

// IsAbsent reports whether the field was not supplied.
func (o Optional[T]) IsAbsent() bool { return !o.set }

// IsNull reports whether the field was supplied as null.
func (o Optional[T]) IsNull() bool { return o.set && o.null }

// HasValue reports whether the field carries a value.
func (o Optional[T]) HasValue() bool { return o.set && !o.null }

// Value returns the held value and whether there is one.
func (o Optional[T]) Value() (T, bool) {
	return o.value, o.HasValue()
}

// UnmarshalJSON is only invoked for keys present in the payload, which is
// what distinguishes absent from null.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.null = true
		var zero T
		o.value = zero
		return nil
	}
	o.null = false
	return json.Unmarshal(data, &o.value)
}

// MarshalJSON renders null for absent and null fields.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.HasValue() {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
