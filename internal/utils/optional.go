// Package utils holds helpers for the optional (pointer) fields of partial updates.
package utils

// Ptr fills an optional field inline.
func Ptr[T any](v T) *T {
	return &v
}

// Value reads an optional field, giving the zero value when it is unset.
func Value[T any](p *T) T {
	if p == nil {
		return *new(T)
	}
	return *p
}

// NonZero sets an optional field only when v is not the zero value, so blank
// inputs are left out of a PATCH body.
func NonZero[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

// Assign copies src into dst when src is set.
func Assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
