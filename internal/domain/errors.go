package domain

import "errors"

var (
	// ErrValidation marks input that fails domain validation.
	ErrValidation = errors.New("validation error")

	// ErrInvalidPhone marks a raw phone value that cannot be normalized.
	ErrInvalidPhone = errors.New("invalid phone number")

	// ErrNotFound marks a lookup that matched no record.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate marks an insert rejected by the unique phone constraint.
	ErrDuplicate = errors.New("phone already recorded")
)
