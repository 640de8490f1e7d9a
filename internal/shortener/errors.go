package shortener

import "errors"

var (
	// ErrNotFound is returned when no entry exists for a code.
	ErrNotFound = errors.New("entry not found")
	// ErrCodeExists is returned by a store when the code is already taken.
	ErrCodeExists = errors.New("code already exists")
	// ErrInvalidURL is returned when the submitted URL is malformed.
	ErrInvalidURL = errors.New("invalid url")
	// ErrCapacityExhausted is returned when no free code was found within the attempt bound.
	ErrCapacityExhausted = errors.New("could not allocate a unique code")
	// ErrStorageUnavailable wraps infrastructure failures from a store.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
