package repositories

import "errors"

var (
	// ErrRecordNotFound is returned when a lookup matches no row.
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when an insert violates a unique index.
	ErrDuplicateKey = errors.New("duplicate key")
)
