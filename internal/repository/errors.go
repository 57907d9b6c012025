package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict indicates a save raced with a concurrent writer:
	// the stored version no longer matches the version the caller loaded.
	ErrVersionConflict = errors.New("version conflict")
)
