package repository

import "errors"

var (
	// ErrNotFound indicates no value is stored under the requested key.
	ErrNotFound = errors.New("not found")

	// ErrQuotaExceeded indicates the underlying storage refused a write
	// because it is full.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)
