package domain

import "errors"

var (
	// ErrUnknownCategory indicates a category name outside the fixed set.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrInvalidRecord indicates record values that do not match the
	// category schema.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrInvalidDate indicates a malformed YYYY-MM-DD date bucket.
	ErrInvalidDate = errors.New("invalid date")
)
