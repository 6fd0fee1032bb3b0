package store

import "errors"

// ErrStorageCorrupt marks a persisted value that could not be decoded. Reads
// never return it; it only appears in logs and in quarantine bookkeeping.
var ErrStorageCorrupt = errors.New("stored value is corrupt")
