package testutil

import (
	"time"

	"github.com/alexanderramin/daylog/internal/domain"
	"github.com/google/uuid"
)

// Record options
type RecordOption func(*domain.Record)

func WithRecordID(id string) RecordOption {
	return func(r *domain.Record) {
		r.ID = id
	}
}

func WithTimestamp(t time.Time) RecordOption {
	return func(r *domain.Record) {
		r.Timestamp = t
	}
}

func WithField(name string, value any) RecordOption {
	return func(r *domain.Record) {
		r.Fields[name] = value
	}
}

// NewTestRecord builds a stored-shape record with a fresh ID and a fixed
// timestamp unless overridden.
func NewTestRecord(opts ...RecordOption) domain.Record {
	r := domain.Record{
		ID:        uuid.New().String(),
		Timestamp: time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC),
		Fields:    map[string]any{},
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// NewSleepRecord returns a sleep record with the given duration in hours.
func NewSleepRecord(hours float64, opts ...RecordOption) domain.Record {
	return NewTestRecord(append([]RecordOption{
		WithField("duration", hours),
		WithField("quality", float64(3)),
	}, opts...)...)
}

// Local returns a wall-clock time in loc.
func Local(loc *time.Location, year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, loc)
}
