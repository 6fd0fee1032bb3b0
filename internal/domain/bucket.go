package domain

import (
	"fmt"
	"sort"
	"time"
)

// DateLayout is the DateBucket key format.
const DateLayout = "2006-01-02"

// DateBucket is a calendar-day key in local time, e.g. "2024-01-05".
type DateBucket string

// BucketOf returns the bucket of t's calendar date in t's location.
func BucketOf(t time.Time) DateBucket {
	return DateBucket(t.Format(DateLayout))
}

// ParseBucket validates s as a YYYY-MM-DD date.
func ParseBucket(s string) (DateBucket, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateBucket(t.Format(DateLayout)), nil
}

// Valid reports whether b parses as a date.
func (b DateBucket) Valid() bool {
	_, err := time.Parse(DateLayout, string(b))
	return err == nil
}

// In returns midnight of b in loc. Invalid buckets yield the zero time.
func (b DateBucket) In(loc *time.Location) time.Time {
	t, err := time.ParseInLocation(DateLayout, string(b), loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays shifts b by n calendar days.
func (b DateBucket) AddDays(n int) DateBucket {
	t := b.In(time.UTC)
	if t.IsZero() {
		return b
	}
	return BucketOf(t.AddDate(0, 0, n))
}

// Before reports whether b is an earlier day than other. Buckets compare
// lexically because the layout is fixed-width.
func (b DateBucket) Before(other DateBucket) bool {
	return b < other
}

// Month returns the "YYYY-MM" prefix.
func (b DateBucket) Month() string {
	if len(b) < 7 {
		return string(b)
	}
	return string(b[:7])
}

// BucketRange returns every bucket from from to to inclusive, oldest first.
// An inverted range is empty.
func BucketRange(from, to DateBucket) []DateBucket {
	var out []DateBucket
	if !from.Valid() || !to.Valid() {
		return out
	}
	for b := from; b <= to; b = b.AddDays(1) {
		out = append(out, b)
	}
	return out
}

// LastNDays returns the buckets from today-n to today inclusive.
func LastNDays(today DateBucket, n int) []DateBucket {
	return BucketRange(today.AddDays(-n), today)
}

// SortBuckets sorts buckets oldest first, in place.
func SortBuckets(bs []DateBucket) {
	sort.Slice(bs, func(i, j int) bool { return bs[i] < bs[j] })
}
