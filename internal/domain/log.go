package domain

// CategoryLog maps each date bucket to its records in arrival order.
type CategoryLog map[DateBucket][]Record

// Buckets returns the keys holding at least one record, oldest first.
func (l CategoryLog) Buckets() []DateBucket {
	out := make([]DateBucket, 0, len(l))
	for b, recs := range l {
		if len(recs) > 0 {
			out = append(out, b)
		}
	}
	SortBuckets(out)
	return out
}

// Count returns the total number of records across all buckets.
func (l CategoryLog) Count() int {
	n := 0
	for _, recs := range l {
		n += len(recs)
	}
	return n
}

// Has reports whether bucket b holds at least one record.
func (l CategoryLog) Has(b DateBucket) bool {
	return len(l[b]) > 0
}

// Clone copies the bucket map and record slices. Records themselves are
// immutable and shared.
func (l CategoryLog) Clone() CategoryLog {
	out := make(CategoryLog, len(l))
	for b, recs := range l {
		cp := make([]Record, len(recs))
		copy(cp, recs)
		out[b] = cp
	}
	return out
}
