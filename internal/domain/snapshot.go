package domain

import "fmt"

// CategorySnapshot carries both namespaces of one category.
type CategorySnapshot struct {
	Pending  CategoryLog `json:"pending"`
	Archived CategoryLog `json:"archived"`
}

// Snapshot is the full transportable state of the record store.
type Snapshot struct {
	Categories     map[Category]CategorySnapshot `json:"categories"`
	ImportantDates ImportantDates                `json:"importantDates"`
}

// Validate rejects unknown categories and malformed bucket keys so a restore
// can fail before touching local state.
func (s Snapshot) Validate() error {
	for c, cs := range s.Categories {
		if !c.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, c)
		}
		for _, log := range []CategoryLog{cs.Pending, cs.Archived} {
			for b := range log {
				if !b.Valid() {
					return fmt.Errorf("%s: %w: %q", c, ErrInvalidDate, b)
				}
			}
		}
	}
	for b := range s.ImportantDates {
		if !b.Valid() {
			return fmt.Errorf("important dates: %w: %q", ErrInvalidDate, b)
		}
	}
	return nil
}

// RecordCount totals pending and archived records across every category.
func (s Snapshot) RecordCount() int {
	n := 0
	for _, cs := range s.Categories {
		n += cs.Pending.Count() + cs.Archived.Count()
	}
	return n
}
