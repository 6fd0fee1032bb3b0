package aggregate

import (
	"context"
	"sort"
	"time"

	"github.com/alexanderramin/daylog/internal/domain"
)

// PresenceOptions controls which pending records count toward presence.
type PresenceOptions struct {
	// IncludePendingToday adds today's pending records. Pending records of any
	// other day never count: they are waiting for archival and are reported
	// in Presence.StalePending instead.
	IncludePendingToday bool
}

// Presence maps each date to the categories holding at least one record.
type Presence struct {
	Days         map[domain.DateBucket][]domain.Category
	StalePending map[domain.DateBucket][]domain.Category
	Errors       ReadErrors
}

// Has reports whether c has a record on day.
func (p Presence) Has(day domain.DateBucket, c domain.Category) bool {
	for _, x := range p.Days[day] {
		if x == c {
			return true
		}
	}
	return false
}

// Presence scans every category. A category that fails to read is recorded in
// Errors and the scan continues.
func (a *Aggregator) Presence(ctx context.Context, opts PresenceOptions) Presence {
	today := a.Today()
	p := Presence{
		Days:         map[domain.DateBucket][]domain.Category{},
		StalePending: map[domain.DateBucket][]domain.Category{},
		Errors:       ReadErrors{},
	}
	for _, c := range domain.Categories() {
		days := map[domain.DateBucket]bool{}
		for _, b := range a.archived(ctx, c, p.Errors).Buckets() {
			days[b] = true
		}
		for _, b := range a.pending(ctx, c, p.Errors).Buckets() {
			switch {
			case b == today && opts.IncludePendingToday:
				days[b] = true
			case b != today:
				p.StalePending[b] = append(p.StalePending[b], c)
			}
		}
		for b := range days {
			p.Days[b] = append(p.Days[b], c)
		}
	}
	return p
}

// CalendarDay is one cell of a month view.
type CalendarDay struct {
	Date       domain.DateBucket
	Weekday    time.Weekday
	Today      bool
	Categories []domain.Category
	Important  *domain.ImportantDate
}

// CalendarMonth is a month of cells, first day first.
type CalendarMonth struct {
	Month  string
	Days   []CalendarDay
	Errors ReadErrors
}

// Calendar builds the month view for month ("YYYY-MM"), counting today's
// pending records. An empty month means the current one.
func (a *Aggregator) Calendar(ctx context.Context, month string) (CalendarMonth, error) {
	today := a.Today()
	if month == "" {
		month = today.Month()
	}
	first, err := domain.ParseBucket(month + "-01")
	if err != nil {
		return CalendarMonth{}, err
	}
	last := domain.BucketOf(first.In(time.UTC).AddDate(0, 1, -1))

	presence := a.Presence(ctx, PresenceOptions{IncludePendingToday: true})
	dates, err := a.src.ImportantDates(ctx)
	if err != nil {
		a.logger.WarnContext(ctx, "skipping important dates", "error", err)
		dates = domain.ImportantDates{}
	}

	cal := CalendarMonth{Month: month, Errors: presence.Errors}
	for _, d := range domain.BucketRange(first, last) {
		day := CalendarDay{
			Date:       d,
			Weekday:    d.In(time.UTC).Weekday(),
			Today:      d == today,
			Categories: presence.Days[d],
		}
		if imp, ok := dates[d]; ok {
			day.Important = &imp
		}
		cal.Days = append(cal.Days, day)
	}
	return cal, nil
}

// DayDetail is everything recorded on one date.
type DayDetail struct {
	Date      domain.DateBucket
	Archived  map[domain.Category][]domain.Record
	Pending   map[domain.Category][]domain.Record
	Important *domain.ImportantDate
	Errors    ReadErrors
}

// Categories lists the categories with any record on the day, in display
// order.
func (d DayDetail) Categories() []domain.Category {
	var out []domain.Category
	for _, c := range domain.Categories() {
		if len(d.Archived[c]) > 0 || len(d.Pending[c]) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Day collects both namespaces of every category for day.
func (a *Aggregator) Day(ctx context.Context, day domain.DateBucket) (DayDetail, error) {
	if !day.Valid() {
		_, err := domain.ParseBucket(string(day))
		return DayDetail{}, err
	}
	d := DayDetail{
		Date:     day,
		Archived: map[domain.Category][]domain.Record{},
		Pending:  map[domain.Category][]domain.Record{},
		Errors:   ReadErrors{},
	}
	for _, c := range domain.Categories() {
		if recs := a.archived(ctx, c, d.Errors)[day]; len(recs) > 0 {
			d.Archived[c] = recs
		}
		if recs := a.pending(ctx, c, d.Errors)[day]; len(recs) > 0 {
			d.Pending[c] = recs
		}
	}
	dates, err := a.src.ImportantDates(ctx)
	if err != nil {
		return DayDetail{}, err
	}
	if imp, ok := dates[day]; ok {
		d.Important = &imp
	}
	return d, nil
}

// StaleDays returns the sorted dates in p.StalePending.
func (p Presence) StaleDays() []domain.DateBucket {
	out := make([]domain.DateBucket, 0, len(p.StalePending))
	for b := range p.StalePending {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
