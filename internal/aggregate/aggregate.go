// Package aggregate computes the read-side views (calendar presence, review
// rollups, daily overview) from the record store on demand. It keeps no state.
package aggregate

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/alexanderramin/daylog/internal/clock"
	"github.com/alexanderramin/daylog/internal/domain"
)

// Uncategorized labels records whose grouping field is missing or empty.
const Uncategorized = "uncategorized"

// Source is the read side of the record store.
type Source interface {
	ReadPending(ctx context.Context, c domain.Category) (domain.CategoryLog, error)
	ReadArchived(ctx context.Context, c domain.Category) (domain.CategoryLog, error)
	ImportantDates(ctx context.Context) (domain.ImportantDates, error)
}

// Aggregator derives views from a Source.
type Aggregator struct {
	src    Source
	clock  clock.Clock
	logger *slog.Logger
}

func New(src Source, clk clock.Clock, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Aggregator{src: src, clock: clk, logger: logger}
}

// Today is the bucket of the current wall-clock date.
func (a *Aggregator) Today() domain.DateBucket {
	return domain.BucketOf(a.clock.Now())
}

// ReadErrors records categories that could not be read during a scan. The
// scan still covers every other category.
type ReadErrors map[domain.Category]error

func (e ReadErrors) note(c domain.Category, err error) {
	e[c] = err
}

func (a *Aggregator) archived(ctx context.Context, c domain.Category, errs ReadErrors) domain.CategoryLog {
	log, err := a.src.ReadArchived(ctx, c)
	if err != nil {
		a.logger.WarnContext(ctx, "skipping category", "category", string(c), "namespace", "archived", "error", err)
		errs.note(c, err)
		return domain.CategoryLog{}
	}
	return log
}

func (a *Aggregator) pending(ctx context.Context, c domain.Category, errs ReadErrors) domain.CategoryLog {
	log, err := a.src.ReadPending(ctx, c)
	if err != nil {
		a.logger.WarnContext(ctx, "skipping category", "category", string(c), "namespace", "pending", "error", err)
		errs.note(c, err)
		return domain.CategoryLog{}
	}
	return log
}

// LabelAmount is one group of a grouped rollup.
type LabelAmount struct {
	Label  string
	Amount float64
}

// LabelCount is one group of a grouped count.
type LabelCount struct {
	Label string
	Count int
}

// Average returns the mean of a numeric field across every record of log
// that carries a positive value, and how many records contributed.
func Average(log domain.CategoryLog, field string) (float64, int) {
	var sum float64
	var n int
	for _, recs := range log {
		for _, r := range recs {
			if v := r.Number(field); v > 0 {
				sum += v
				n++
			}
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

// Sum totals a numeric field across every record of log. Missing or
// malformed values count as zero.
func Sum(log domain.CategoryLog, field string) float64 {
	var sum float64
	for _, recs := range log {
		for _, r := range recs {
			sum += r.Number(field)
		}
	}
	return sum
}

// DaysMatching counts the buckets in days whose records satisfy pred at least
// once. Days are visited one by one; log order is irrelevant.
func DaysMatching(log domain.CategoryLog, days []domain.DateBucket, pred func(domain.Record) bool) int {
	n := 0
	for _, d := range days {
		for _, r := range log[d] {
			if pred(r) {
				n++
				break
			}
		}
	}
	return n
}

// AnyTruthy returns a predicate matching records where any of fields is
// truthy.
func AnyTruthy(fields ...string) func(domain.Record) bool {
	return func(r domain.Record) bool {
		for _, f := range fields {
			if r.Truthy(f) {
				return true
			}
		}
		return false
	}
}

// Any matches every record.
func Any(domain.Record) bool { return true }

// SumBy totals amount grouped by the text field label, sorted by label.
// Records without a label fall into Uncategorized.
func SumBy(recs []domain.Record, label, amount string) []LabelAmount {
	totals := map[string]float64{}
	for _, r := range recs {
		totals[labelOf(r, label)] += r.Number(amount)
	}
	out := make([]LabelAmount, 0, len(totals))
	for l, v := range totals {
		out = append(out, LabelAmount{Label: l, Amount: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// CountBy counts records grouped by the text field label, with prefix
// prepended to every label. Sorted by count, then label.
func CountBy(recs []domain.Record, label, prefix string) []LabelCount {
	counts := map[string]int{}
	for _, r := range recs {
		counts[prefix+labelOf(r, label)]++
	}
	return sortedCounts(counts)
}

func sortedCounts(counts map[string]int) []LabelCount {
	out := make([]LabelCount, 0, len(counts))
	for l, n := range counts {
		out = append(out, LabelCount{Label: l, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func labelOf(r domain.Record, field string) string {
	if l := r.Text(field); l != "" {
		return l
	}
	return Uncategorized
}

// Flatten returns the records of the given buckets in bucket order, or of
// every bucket when days is nil.
func Flatten(log domain.CategoryLog, days []domain.DateBucket) []domain.Record {
	if days == nil {
		days = log.Buckets()
	}
	var out []domain.Record
	for _, d := range days {
		out = append(out, log[d]...)
	}
	return out
}
