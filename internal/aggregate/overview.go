package aggregate

import (
	"context"

	"github.com/alexanderramin/daylog/internal/domain"
	"github.com/shopspring/decimal"
)

// Overview is the "today so far" panel, computed from today's pending
// records only.
type Overview struct {
	Today           domain.DateBucket
	HouseworkScore  float64
	StudyMinutes    float64
	ExerciseMinutes float64
	Expense         decimal.Decimal
	Counts          map[domain.Category]int
	Errors          ReadErrors
}

// Overview summarizes today's pending records.
func (a *Aggregator) Overview(ctx context.Context) Overview {
	today := a.Today()
	o := Overview{Today: today, Counts: map[domain.Category]int{}, Errors: ReadErrors{}}
	for _, c := range domain.Categories() {
		recs := a.pending(ctx, c, o.Errors)[today]
		if len(recs) == 0 {
			continue
		}
		o.Counts[c] = len(recs)
		switch c {
		case domain.CategoryHousework:
			o.HouseworkScore = recs[len(recs)-1].Number("score")
		case domain.CategoryStudy:
			for _, r := range recs {
				o.StudyMinutes += r.Number("duration")
			}
		case domain.CategoryExercise:
			for _, r := range recs {
				o.ExerciseMinutes += r.Number("duration")
			}
		case domain.CategoryFinance:
			for _, r := range recs {
				for _, item := range r.Items("expenses") {
					o.Expense = o.Expense.Add(Money(item.Number("amount")))
				}
			}
		}
	}
	return o
}
