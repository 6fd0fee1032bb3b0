package aggregate

import (
	"context"
	"math"
	"sort"

	"github.com/alexanderramin/daylog/internal/domain"
	"github.com/shopspring/decimal"
)

// Windows used by the review rollups, in days before today.
const (
	ExerciseWindowDays = 7
	RateWindowDays     = 30
)

// HealthReview summarizes sleep, exercise, supplements and body care.
type HealthReview struct {
	AvgSleepHours  float64
	SleepRecords   int
	ExerciseDays   int
	SupplementRate int // percent of days in the rate window
	BodycareRate   int // percent of days in the rate window
}

// StudyReview summarizes study time.
type StudyReview struct {
	TotalMinutes float64
	Days         int
	BySubject    []LabelAmount
}

// HouseworkReview summarizes chores.
type HouseworkReview struct {
	TotalPoints float64
	Records     int
	AvgPoints   float64
	Chores      []LabelCount
}

// MoneyByLabel is a per-category finance total.
type MoneyByLabel struct {
	Label   string
	Expense decimal.Decimal
	Income  decimal.Decimal
}

// FinanceReview summarizes the current month up to today.
type FinanceReview struct {
	Month           string
	Expense         decimal.Decimal
	Income          decimal.Decimal
	ExpenseDays     int
	IncomeDays      int
	AvgDailyExpense decimal.Decimal
	ByCategory      []MoneyByLabel
}

// Review is the full retrospective, computed over the archive.
type Review struct {
	Today         domain.DateBucket
	Health        HealthReview
	Study         StudyReview
	Housework     HouseworkReview
	Finance       FinanceReview
	Entertainment []LabelCount
	Errors        ReadErrors
}

// Chores lists the housework flags in display order.
var Chores = []string{
	"garbage", "cooking", "laundry", "hangingClothes", "foldingClothes",
	"cleaningKitchen", "cleaningTable", "cleaningBed", "cleaningFridge",
}

// Review computes every section from archived records.
func (a *Aggregator) Review(ctx context.Context) Review {
	today := a.Today()
	errs := ReadErrors{}
	r := Review{Today: today, Errors: errs}

	r.Health = healthReview(today,
		a.archived(ctx, domain.CategorySleep, errs),
		a.archived(ctx, domain.CategoryExercise, errs),
		a.archived(ctx, domain.CategorySupplements, errs),
		a.archived(ctx, domain.CategoryBodycare, errs),
	)
	r.Study = studyReview(a.archived(ctx, domain.CategoryStudy, errs))
	r.Housework = houseworkReview(a.archived(ctx, domain.CategoryHousework, errs))
	r.Finance = financeReview(today, a.archived(ctx, domain.CategoryFinance, errs))
	r.Entertainment = entertainmentReview(
		a.archived(ctx, domain.CategoryEntertainment, errs),
		a.archived(ctx, domain.CategoryGame, errs),
	)
	return r
}

func healthReview(today domain.DateBucket, sleep, exercise, supplements, bodycare domain.CategoryLog) HealthReview {
	var h HealthReview
	h.AvgSleepHours, h.SleepRecords = Average(sleep, "duration")
	h.ExerciseDays = DaysMatching(exercise, domain.LastNDays(today, ExerciseWindowDays), Any)

	window := domain.LastNDays(today, RateWindowDays)
	h.SupplementRate = percent(DaysMatching(supplements, window, AnyTruthy("iron", "vitaminDK", "magnesium")), len(window))
	h.BodycareRate = percent(DaysMatching(bodycare, window, AnyTruthy("scrub", "hairRemoval", "lotion")), len(window))
	return h
}

func studyReview(study domain.CategoryLog) StudyReview {
	recs := Flatten(study, nil)
	return StudyReview{
		TotalMinutes: Sum(study, "duration"),
		Days:         len(study.Buckets()),
		BySubject:    SumBy(recs, "subject", "duration"),
	}
}

func houseworkReview(housework domain.CategoryLog) HouseworkReview {
	recs := Flatten(housework, nil)
	h := HouseworkReview{
		TotalPoints: Sum(housework, "score"),
		Records:     len(recs),
	}
	if h.Records > 0 {
		h.AvgPoints = h.TotalPoints / float64(h.Records)
	}
	counts := map[string]int{}
	for _, r := range recs {
		for _, chore := range Chores {
			if r.Truthy(chore) {
				counts[chore]++
			}
		}
	}
	for _, chore := range Chores {
		if n := counts[chore]; n > 0 {
			h.Chores = append(h.Chores, LabelCount{Label: chore, Count: n})
		}
	}
	return h
}

func financeReview(today domain.DateBucket, finance domain.CategoryLog) FinanceReview {
	f := FinanceReview{Month: today.Month()}
	first := domain.DateBucket(today.Month() + "-01")
	byLabel := map[string]*MoneyByLabel{}
	total := func(label string) *MoneyByLabel {
		m, ok := byLabel[label]
		if !ok {
			m = &MoneyByLabel{Label: label}
			byLabel[label] = m
		}
		return m
	}

	for _, day := range domain.BucketRange(first, today) {
		dayExpense, dayIncome := decimal.Zero, decimal.Zero
		for _, rec := range finance[day] {
			for _, item := range rec.Items("expenses") {
				amt := Money(item.Number("amount"))
				dayExpense = dayExpense.Add(amt)
				m := total(labelOf(item, "category"))
				m.Expense = m.Expense.Add(amt)
			}
			for _, item := range rec.Items("incomes") {
				amt := Money(item.Number("amount"))
				dayIncome = dayIncome.Add(amt)
				m := total(labelOf(item, "category"))
				m.Income = m.Income.Add(amt)
			}
		}
		f.Expense = f.Expense.Add(dayExpense)
		f.Income = f.Income.Add(dayIncome)
		if dayExpense.IsPositive() {
			f.ExpenseDays++
		}
		if dayIncome.IsPositive() {
			f.IncomeDays++
		}
	}
	if f.ExpenseDays > 0 {
		f.AvgDailyExpense = f.Expense.Div(decimal.NewFromInt(int64(f.ExpenseDays))).Round(2)
	}
	for _, m := range byLabel {
		if m.Expense.IsPositive() || m.Income.IsPositive() {
			f.ByCategory = append(f.ByCategory, *m)
		}
	}
	sort.Slice(f.ByCategory, func(i, j int) bool {
		if c := f.ByCategory[i].Expense.Cmp(f.ByCategory[j].Expense); c != 0 {
			return c > 0
		}
		return f.ByCategory[i].Label < f.ByCategory[j].Label
	})
	return f
}

func entertainmentReview(entertainment, game domain.CategoryLog) []LabelCount {
	counts := map[string]int{}
	for _, lc := range CountBy(Flatten(entertainment, nil), "type", "") {
		counts[lc.Label] += lc.Count
	}
	for _, lc := range CountBy(Flatten(game, nil), "type", "game-") {
		counts[lc.Label] += lc.Count
	}
	return sortedCounts(counts)
}

// Money converts a stored amount to a decimal rounded to cents.
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}
