package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/daylog/internal/clock"
	"github.com/alexanderramin/daylog/internal/domain"
	"github.com/alexanderramin/daylog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	pending  map[domain.Category]domain.CategoryLog
	archived map[domain.Category]domain.CategoryLog
	dates    domain.ImportantDates
	fail     map[domain.Category]error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		pending:  map[domain.Category]domain.CategoryLog{},
		archived: map[domain.Category]domain.CategoryLog{},
		dates:    domain.ImportantDates{},
		fail:     map[domain.Category]error{},
	}
}

func (f *fakeSource) ReadPending(_ context.Context, c domain.Category) (domain.CategoryLog, error) {
	if err := f.fail[c]; err != nil {
		return nil, err
	}
	return f.pending[c].Clone(), nil
}

func (f *fakeSource) ReadArchived(_ context.Context, c domain.Category) (domain.CategoryLog, error) {
	if err := f.fail[c]; err != nil {
		return nil, err
	}
	return f.archived[c].Clone(), nil
}

func (f *fakeSource) ImportantDates(context.Context) (domain.ImportantDates, error) {
	return f.dates.Clone(), nil
}

func (f *fakeSource) archive(c domain.Category, day domain.DateBucket, recs ...domain.Record) {
	if f.archived[c] == nil {
		f.archived[c] = domain.CategoryLog{}
	}
	f.archived[c][day] = append(f.archived[c][day], recs...)
}

func (f *fakeSource) pend(c domain.Category, day domain.DateBucket, recs ...domain.Record) {
	if f.pending[c] == nil {
		f.pending[c] = domain.CategoryLog{}
	}
	f.pending[c][day] = append(f.pending[c][day], recs...)
}

func rec(fields map[string]any) domain.Record {
	return testutil.NewTestRecord(func(r *domain.Record) { r.Fields = fields })
}

var jan5 = time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

func newAggregator(src Source) *Aggregator {
	return New(src, clock.NewManual(jan5), nil)
}

func TestAverage_SleepAcrossArchivedDates(t *testing.T) {
	src := newFakeSource()
	src.archive(domain.CategorySleep, "2024-01-01", testutil.NewSleepRecord(6))
	src.archive(domain.CategorySleep, "2024-01-02", testutil.NewSleepRecord(7))
	src.archive(domain.CategorySleep, "2024-01-03", testutil.NewSleepRecord(8))

	r := newAggregator(src).Review(context.Background())

	assert.InDelta(t, 7.0, r.Health.AvgSleepHours, 1e-9)
	assert.Equal(t, 3, r.Health.SleepRecords)
}

func TestAverage_IgnoresMissingAndMalformed(t *testing.T) {
	log := domain.CategoryLog{
		"2024-01-01": {rec(map[string]any{"duration": 6.0}), rec(map[string]any{"duration": "eight"})},
		"2024-01-02": {rec(map[string]any{})},
	}
	avg, n := Average(log, "duration")
	assert.Equal(t, 6.0, avg)
	assert.Equal(t, 1, n)

	avg, n = Average(domain.CategoryLog{}, "duration")
	assert.Zero(t, avg)
	assert.Zero(t, n)
}

func TestDaysMatching_WalksWindowInclusive(t *testing.T) {
	today := domain.DateBucket("2024-01-10")
	log := domain.CategoryLog{
		"2024-01-02": {rec(map[string]any{"iron": true})},
		"2024-01-03": {rec(map[string]any{"iron": true})},
		"2024-01-10": {rec(map[string]any{"iron": false}), rec(map[string]any{"magnesium": true})},
		"2024-01-05": {rec(map[string]any{"iron": false})},
	}

	n := DaysMatching(log, domain.LastNDays(today, 7), AnyTruthy("iron", "magnesium"))

	assert.Equal(t, 2, n)
}

func TestSumBy_MissingLabelIsUncategorized(t *testing.T) {
	recs := []domain.Record{
		rec(map[string]any{"category": "food", "amount": 10.0}),
		rec(map[string]any{"amount": 2.5}),
		rec(map[string]any{"category": "", "amount": "bad"}),
		rec(map[string]any{"category": "food", "amount": 5.0}),
	}

	assert.Equal(t, []LabelAmount{
		{Label: "food", Amount: 15},
		{Label: Uncategorized, Amount: 2.5},
	}, SumBy(recs, "category", "amount"))
}

func TestReview_HealthWindows(t *testing.T) {
	src := newFakeSource()
	src.archive(domain.CategoryExercise, "2023-12-29", rec(map[string]any{"duration": 30.0}))
	src.archive(domain.CategoryExercise, "2023-12-28", rec(map[string]any{"duration": 30.0}))
	src.archive(domain.CategoryExercise, "2024-01-04", rec(map[string]any{"duration": 30.0}))
	for _, day := range []domain.DateBucket{"2024-01-01", "2024-01-02", "2024-01-03"} {
		src.archive(domain.CategorySupplements, day, rec(map[string]any{"iron": true}))
	}
	src.archive(domain.CategoryBodycare, "2024-01-04", rec(map[string]any{"scrub": false, "lotion": false}))

	h := newAggregator(src).Review(context.Background()).Health

	assert.Equal(t, 2, h.ExerciseDays)
	assert.Equal(t, 10, h.SupplementRate)
	assert.Equal(t, 0, h.BodycareRate)
}

func TestReview_StudyAndHousework(t *testing.T) {
	src := newFakeSource()
	src.archive(domain.CategoryStudy, "2024-01-01",
		rec(map[string]any{"subject": "go", "duration": 60.0}),
		rec(map[string]any{"duration": 15.0}))
	src.archive(domain.CategoryStudy, "2024-01-02", rec(map[string]any{"subject": "go", "duration": 30.0}))
	src.archive(domain.CategoryHousework, "2024-01-01",
		rec(map[string]any{"garbage": true, "cooking": true, "score": 3.0}),
		rec(map[string]any{"garbage": true, "score": 1.0}))

	r := newAggregator(src).Review(context.Background())

	assert.Equal(t, 105.0, r.Study.TotalMinutes)
	assert.Equal(t, 2, r.Study.Days)
	assert.Equal(t, []LabelAmount{{Label: "go", Amount: 90}, {Label: Uncategorized, Amount: 15}}, r.Study.BySubject)

	assert.Equal(t, 4.0, r.Housework.TotalPoints)
	assert.Equal(t, 2.0, r.Housework.AvgPoints)
	assert.Equal(t, []LabelCount{{Label: "garbage", Count: 2}, {Label: "cooking", Count: 1}}, r.Housework.Chores)
}

func TestReview_FinanceCurrentMonth(t *testing.T) {
	src := newFakeSource()
	src.archive(domain.CategoryFinance, "2023-12-31", rec(map[string]any{
		"expenses": []any{map[string]any{"amount": 100.0, "category": "rent"}},
	}))
	src.archive(domain.CategoryFinance, "2024-01-02", rec(map[string]any{
		"expenses": []any{
			map[string]any{"amount": 0.1, "category": "food"},
			map[string]any{"amount": 0.2, "category": "food"},
		},
		"incomes": []any{map[string]any{"amount": 1000.0}},
	}))
	src.archive(domain.CategoryFinance, "2024-01-04", rec(map[string]any{
		"expenses": []any{map[string]any{"amount": 9.7}},
	}))

	f := newAggregator(src).Review(context.Background()).Finance

	assert.Equal(t, "2024-01", f.Month)
	assert.Equal(t, "10", f.Expense.String())
	assert.Equal(t, "1000", f.Income.String())
	assert.Equal(t, 2, f.ExpenseDays)
	assert.Equal(t, 1, f.IncomeDays)
	assert.Equal(t, "5", f.AvgDailyExpense.String())
	require.Len(t, f.ByCategory, 2)
	assert.Equal(t, Uncategorized, f.ByCategory[0].Label)
	assert.Equal(t, "1000", f.ByCategory[0].Income.String())
	assert.Equal(t, "food", f.ByCategory[1].Label)
	assert.Equal(t, "0.3", f.ByCategory[1].Expense.String())
}

func TestReview_EntertainmentCountsGamesByType(t *testing.T) {
	src := newFakeSource()
	src.archive(domain.CategoryEntertainment, "2024-01-01",
		rec(map[string]any{"type": "movie"}), rec(map[string]any{"type": "movie"}), rec(map[string]any{}))
	src.archive(domain.CategoryGame, "2024-01-02", rec(map[string]any{"type": "rpg"}))

	got := newAggregator(src).Review(context.Background()).Entertainment

	assert.Equal(t, []LabelCount{
		{Label: "movie", Count: 2},
		{Label: "game-rpg", Count: 1},
		{Label: Uncategorized, Count: 1},
	}, got)
}

func TestPresence_TodayPendingCountsWhenIncluded(t *testing.T) {
	src := newFakeSource()
	src.pend(domain.CategoryWork, "2024-01-05", rec(map[string]any{}))
	agg := newAggregator(src)

	with := agg.Presence(context.Background(), PresenceOptions{IncludePendingToday: true})
	assert.True(t, with.Has("2024-01-05", domain.CategoryWork))

	without := agg.Presence(context.Background(), PresenceOptions{})
	assert.False(t, without.Has("2024-01-05", domain.CategoryWork))
}

func TestPresence_StalePendingIsReportedNotShown(t *testing.T) {
	src := newFakeSource()
	src.pend(domain.CategoryWork, "2024-01-04", rec(map[string]any{}))
	src.archive(domain.CategorySleep, "2024-01-04", testutil.NewSleepRecord(7))

	p := newAggregator(src).Presence(context.Background(), PresenceOptions{IncludePendingToday: true})

	assert.False(t, p.Has("2024-01-04", domain.CategoryWork))
	assert.True(t, p.Has("2024-01-04", domain.CategorySleep))
	assert.Equal(t, []domain.Category{domain.CategoryWork}, p.StalePending["2024-01-04"])
	assert.Equal(t, []domain.DateBucket{"2024-01-04"}, p.StaleDays())
}

func TestPresence_ReadFailureSkipsOnlyThatCategory(t *testing.T) {
	src := newFakeSource()
	src.archive(domain.CategorySleep, "2024-01-03", testutil.NewSleepRecord(7))
	src.archive(domain.CategoryStudy, "2024-01-03", rec(map[string]any{}))
	src.fail[domain.CategorySleep] = errors.New("io")

	p := newAggregator(src).Presence(context.Background(), PresenceOptions{})

	assert.Equal(t, []domain.Category{domain.CategoryStudy}, p.Days["2024-01-03"])
	assert.Contains(t, p.Errors, domain.CategorySleep)
}

func TestCalendar_MonthCellsWithImportantDates(t *testing.T) {
	src := newFakeSource()
	src.archive(domain.CategorySleep, "2024-01-03", testutil.NewSleepRecord(7))
	src.pend(domain.CategoryNap, "2024-01-05", rec(map[string]any{}))
	src.dates["2024-01-20"] = domain.ImportantDate{Type: domain.ImportantBirthday, Label: "mom"}

	cal, err := newAggregator(src).Calendar(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "2024-01", cal.Month)
	require.Len(t, cal.Days, 31)
	assert.Equal(t, time.Monday, cal.Days[0].Weekday)
	assert.Equal(t, []domain.Category{domain.CategorySleep}, cal.Days[2].Categories)
	assert.True(t, cal.Days[4].Today)
	assert.Equal(t, []domain.Category{domain.CategoryNap}, cal.Days[4].Categories)
	require.NotNil(t, cal.Days[19].Important)
	assert.Equal(t, "mom", cal.Days[19].Important.Label)

	feb, err := newAggregator(src).Calendar(context.Background(), "2024-02")
	require.NoError(t, err)
	assert.Len(t, feb.Days, 29)

	_, err = newAggregator(src).Calendar(context.Background(), "2024-13")
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestDay_CollectsBothNamespaces(t *testing.T) {
	src := newFakeSource()
	src.archive(domain.CategorySleep, "2024-01-05", testutil.NewSleepRecord(7))
	src.pend(domain.CategoryDinner, "2024-01-05", rec(map[string]any{"content": "soup"}))
	src.dates["2024-01-05"] = domain.ImportantDate{Type: domain.ImportantEvent, Label: "launch"}

	d, err := newAggregator(src).Day(context.Background(), "2024-01-05")
	require.NoError(t, err)

	assert.Equal(t, []domain.Category{domain.CategorySleep, domain.CategoryDinner}, d.Categories())
	assert.Equal(t, "soup", d.Pending[domain.CategoryDinner][0].Text("content"))
	require.NotNil(t, d.Important)

	_, err = newAggregator(src).Day(context.Background(), "yesterday")
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestOverview_TodayPendingOnly(t *testing.T) {
	src := newFakeSource()
	src.pend(domain.CategoryHousework, "2024-01-05", rec(map[string]any{"score": 2.0}), rec(map[string]any{"score": 5.0}))
	src.pend(domain.CategoryStudy, "2024-01-05", rec(map[string]any{"duration": 20.0}), rec(map[string]any{"duration": 25.0}))
	src.pend(domain.CategoryExercise, "2024-01-04", rec(map[string]any{"duration": 99.0}))
	src.pend(domain.CategoryFinance, "2024-01-05", rec(map[string]any{
		"expenses": []any{map[string]any{"amount": 3.5}, map[string]any{"amount": 1.25}},
	}))

	o := newAggregator(src).Overview(context.Background())

	assert.Equal(t, 5.0, o.HouseworkScore)
	assert.Equal(t, 45.0, o.StudyMinutes)
	assert.Zero(t, o.ExerciseMinutes)
	assert.Equal(t, "4.75", o.Expense.String())
	assert.Equal(t, 2, o.Counts[domain.CategoryStudy])
}
