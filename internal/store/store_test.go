package store

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"syscall"
	"testing"
	"time"

	"github.com/alexanderramin/daylog/internal/clock"
	"github.com/alexanderramin/daylog/internal/db"
	"github.com/alexanderramin/daylog/internal/domain"
	"github.com/alexanderramin/daylog/internal/events"
	"github.com/alexanderramin/daylog/internal/repository"
	"github.com/alexanderramin/daylog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *Store
	db       *sql.DB
	clock    *clock.Manual
	logs     *bytes.Buffer
	recorder *events.Recorder
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	return newFixtureWithUoW(t, database, testutil.NewTestUoW(database), now)
}

func newFixtureWithUoW(t *testing.T, database *sql.DB, uow db.UnitOfWork, now time.Time) *fixture {
	t.Helper()
	f := &fixture{
		db:       database,
		clock:    clock.NewManual(now),
		logs:     &bytes.Buffer{},
		recorder: events.NewRecorder(nil),
	}
	f.store = New(repository.NewSQLiteKVRepo(database), uow, f.clock,
		WithLogger(slog.New(slog.NewTextHandler(f.logs, nil))),
		WithListener(f.recorder),
	)
	return f
}

var jan5 = time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)

func TestAppendPending_AppendsToTodayInCallOrder(t *testing.T) {
	f := newFixture(t, jan5)
	ctx := context.Background()

	first, err := f.store.AppendPending(ctx, domain.CategorySleep, map[string]any{"duration": 7})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	second, err := f.store.AppendPending(ctx, domain.CategorySleep, map[string]any{"duration": 8})
	require.NoError(t, err)

	log, err := f.store.ReadPending(ctx, domain.CategorySleep)
	require.NoError(t, err)
	recs := log["2024-01-05"]
	require.Len(t, recs, 2)
	assert.Equal(t, first.ID, recs[0].ID)
	assert.Equal(t, second.ID, recs[1].ID)
	assert.Equal(t, 8.0, recs[1].Number("duration"))
	assert.False(t, recs[1].Timestamp.Before(recs[0].Timestamp))
	assert.Equal(t, []string{"append", "append"}, f.recorder.Kinds())
}

func TestAppendPending_TimestampNeverDecreasesWithinBucket(t *testing.T) {
	f := newFixture(t, jan5)
	ctx := context.Background()

	first, err := f.store.AppendPending(ctx, domain.CategoryWork, map[string]any{"todo": []string{"a"}})
	require.NoError(t, err)
	f.clock.Set(jan5.Add(-time.Hour))
	second, err := f.store.AppendPending(ctx, domain.CategoryWork, map[string]any{"done": []string{"a"}})
	require.NoError(t, err)

	assert.True(t, first.Timestamp.Equal(second.Timestamp))
}

func TestAppendPending_BucketUsesLocalDate(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	f := newFixture(t, time.Date(2024, 1, 5, 7, 0, 0, 0, loc))
	ctx := context.Background()

	_, err := f.store.AppendPending(ctx, domain.CategoryNap, map[string]any{"duration": 30})
	require.NoError(t, err)

	log, err := f.store.ReadPending(ctx, domain.CategoryNap)
	require.NoError(t, err)
	assert.True(t, log.Has("2024-01-05"))
	assert.False(t, log.Has("2024-01-04"))
}

func TestAppendPending_RejectsInvalidValues(t *testing.T) {
	f := newFixture(t, jan5)
	ctx := context.Background()

	_, err := f.store.AppendPending(ctx, domain.CategorySleep, map[string]any{"bogus": 1})
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)

	_, err = f.store.AppendPending(ctx, domain.Category("pets"), map[string]any{})
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)

	log, err := f.store.ReadPending(ctx, domain.CategorySleep)
	require.NoError(t, err)
	assert.Empty(t, log)
	assert.Empty(t, f.recorder.Events())
}

func TestAppendPending_FinanceItemsNormalized(t *testing.T) {
	f := newFixture(t, jan5)
	ctx := context.Background()

	rec, err := f.store.AppendPending(ctx, domain.CategoryFinance, map[string]any{
		"expenses": []any{
			map[string]any{"amount": 0, "category": "food"},
			map[string]any{"amount": 12.5, "category": "food"},
		},
	})
	require.NoError(t, err)

	items := rec.Items("expenses")
	require.Len(t, items, 1)
	assert.Equal(t, 1.0, items[0].Number("id"))
	assert.Equal(t, domain.FinanceExpense, items[0].Text("type"))
	assert.Equal(t, "2024-01-05", items[0].Text("date"))
}

func TestAppendPending_QuotaErrorSurfaces(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 1, Err: syscall.ENOSPC}
	f := newFixtureWithUoW(t, database, uow, jan5)
	ctx := context.Background()

	_, err := f.store.AppendPending(ctx, domain.CategorySleep, map[string]any{"duration": 7})
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrQuotaExceeded)

	log, err := f.store.ReadPending(ctx, domain.CategorySleep)
	require.NoError(t, err)
	assert.Empty(t, log)
}

func TestRead_DefaultFillsDeclaredFields(t *testing.T) {
	f := newFixture(t, jan5)
	ctx := context.Background()

	_, err := f.store.AppendPending(ctx, domain.CategorySleep, map[string]any{"duration": 7})
	require.NoError(t, err)

	log, err := f.store.ReadPending(ctx, domain.CategorySleep)
	require.NoError(t, err)
	rec := log["2024-01-05"][0]
	assert.Equal(t, 0.0, rec.Fields["quality"])
	assert.Equal(t, "", rec.Fields["feeling"])
}

func TestRead_CorruptValueDegradesToEmpty(t *testing.T) {
	f := newFixture(t, jan5)
	ctx := context.Background()
	kv := repository.NewSQLiteKVRepo(f.db)

	require.NoError(t, kv.Put(ctx, domain.CategorySleep.ArchivedKey(), "{not json"))
	_, err := f.store.AppendPending(ctx, domain.CategoryStudy, map[string]any{"duration": 45})
	require.NoError(t, err)

	sleep, err := f.store.ReadArchived(ctx, domain.CategorySleep)
	require.NoError(t, err)
	assert.Empty(t, sleep)
	assert.Contains(t, f.logs.String(), "level=WARN")
	assert.Contains(t, f.logs.String(), "key=sleepData")

	snap, err := f.store.ExportAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.RecordCount())
}

func TestAppendPending_QuarantinesCorruptPending(t *testing.T) {
	f := newFixture(t, jan5)
	ctx := context.Background()
	kv := repository.NewSQLiteKVRepo(f.db)
	require.NoError(t, kv.Put(ctx, domain.CategorySleep.PendingKey(), `{"bad-date":[]}`))

	_, err := f.store.AppendPending(ctx, domain.CategorySleep, map[string]any{"duration": 6})
	require.NoError(t, err)

	raw, err := kv.Get(ctx, QuarantineKey(domain.CategorySleep.PendingKey(), jan5))
	require.NoError(t, err)
	assert.Equal(t, `{"bad-date":[]}`, raw)

	log, err := f.store.ReadPending(ctx, domain.CategorySleep)
	require.NoError(t, err)
	assert.Equal(t, 1, log.Count())
}

func TestReplaceAll_ExportRoundTripIsNoop(t *testing.T) {
	f := newFixture(t, jan5)
	ctx := context.Background()

	_, err := f.store.AppendPending(ctx, domain.CategorySleep, map[string]any{"duration": 7})
	require.NoError(t, err)
	_, err = f.store.AppendPending(ctx, domain.CategoryWork, map[string]any{"todo": []string{"x", "y"}})
	require.NoError(t, err)
	_, err = f.store.ArchivePending(ctx, domain.CategorySleep, nil)
	require.NoError(t, err)
	_, err = f.store.SetImportantDate(ctx, "2024-02-14", "anniversary", "dinner")
	require.NoError(t, err)

	before, err := f.store.ExportAll(ctx)
	require.NoError(t, err)
	require.NoError(t, f.store.ReplaceAll(ctx, before))
	after, err := f.store.ExportAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, before, after)
	assert.Equal(t, 2, after.RecordCount())
}

func TestReplaceAll_DiscardsStateAbsentFromSnapshot(t *testing.T) {
	f := newFixture(t, jan5)
	ctx := context.Background()

	_, err := f.store.AppendPending(ctx, domain.CategorySleep, map[string]any{"duration": 7})
	require.NoError(t, err)
	_, err = f.store.SetImportantDate(ctx, "2024-02-14", "birthday", "mom")
	require.NoError(t, err)

	rec := testutil.NewSleepRecord(8)
	require.NoError(t, f.store.ReplaceAll(ctx, domain.Snapshot{
		Categories: map[domain.Category]domain.CategorySnapshot{
			domain.CategoryStudy: {Archived: domain.CategoryLog{"2023-12-31": {rec}}},
		},
	}))

	sleep, err := f.store.ReadPending(ctx, domain.CategorySleep)
	require.NoError(t, err)
	assert.Empty(t, sleep)
	dates, err := f.store.ImportantDates(ctx)
	require.NoError(t, err)
	assert.Empty(t, dates)
	n, err := f.store.RecordCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReplaceAll_InvalidSnapshotLeavesStoreUntouched(t *testing.T) {
	f := newFixture(t, jan5)
	ctx := context.Background()

	_, err := f.store.AppendPending(ctx, domain.CategorySleep, map[string]any{"duration": 7})
	require.NoError(t, err)

	err = f.store.ReplaceAll(ctx, domain.Snapshot{
		Categories: map[domain.Category]domain.CategorySnapshot{"pets": {}},
	})
	require.ErrorIs(t, err, domain.ErrUnknownCategory)

	n, err := f.store.RecordCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReplaceAll_MidwayFailureRollsBack(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	good := newFixtureWithUoW(t, database, testutil.NewTestUoW(database), jan5)
	_, err := good.store.AppendPending(ctx, domain.CategorySleep, map[string]any{"duration": 7})
	require.NoError(t, err)
	snap, err := good.store.ExportAll(ctx)
	require.NoError(t, err)

	failing := newFixtureWithUoW(t, database, &testutil.FailOnNthExecUoW{DB: database, FailOn: 3, Err: assert.AnError}, jan5)
	err = failing.store.ReplaceAll(ctx, domain.Snapshot{})
	require.ErrorIs(t, err, assert.AnError)

	after, err := good.store.ExportAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, after)
}

func TestImportantDates_SetReplaceDelete(t *testing.T) {
	f := newFixture(t, jan5)
	ctx := context.Background()

	d, err := f.store.SetImportantDate(ctx, "2024-03-01", "party", "launch")
	require.NoError(t, err)
	assert.Equal(t, domain.ImportantOther, d.Type)
	assert.Equal(t, domain.DateBucket("2024-01-05"), d.AddedDate)

	_, err = f.store.SetImportantDate(ctx, "2024-03-01", "deadline", "taxes")
	require.NoError(t, err)
	dates, err := f.store.ImportantDates(ctx)
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.Equal(t, "taxes", dates["2024-03-01"].Label)

	_, err = f.store.SetImportantDate(ctx, "2024-13-01", "event", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
	_, err = f.store.SetImportantDate(ctx, "2024-03-02", "event", "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)

	require.NoError(t, f.store.DeleteImportantDate(ctx, "2024-03-01"))
	require.NoError(t, f.store.DeleteImportantDate(ctx, "2024-03-01"))
	dates, err = f.store.ImportantDates(ctx)
	require.NoError(t, err)
	assert.Empty(t, dates)
}
