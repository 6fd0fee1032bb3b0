package cli

import (
	"context"
	"time"

	"github.com/alexanderramin/daylog/internal/aggregate"
	"github.com/alexanderramin/daylog/internal/archive"
	"github.com/alexanderramin/daylog/internal/backup"
	"github.com/alexanderramin/daylog/internal/clock"
	"github.com/alexanderramin/daylog/internal/domain"
	"github.com/alexanderramin/daylog/internal/events"
)

// RecordStore is the part of the record store the commands use.
type RecordStore interface {
	Today() domain.DateBucket
	AppendPending(ctx context.Context, c domain.Category, values map[string]any) (domain.Record, error)
	ReadPending(ctx context.Context, c domain.Category) (domain.CategoryLog, error)
	ReadArchived(ctx context.Context, c domain.Category) (domain.CategoryLog, error)
	ExportAll(ctx context.Context) (domain.Snapshot, error)
	ReplaceAll(ctx context.Context, snap domain.Snapshot) error
	ImportantDates(ctx context.Context) (domain.ImportantDates, error)
	SetImportantDate(ctx context.Context, day domain.DateBucket, typ string, label string) (domain.ImportantDate, error)
	DeleteImportantDate(ctx context.Context, day domain.DateBucket) error
}

// Archiver drives the daily archival cycle.
type Archiver interface {
	Start(ctx context.Context) error
	Stop()
	RunArchivalNow(ctx context.Context) (archive.Result, error)
	Resync() bool
	NextArchive() time.Time
	State() archive.State
}

// Insights computes the read-only views.
type Insights interface {
	Calendar(ctx context.Context, month string) (aggregate.CalendarMonth, error)
	Day(ctx context.Context, day domain.DateBucket) (aggregate.DayDetail, error)
	Review(ctx context.Context) aggregate.Review
	Overview(ctx context.Context) aggregate.Overview
}

// Syncer runs the remote backup protocol.
type Syncer interface {
	Connect(ctx context.Context, credential string) (domain.SyncState, error)
	Upload(ctx context.Context) error
	Download(ctx context.Context, confirm backup.ConfirmFunc) error
	Disconnect(ctx context.Context) error
	Status(ctx context.Context) (backup.Status, error)
}

// App holds everything the commands need.
type App struct {
	Store    RecordStore
	Archive  Archiver
	Insights Insights
	Sync     Syncer
	Clock    clock.Clock

	// Feed receives every boundary event. The watch view and the sync
	// progress line read from it; nil disables both.
	Feed <-chan events.Event

	// Prompt collects interactive input. Defaults to huh forms.
	Prompt Prompter

	// IsInteractive reports whether a human is at the terminal.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) prompter() Prompter {
	if a.Prompt == nil {
		return huhPrompter{}
	}
	return a.Prompt
}

func (a *App) now() time.Time {
	if a.Clock == nil {
		return time.Now()
	}
	return a.Clock.Now()
}
