package events

import (
	"context"
	"io"
	"log/slog"

	"github.com/alexanderramin/daylog/internal/domain"
)

// Outcome is the terminal state of a sync operation.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// ArchiveSummary describes one finished archival pass.
type ArchiveSummary struct {
	Buckets []domain.DateBucket
	Moved   map[domain.Category]int
	Failed  map[domain.Category]error
}

// Listener is the boundary toward whatever presents the core to a person.
// Implementations must return promptly; callbacks run on the caller's
// goroutine.
type Listener interface {
	OnAppend(ctx context.Context, category domain.Category, rec domain.Record)
	// OnArchiveDue fires ahead of the cutoff as a reminder. It never implies a
	// store mutation.
	OnArchiveDue(ctx context.Context, cutoff domain.DateBucket)
	// OnArchived fires after a pass; views must be recomputed and input
	// surfaces cleared.
	OnArchived(ctx context.Context, summary ArchiveSummary)
	OnSyncProgress(ctx context.Context, percent int, message string)
	OnSyncResult(ctx context.Context, outcome Outcome, detail string)
}

// Noop ignores all events.
type Noop struct{}

func (Noop) OnAppend(context.Context, domain.Category, domain.Record) {}
func (Noop) OnArchiveDue(context.Context, domain.DateBucket)          {}
func (Noop) OnArchived(context.Context, ArchiveSummary)               {}
func (Noop) OnSyncProgress(context.Context, int, string)              {}
func (Noop) OnSyncResult(context.Context, Outcome, string)            {}

// Multi fans events out to every listener in order.
type Multi []Listener

func (m Multi) OnAppend(ctx context.Context, c domain.Category, r domain.Record) {
	for _, l := range m {
		l.OnAppend(ctx, c, r)
	}
}

func (m Multi) OnArchiveDue(ctx context.Context, b domain.DateBucket) {
	for _, l := range m {
		l.OnArchiveDue(ctx, b)
	}
}

func (m Multi) OnArchived(ctx context.Context, s ArchiveSummary) {
	for _, l := range m {
		l.OnArchived(ctx, s)
	}
}

func (m Multi) OnSyncProgress(ctx context.Context, percent int, message string) {
	for _, l := range m {
		l.OnSyncProgress(ctx, percent, message)
	}
}

func (m Multi) OnSyncResult(ctx context.Context, o Outcome, detail string) {
	for _, l := range m {
		l.OnSyncResult(ctx, o, detail)
	}
}

// OrNoop returns the first non-nil listener, or Noop.
func OrNoop(listeners ...Listener) Listener {
	for _, l := range listeners {
		if l != nil {
			return l
		}
	}
	return Noop{}
}

type logListener struct {
	logger *slog.Logger
}

// NewLogListener writes events to w as structured text lines.
func NewLogListener(w io.Writer) Listener {
	if w == nil {
		return Noop{}
	}
	return &logListener{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (l *logListener) OnAppend(ctx context.Context, c domain.Category, r domain.Record) {
	l.logger.InfoContext(ctx, "record_appended", "category", string(c), "id", r.ID,
		"bucket", string(domain.BucketOf(r.Timestamp)))
}

func (l *logListener) OnArchiveDue(ctx context.Context, b domain.DateBucket) {
	l.logger.InfoContext(ctx, "archive_due", "bucket", string(b))
}

func (l *logListener) OnArchived(ctx context.Context, s ArchiveSummary) {
	attrs := make([]any, 0, 4+2*len(s.Moved)+2*len(s.Failed))
	buckets := make([]string, len(s.Buckets))
	for i, b := range s.Buckets {
		buckets[i] = string(b)
	}
	attrs = append(attrs, "buckets", buckets)
	for c, n := range s.Moved {
		attrs = append(attrs, "moved."+string(c), n)
	}
	if len(s.Failed) > 0 {
		for c, err := range s.Failed {
			attrs = append(attrs, "failed."+string(c), err.Error())
		}
		l.logger.ErrorContext(ctx, "archived", attrs...)
		return
	}
	l.logger.InfoContext(ctx, "archived", attrs...)
}

func (l *logListener) OnSyncProgress(ctx context.Context, percent int, message string) {
	l.logger.InfoContext(ctx, "sync_progress", "percent", percent, "message", message)
}

func (l *logListener) OnSyncResult(ctx context.Context, o Outcome, detail string) {
	if o == OutcomeError {
		l.logger.ErrorContext(ctx, "sync_result", "outcome", string(o), "detail", detail)
		return
	}
	l.logger.InfoContext(ctx, "sync_result", "outcome", string(o), "detail", detail)
}
