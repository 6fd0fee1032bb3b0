package archive

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/daylog/internal/clock"
	"github.com/alexanderramin/daylog/internal/domain"
	"github.com/alexanderramin/daylog/internal/events"
	"github.com/alexanderramin/daylog/internal/store"
)

// State is the engine's position in its daily cycle.
type State int

const (
	StateIdle State = iota
	StateArchiving
)

func (s State) String() string {
	if s == StateArchiving {
		return "archiving"
	}
	return "idle"
}

// Archiver moves pending buckets into the archive for one category.
type Archiver interface {
	ArchivePending(ctx context.Context, c domain.Category, due func(domain.DateBucket) bool) (store.Moved, error)
}

// Options tune the daily cycle.
type Options struct {
	Cutoff         clock.TimeOfDay
	ReminderLead   time.Duration
	CatchUpOnStart bool
}

// DefaultOptions archives at 23:59:59 with a 30 minute reminder and
// catches up on start.
func DefaultOptions() Options {
	return Options{
		Cutoff:         clock.TimeOfDay{Hour: 23, Minute: 59, Second: 59},
		ReminderLead:   30 * time.Minute,
		CatchUpOnStart: true,
	}
}

// Result describes one completed pass.
type Result struct {
	Buckets []domain.DateBucket
	Moved   map[domain.Category]store.Moved
}

// Total returns the number of records moved across all categories.
func (r Result) Total() int {
	n := 0
	for _, m := range r.Moved {
		n += m.Total()
	}
	return n
}

// Engine runs the daily pending-to-archive move. Exactly one cutoff timer and
// one reminder timer are outstanding while the engine is started.
type Engine struct {
	archiver Archiver
	sched    clock.Scheduler
	opts     Options
	logger   *slog.Logger
	listener events.Listener

	mu       sync.Mutex
	state    State
	started  bool
	baseCtx  context.Context
	next     time.Time
	cutoff   clock.Handle
	reminder clock.Handle
}

// NewEngine creates a stopped engine.
func NewEngine(archiver Archiver, sched clock.Scheduler, opts Options, logger *slog.Logger, listener events.Listener) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		archiver: archiver,
		sched:    sched,
		opts:     opts,
		logger:   logger,
		listener: events.OrNoop(listener),
		baseCtx:  context.Background(),
	}
}

// Start catches up on buckets left pending from earlier days, when enabled,
// and installs the next cutoff. ctx scopes the work done by timer callbacks.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	e.baseCtx = ctx
	e.started = true
	e.mu.Unlock()

	var passErr error
	if e.opts.CatchUpOnStart {
		today := domain.BucketOf(e.sched.Now())
		_, passErr = e.run(ctx, func(b domain.DateBucket) bool { return b.Before(today) }, true)
		if passErr != nil {
			e.logger.ErrorContext(ctx, "catch-up archival failed", "error", passErr)
		}
	}
	e.ScheduleNextArchive()
	return passErr
}

// Stop cancels outstanding timers. A pass already running completes.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.started = false
	e.cancelLocked()
}

// ScheduleNextArchive replaces any outstanding timers with ones targeting the
// next cutoff computed from the current wall clock, and returns that cutoff.
// The reminder is skipped when its time has already passed.
func (e *Engine) ScheduleNextArchive() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelLocked()
	now := e.sched.Now()
	next := clock.NextOccurrence(now, e.opts.Cutoff)
	e.next = next
	e.cutoff = e.sched.ScheduleAt(next, e.fire)

	if e.opts.ReminderLead > 0 {
		remindAt := next.Add(-e.opts.ReminderLead)
		if remindAt.After(now) {
			bucket := domain.BucketOf(next)
			e.reminder = e.sched.ScheduleAt(remindAt, func() {
				e.listener.OnArchiveDue(e.context(), bucket)
			})
		}
	}
	e.logger.DebugContext(e.baseCtx, "next archival scheduled", "at", next.Format(time.RFC3339))
	return next
}

// Resync fires an overdue cutoff immediately. Timers do not advance while
// the machine is suspended, so hosts call this periodically to catch a
// cutoff that passed during sleep. It reports whether a pass ran.
func (e *Engine) Resync() bool {
	e.mu.Lock()
	overdue := e.started && e.cutoff != nil && !e.sched.Now().Before(e.next)
	e.mu.Unlock()
	if !overdue {
		return false
	}
	e.fire()
	return true
}

// NextArchive returns the currently scheduled cutoff, or the zero time.
func (e *Engine) NextArchive() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cutoff == nil {
		return time.Time{}
	}
	return e.next
}

// State reports whether a pass is running.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// RunArchivalNow archives every non-empty pending bucket of every category.
// Categories are independent: a failure in one is collected into a
// *PassError while the others proceed.
func (e *Engine) RunArchivalNow(ctx context.Context) (Result, error) {
	return e.run(ctx, nil, false)
}

// run performs one pass over every category. A quiet pass only notifies the
// listener when it moved or failed something.
func (e *Engine) run(ctx context.Context, due func(domain.DateBucket) bool, quiet bool) (Result, error) {
	e.mu.Lock()
	if e.state == StateArchiving {
		e.mu.Unlock()
		return Result{}, ErrArchiveInProgress
	}
	e.state = StateArchiving
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.state = StateIdle
		e.mu.Unlock()
	}()

	start := time.Now()
	res := Result{Moved: make(map[domain.Category]store.Moved)}
	failed := make(map[domain.Category]error)
	seen := make(map[domain.DateBucket]bool)
	for _, c := range domain.Categories() {
		moved, err := e.archiver.ArchivePending(ctx, c, due)
		if err != nil {
			failed[c] = err
			continue
		}
		if len(moved) == 0 {
			continue
		}
		res.Moved[c] = moved
		for b := range moved {
			seen[b] = true
		}
	}
	for b := range seen {
		res.Buckets = append(res.Buckets, b)
	}
	domain.SortBuckets(res.Buckets)

	summary := events.ArchiveSummary{Buckets: res.Buckets, Moved: make(map[domain.Category]int, len(res.Moved))}
	for c, m := range res.Moved {
		summary.Moved[c] = m.Total()
	}
	attrs := []any{"duration_ms", time.Since(start).Milliseconds(), "records", res.Total(), "buckets", len(res.Buckets)}
	for c, n := range summary.Moved {
		attrs = append(attrs, string(c), n)
	}

	var err error
	if len(failed) > 0 {
		summary.Failed = failed
		err = &PassError{Failed: failed}
		e.logger.ErrorContext(ctx, "archival pass", append(attrs, "error", err.Error())...)
	} else if quiet && res.Total() == 0 {
		e.logger.DebugContext(ctx, "archival pass", attrs...)
	} else {
		e.logger.InfoContext(ctx, "archival pass", attrs...)
	}
	if !quiet || res.Total() > 0 || err != nil {
		e.listener.OnArchived(ctx, summary)
	}
	return res, err
}

func (e *Engine) fire() {
	ctx := e.context()
	if _, err := e.RunArchivalNow(ctx); err != nil {
		e.logger.ErrorContext(ctx, "scheduled archival failed", "error", err)
	}
	e.mu.Lock()
	started := e.started
	e.mu.Unlock()
	if started {
		e.ScheduleNextArchive()
	}
}

func (e *Engine) context() context.Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.baseCtx
}

func (e *Engine) cancelLocked() {
	if e.cutoff != nil {
		e.cutoff.Cancel()
		e.cutoff = nil
	}
	if e.reminder != nil {
		e.reminder.Cancel()
		e.reminder = nil
	}
}
