package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/alexanderramin/daylog/internal/domain"
)

// Event kinds.
const (
	KindAppend       = "append"
	KindArchiveDue   = "archive_due"
	KindArchived     = "archived"
	KindSyncProgress = "sync_progress"
	KindSyncResult   = "sync_result"
)

// Event is one captured boundary callback, flattened for inspection.
type Event struct {
	Kind     string
	Category domain.Category
	Record   domain.Record
	Bucket   domain.DateBucket
	Summary  ArchiveSummary
	Percent  int
	Outcome  Outcome
	Detail   string
}

func (e Event) String() string {
	switch e.Kind {
	case KindAppend:
		return fmt.Sprintf("append %s", e.Category)
	case KindArchiveDue:
		return fmt.Sprintf("archive due %s", e.Bucket)
	case KindArchived:
		return fmt.Sprintf("archived %d bucket(s)", len(e.Summary.Buckets))
	case KindSyncProgress:
		return fmt.Sprintf("sync %d%% %s", e.Percent, e.Detail)
	case KindSyncResult:
		return fmt.Sprintf("sync %s: %s", e.Outcome, e.Detail)
	}
	return e.Kind
}

// Recorder captures events in memory and optionally forwards them to a
// channel. Safe for use from timer goroutines.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	ch     chan<- Event
	retain bool
}

// NewRecorder returns a Recorder. When ch is non-nil every event is also sent
// on it without blocking; events are dropped when ch is full.
func NewRecorder(ch chan<- Event) *Recorder {
	return &Recorder{ch: ch, retain: true}
}

// NewFeed returns a Recorder that only forwards to ch and keeps nothing, for
// long-running processes.
func NewFeed(ch chan<- Event) *Recorder {
	return &Recorder{ch: ch}
}

func (r *Recorder) add(e Event) {
	if r.retain {
		r.mu.Lock()
		r.events = append(r.events, e)
		r.mu.Unlock()
	}
	if r.ch != nil {
		select {
		case r.ch <- e:
		default:
		}
	}
}

// Events returns a copy of everything captured so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the kind of every captured event, in order.
func (r *Recorder) Kinds() []string {
	evs := r.Events()
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.Kind
	}
	return out
}

func (r *Recorder) OnAppend(_ context.Context, c domain.Category, rec domain.Record) {
	r.add(Event{Kind: KindAppend, Category: c, Record: rec})
}

func (r *Recorder) OnArchiveDue(_ context.Context, b domain.DateBucket) {
	r.add(Event{Kind: KindArchiveDue, Bucket: b})
}

func (r *Recorder) OnArchived(_ context.Context, s ArchiveSummary) {
	r.add(Event{Kind: KindArchived, Summary: s})
}

func (r *Recorder) OnSyncProgress(_ context.Context, percent int, message string) {
	r.add(Event{Kind: KindSyncProgress, Percent: percent, Detail: message})
}

func (r *Recorder) OnSyncResult(_ context.Context, o Outcome, detail string) {
	r.add(Event{Kind: KindSyncResult, Outcome: o, Detail: detail})
}
