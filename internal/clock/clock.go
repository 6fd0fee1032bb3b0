// Package clock abstracts wall-clock time and one-shot timers so that the
// archival schedule can be computed and fired deterministically in tests.
package clock

import (
	"fmt"
	"time"
)

// Clock reports the current wall-clock time.
type Clock interface {
	Now() time.Time
}

// Handle is a scheduled one-shot callback.
type Handle interface {
	// Cancel stops the callback from firing. It reports whether the call
	// stopped the timer (false if it already fired or was cancelled).
	Cancel() bool
}

// Scheduler installs one-shot callbacks at absolute wall-clock instants.
type Scheduler interface {
	Clock
	ScheduleAt(at time.Time, fn func()) Handle
}

// TimeOfDay is a local time-of-day with second precision.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay parses "HH:MM:SS" (or "HH:MM").
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("invalid time of day %q (want HH:MM:SS)", s)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// On returns the instant at which t occurs on the calendar day of day, in
// day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, t.Second, 0, day.Location())
}

// NextOccurrence returns the first instant at or after now where the local
// time equals t. An instant equal to now counts as already passed, so the
// result is always strictly in the future.
func NextOccurrence(now time.Time, t TimeOfDay) time.Time {
	target := t.On(now)
	if !now.Before(target) {
		y, m, d := now.Date()
		target = t.On(time.Date(y, m, d+1, 0, 0, 0, 0, now.Location()))
	}
	return target
}

// DelayUntil returns the delay from now until the next occurrence of t.
// It is never negative.
func DelayUntil(now time.Time, t TimeOfDay) time.Duration {
	return NextOccurrence(now, t).Sub(now)
}

// Real is the process wall clock backed by time.AfterFunc. Times are
// reported in Location, or the process local zone when nil.
type Real struct {
	Location *time.Location
}

func (r Real) Now() time.Time {
	if r.Location != nil {
		return time.Now().In(r.Location)
	}
	return time.Now()
}

func (r Real) ScheduleAt(at time.Time, fn func()) Handle {
	delay := at.Sub(r.Now())
	if delay < 0 {
		delay = 0
	}
	return realHandle{timer: time.AfterFunc(delay, fn)}
}

type realHandle struct {
	timer *time.Timer
}

func (h realHandle) Cancel() bool {
	return h.timer.Stop()
}
