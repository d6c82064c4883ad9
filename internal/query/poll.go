// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"context"
	"sync"
	"time"

	"github.com/pdiddy/trendscope/internal/telemetry"
)

// Scheduler arms one-shot timers. Pollers take it as a dependency so tests
// can step time by hand.
type Scheduler interface {
	After(d time.Duration) <-chan time.Time
}

type wallScheduler struct{}

func (wallScheduler) After(d time.Duration) <-chan time.Time { return time.After(d) }

// WallClock schedules on real time.
var WallClock Scheduler = wallScheduler{}

// Refetch is a polling policy: refetch every Interval while Active holds for
// the last fetched payload.
type Refetch[T any] struct {
	Interval time.Duration
	Active   func(last T) bool
}

// Next reports whether to poll again after last and how long to wait.
func (r Refetch[T]) Next(last T) (time.Duration, bool) {
	if r.Interval <= 0 || r.Active == nil || !r.Active(last) {
		return 0, false
	}
	return r.Interval, true
}

// Poller runs a fetch on a Refetch policy.
type Poller[T any] struct {
	Resource  string
	Policy    Refetch[T]
	Scheduler Scheduler
}

// Run fetches once, hands the result to emit, and keeps re-fetching while
// the policy holds for the last successful payload. A failed fetch is
// emitted and polling continues on the previous payload; a failure before
// any payload stops the poller with that error. Run returns nil when the
// policy stops it and ctx.Err() when ctx is canceled.
func (p Poller[T]) Run(ctx context.Context, fetch func(ctx context.Context) (T, error), emit func(T, error)) error {
	sched := p.Scheduler
	if sched == nil {
		sched = WallClock
	}

	var last T
	var have bool
	for first := true; ; first = false {
		if !first {
			telemetry.PollTicks.WithLabelValues(p.Resource).Inc()
		}
		v, err := fetch(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		emit(v, err)
		if err == nil {
			last, have = v, true
		} else if !have {
			return err
		}

		wait, again := p.Policy.Next(last)
		if !again {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sched.After(wait):
		}
	}
}

// Debouncer collapses a burst of inputs to the last one. Each input takes a
// token from Next; once the quiet period has passed the caller acts only if
// Current still accepts that token.
type Debouncer struct {
	Delay time.Duration

	mu  sync.Mutex
	seq uint64
}

// Next supersedes every earlier token.
func (d *Debouncer) Next() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	return d.seq
}

// Current reports whether token is the latest.
func (d *Debouncer) Current(token uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return token == d.seq
}
