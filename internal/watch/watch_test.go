package watch

import (
	"errors"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestWatchdog(dir Direction, clk *fakeClock) *Watchdog {
	return New(Config{
		Deadline:   60 * time.Second,
		IdleWindow: 15 * time.Second,
		Direction:  dir,
		Now:        clk.now,
	})
}

func TestObserve_MonotonicImprovementNeverStalls(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	w := newTestWatchdog(Decreasing, clk)

	dist := 50.0
	for i := 0; i < 10; i++ {
		clk.advance(5 * time.Second)
		dist -= 5
		if err := w.Observe(dist); err != nil {
			t.Fatalf("unexpected error at dist=%v despite steady progress: %v", dist, err)
		}
	}
}

func TestObserve_FrozenMetricStallsBeforeDeadline(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	w := newTestWatchdog(Decreasing, clk)

	if err := w.Observe(50); err != nil {
		t.Fatalf("first observe: %v", err)
	}
	clk.advance(16 * time.Second)
	err := w.Observe(50)
	if !errors.Is(err, ErrStalled) {
		t.Fatalf("expected ErrStalled for frozen metric, got %v", err)
	}
	if w.Elapsed() >= 60*time.Second {
		t.Fatalf("stall should fire before the deadline")
	}
}

func TestObserve_MarginalImprovementTimesOutNotStalls(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	w := newTestWatchdog(Decreasing, clk)

	dist := 50.0
	var err error
	for i := 0; i < 100; i++ {
		clk.advance(5 * time.Second)
		dist -= 1 // keeps improving, never reaches target
		err = w.Observe(dist)
		if err != nil {
			break
		}
	}
	if !errors.Is(err, ErrTimedOut) {
		t.Fatalf("expected ErrTimedOut at deadline, got %v", err)
	}
}

func TestObserve_EpsilonIgnoresJitter(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	w := newTestWatchdog(Decreasing, clk)

	if err := w.Observe(50); err != nil {
		t.Fatalf("first observe: %v", err)
	}
	// Sub-epsilon wiggle must not count as progress.
	for i := 0; i < 8; i++ {
		clk.advance(2 * time.Second)
		if err := w.Observe(49.9); err != nil {
			if !errors.Is(err, ErrStalled) {
				t.Fatalf("expected stall from jitter-only metric, got %v", err)
			}
			return
		}
	}
	t.Fatalf("jitter-only metric never stalled")
}

func TestObserve_IncreasingDirection(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	w := newTestWatchdog(Increasing, clk)

	collected := 0.0
	for i := 0; i < 5; i++ {
		clk.advance(5 * time.Second)
		collected++
		if err := w.Observe(collected); err != nil {
			t.Fatalf("unexpected error while collecting: %v", err)
		}
	}
	clk.advance(15 * time.Second)
	if err := w.Observe(collected); !errors.Is(err, ErrStalled) {
		t.Fatalf("expected stall once collection stops, got %v", err)
	}
}
