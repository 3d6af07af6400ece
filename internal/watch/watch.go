// Package watch implements a reusable stall/timeout detector for
// long-running actions. It distinguishes "no measurable progress for
// an idle window" from "exceeded the overall deadline" so callers can
// tell an unreachable target from a legitimately slow one. The
// watchdog never retries; retry policy belongs to the calling action.
package watch

import (
	"errors"
	"math"
	"time"
)

var (
	ErrStalled  = errors.New("no progress within idle window")
	ErrTimedOut = errors.New("deadline exceeded")
)

type Direction int

const (
	// Decreasing metrics shrink toward the goal (remaining distance).
	Decreasing Direction = iota
	// Increasing metrics grow toward the goal (items collected).
	Increasing
)

const defaultEpsilon = 0.25

type Config struct {
	Deadline   time.Duration
	IdleWindow time.Duration
	Direction  Direction
	// Epsilon is the minimum improvement that counts as progress.
	// Zero means the 0.25 default.
	Epsilon float64

	// Now overrides the clock in tests.
	Now func() time.Time
}

type Watchdog struct {
	cfg         Config
	start       time.Time
	best        float64
	lastImprove time.Time
}

func New(cfg Config) *Watchdog {
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = defaultEpsilon
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	now := cfg.Now()
	best := math.Inf(1)
	if cfg.Direction == Increasing {
		best = math.Inf(-1)
	}
	return &Watchdog{
		cfg:         cfg,
		start:       now,
		best:        best,
		lastImprove: now,
	}
}

// Observe feeds one metric sample. It returns nil while the action may
// continue, ErrStalled once the idle window elapses without
// improvement, or ErrTimedOut once the overall deadline passes. Both
// are terminal.
func (w *Watchdog) Observe(metric float64) error {
	now := w.cfg.Now()

	improved := false
	switch w.cfg.Direction {
	case Decreasing:
		improved = metric < w.best-w.cfg.Epsilon
	case Increasing:
		improved = metric > w.best+w.cfg.Epsilon
	}
	if improved {
		w.best = metric
		w.lastImprove = now
	}

	if w.cfg.Deadline > 0 && now.Sub(w.start) >= w.cfg.Deadline {
		return ErrTimedOut
	}
	if w.cfg.IdleWindow > 0 && now.Sub(w.lastImprove) >= w.cfg.IdleWindow {
		return ErrStalled
	}
	return nil
}

// Best returns the best metric seen so far.
func (w *Watchdog) Best() float64 { return w.best }

// Elapsed returns time since the watchdog was created.
func (w *Watchdog) Elapsed() time.Duration { return w.cfg.Now().Sub(w.start) }
