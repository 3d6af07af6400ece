// Package behavior runs the per-session background reactive units:
// the auto-feed poller, the projectile-aware auto-shield poller, and
// the damage retaliation reaction. None of them touch the foreground
// task guard; they coordinate with foreground actions only through the
// session's suspension flag.
package behavior

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"minebridge/internal/session"
	"minebridge/internal/tuning"
)

const opTimeout = 10 * time.Second

// Set is the running behavior group for one session.
type Set struct {
	s   *session.Session
	tun tuning.Tuning
	log *slog.Logger

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	eatBusy        atomic.Bool
	lastHungerWarn time.Time // feed loop only

	shieldMu        sync.Mutex
	lastShieldRaise time.Time
}

// Start launches the behavior goroutines and registers their stop as a
// session closer, so teardown from any cause stops them.
func Start(s *session.Session, tun tuning.Tuning, log *slog.Logger) *Set {
	if log == nil {
		log = slog.Default()
	}
	b := &Set{
		s:    s,
		tun:  tun,
		log:  log.With("agent", s.ID),
		stop: make(chan struct{}),
	}
	b.wg.Add(3)
	go b.feedLoop()
	go b.shieldLoop()
	go b.defenseLoop()
	s.AddCloser(b.Stop)
	return b
}

// Stop halts all behavior goroutines and waits for them. Idempotent.
func (b *Set) Stop() {
	b.stopOnce.Do(func() { close(b.stop) })
	b.wg.Wait()
}

// opCtx bounds one collaborator operation and aborts it on Stop.
func (b *Set) opCtx() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	go func() {
		select {
		case <-b.stop:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
