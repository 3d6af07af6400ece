package session

import (
	"context"
	"sync"

	"minebridge/internal/protocol"
)

// TaskScope is the token for the single foreground action slot of a
// session. Release must run on every exit path.
type TaskScope struct {
	s      *Session
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// Acquire claims the foreground slot. It fails with ErrAlreadyRunning
// while another scope is active. The scope's context is cancelled by
// CancelTask and by session teardown.
func (s *Session) Acquire(ctx context.Context) (*TaskScope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, protocol.ErrNotConnected
	}
	if s.running {
		return nil, protocol.ErrAlreadyRunning
	}
	tctx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	return &TaskScope{s: s, ctx: tctx, cancel: cancel}, nil
}

// Context is the cooperative-cancellation context for the action. The
// action must observe ctx.Err() at its suspension points and unwind
// promptly once cancelled.
func (t *TaskScope) Context() context.Context { return t.ctx }

// Release frees the slot and clears the cancellation handle. Safe to
// call more than once.
func (t *TaskScope) Release() {
	t.once.Do(func() {
		t.cancel()
		t.s.mu.Lock()
		t.s.running = false
		t.s.cancel = nil
		t.s.mu.Unlock()
	})
}

// CancelTask cancels the running foreground action, if any. The
// cancelled action observes its context and unwinds; it is not
// force-terminated.
func (s *Session) CancelTask() bool {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel == nil {
		return false
	}
	cancel()
	return true
}

// TaskRunning reports whether the foreground slot is held.
func (s *Session) TaskRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
