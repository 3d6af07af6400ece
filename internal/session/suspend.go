package session

import "context"

// Suspend increments the suspension refcount. While any holder is
// active the auto-feed poller must not start an eat.
func (s *Session) Suspend() {
	s.mu.Lock()
	s.suspend++
	s.mu.Unlock()
}

// Resume decrements the refcount, never below zero.
func (s *Session) Resume() {
	s.mu.Lock()
	if s.suspend > 0 {
		s.suspend--
	}
	s.mu.Unlock()
}

// Suspended reports whether any equip swap is in progress.
func (s *Session) Suspended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suspend > 0
}

// WithSuspended runs fn under the suspension flag. The decrement is
// guaranteed on every exit path, including panics during fn.
func (s *Session) WithSuspended(fn func() error) error {
	s.Suspend()
	defer s.Resume()
	return fn()
}

// EquipSuspended performs an equip through the upstream surface under
// the suspension flag. Every equip in the codebase routes through
// here so the auto-feed poller never eats mid-swap.
func (s *Session) EquipSuspended(ctx context.Context, item, slot string) error {
	return s.WithSuspended(func() error {
		return s.Upstream.Equip(ctx, item, slot)
	})
}
