package session

import (
	"fmt"
	"log/slog"
	"sync"

	"minebridge/internal/upstream"
)

// Registry owns every live session, keyed by agent id. Creation wires
// the notification pump; teardown (explicit or from link loss) removes
// the entry and runs the session's closers.
type Registry struct {
	log *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		log:      log,
		sessions: map[string]*Session{},
	}
}

// Create registers a session for id and starts its notification pump.
// Fails when a live session for the id already exists.
func (r *Registry) Create(id string, up upstream.Surface, cfg Config, chatCap int) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, fmt.Errorf("session registry closed")
	}
	if _, ok := r.sessions[id]; ok {
		return nil, fmt.Errorf("session %q already exists", id)
	}

	s := newSession(id, up, cfg, chatCap, r.log)
	s.AddCloser(func() { _ = up.Close() })
	r.sessions[id] = s

	go s.pump(func() { r.drop(id, s) })

	r.log.Info("session created", "agent", id)
	return s, nil
}

// Get returns the live session for id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove tears down and forgets the session for id.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if s != nil {
		s.Close()
		r.log.Info("session removed", "agent", id)
	}
}

// drop forgets a session that tore itself down (link loss). Only
// removes the entry if it still points at the same session.
func (r *Registry) drop(id string, s *Session) {
	r.mu.Lock()
	dropped := false
	if cur, ok := r.sessions[id]; ok && cur == s {
		delete(r.sessions, id)
		dropped = true
	}
	r.mu.Unlock()
	if dropped {
		r.log.Info("session dropped", "agent", id)
	}
}

// List returns the ids of live sessions.
func (r *Registry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		out = append(out, id)
	}
	return out
}

// Close tears down every session.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = map[string]*Session{}
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
