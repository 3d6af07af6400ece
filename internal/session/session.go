// Package session holds the per-agent orchestration state: the
// single-flight task guard, the refcounted suspension flag, one-shot
// event slots, live effect and vitals counters, the bounded chat log,
// and the registry that owns session lifecycle.
package session

import (
	"log/slog"
	"sync"
	"time"

	"minebridge/internal/protocol"
	"minebridge/internal/upstream"
)

// FeedConfig controls the auto-feed poller.
type FeedConfig struct {
	Enabled   bool    `json:"enabled"`
	Threshold float64 `json:"threshold"`
}

// ShieldConfig controls the projectile-aware auto-shield poller.
type ShieldConfig struct {
	Enabled  bool          `json:"enabled"`
	Duration time.Duration `json:"duration_ms"`
}

// DefenseConfig controls damage retaliation.
type DefenseConfig struct {
	Enabled  bool          `json:"enabled"`
	Duration time.Duration `json:"duration_ms"`
}

// Config is the mutable background-behavior configuration, read by the
// pollers on every cycle.
type Config struct {
	AutoFeed    FeedConfig    `json:"auto_feed"`
	AutoShield  ShieldConfig  `json:"auto_shield"`
	SelfDefense DefenseConfig `json:"self_defense"`
}

// Session is the orchestration state for one connected agent. All
// fields are declared up front; nothing is attached dynamically.
type Session struct {
	ID       string
	Upstream upstream.Surface

	log *slog.Logger

	mu sync.Mutex

	// Task guard state.
	running bool
	cancel  func()

	// Suspension refcount; derived flag is suspend > 0.
	suspend int

	cfg Config

	// One-shot event slots, cleared exactly once on read.
	slots protocol.EventSlots

	// Live counters.
	vitals  protocol.Vitals
	effects map[string]protocol.Effect

	// Slot -> item, tracked from slot-change notifications.
	gear map[string]string

	chat     []protocol.ChatLine
	chatCap  int
	chatSink func(protocol.ChatLine)

	damageCh chan protocol.Notification
	closed   bool
	closers  []func()

	done chan struct{}
}

func newSession(id string, up upstream.Surface, cfg Config, chatCap int, log *slog.Logger) *Session {
	if chatCap <= 0 {
		chatCap = 100
	}
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		ID:       id,
		Upstream: up,
		log:      log.With("agent", id),
		cfg:      cfg,
		effects:  map[string]protocol.Effect{},
		gear:     map[string]string{},
		chatCap:  chatCap,
		damageCh: make(chan protocol.Notification, 16),
		done:     make(chan struct{}),
	}
}

// Damage delivers damage notifications to the retaliation reaction.
// Closed on session teardown.
func (s *Session) Damage() <-chan protocol.Notification { return s.damageCh }

// Done is closed when the session is torn down.
func (s *Session) Done() <-chan struct{} { return s.done }

// AddCloser registers a teardown hook (behavior stop, upstream close).
// Runs once, in reverse registration order, when the session closes.
func (s *Session) AddCloser(fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		fn()
		return
	}
	s.closers = append(s.closers, fn)
	s.mu.Unlock()
}

// Close tears the session down: cancels any running task, stops
// registered behaviors, and closes the damage channel. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	closers := s.closers
	s.closers = nil
	cancel := s.cancel
	close(s.damageCh)
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	close(s.done)
}

func (s *Session) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *Session) SetFeedConfig(c FeedConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.AutoFeed = c
}

func (s *Session) SetShieldConfig(c ShieldConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.AutoShield = c
}

func (s *Session) SetDefenseConfig(c DefenseConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.SelfDefense = c
}

// Vitals returns the last pushed health/food counters.
func (s *Session) Vitals() protocol.Vitals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vitals
}

func (s *Session) setVitals(v protocol.Vitals) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vitals = v
}

// Effects returns a copy of the live effect map.
func (s *Session) Effects() map[string]protocol.Effect {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]protocol.Effect, len(s.effects))
	for k, v := range s.effects {
		out[k] = v
	}
	return out
}

// Gear returns a copy of the slot -> item map built from slot-change
// notifications.
func (s *Session) Gear() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.gear))
	for k, v := range s.gear {
		out[k] = v
	}
	return out
}

// SetChatSink installs a tap on incoming chat, called by the pump for
// every line. The sink must not block.
func (s *Session) SetChatSink(fn func(protocol.ChatLine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatSink = fn
}

// AppendChat records a line, evicting the oldest past capacity.
func (s *Session) AppendChat(line protocol.ChatLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = append(s.chat, line)
	if len(s.chat) > s.chatCap {
		s.chat = s.chat[len(s.chat)-s.chatCap:]
	}
}

// ChatTail returns the most recent n chat lines, oldest first.
func (s *Session) ChatTail(n int) []protocol.ChatLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || n > len(s.chat) {
		n = len(s.chat)
	}
	out := make([]protocol.ChatLine, n)
	copy(out, s.chat[len(s.chat)-n:])
	return out
}
