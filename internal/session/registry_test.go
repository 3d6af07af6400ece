package session

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"minebridge/internal/protocol"
	"minebridge/internal/upstream"
)

func TestRegistry_CreateGetRemove(t *testing.T) {
	r := NewRegistry(nil)
	defer r.Close()

	fake := upstream.NewFake()
	s, err := r.Create("bot1", fake, Config{}, 100)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got, ok := r.Get("bot1"); !ok || got != s {
		t.Fatalf("get should return the created session")
	}
	if _, err := r.Create("bot1", upstream.NewFake(), Config{}, 100); err == nil {
		t.Fatalf("duplicate create must fail")
	}

	r.Remove("bot1")
	if _, ok := r.Get("bot1"); ok {
		t.Fatalf("removed session still resolvable")
	}
	if fake.Connected() {
		t.Fatalf("remove must close the upstream link")
	}
}

func TestRegistry_LinkLossTearsDownSession(t *testing.T) {
	r := NewRegistry(nil)
	defer r.Close()

	fake := upstream.NewFake()
	s, err := r.Create("bot1", fake, Config{}, 100)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Simulate the connection ending for any cause.
	_ = fake.Close()

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("session should tear down when the link drops")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := r.Get("bot1"); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("registry entry should be dropped after link loss")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRegistry_PumpAppliesNotifications(t *testing.T) {
	r := NewRegistry(nil)
	defer r.Close()

	fake := upstream.NewFake()
	s, err := r.Create("bot1", fake, Config{}, 100)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	fake.Push(protocol.Notification{Kind: protocol.NotifyVitals, Vitals: &protocol.Vitals{Health: 7, Food: 5}})

	deadline := time.Now().Add(2 * time.Second)
	for {
		if v := s.Vitals(); v.Health == 7 && v.Food == 5 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("pump never applied the vitals notification")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRegistry_PumpTracksSlotChanges(t *testing.T) {
	r := NewRegistry(nil)
	defer r.Close()

	fake := upstream.NewFake()
	s, err := r.Create("bot1", fake, Config{}, 100)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	fake.Push(protocol.Notification{Kind: protocol.NotifySlotChanged, Slot: "hand", Item: "stone_sword"})

	deadline := time.Now().Add(2 * time.Second)
	for {
		if s.Gear()["hand"] == "stone_sword" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("pump never applied the slot change: %v", s.Gear())
		}
		time.Sleep(5 * time.Millisecond)
	}

	// An empty item clears the slot.
	fake.Push(protocol.Notification{Kind: protocol.NotifySlotChanged, Slot: "hand"})
	deadline = time.Now().Add(2 * time.Second)
	for {
		if _, ok := s.Gear()["hand"]; !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("cleared slot still present: %v", s.Gear())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// logBuffer is a goroutine-safe sink for the registry's logger.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRegistry_StaleDropLogsNothing(t *testing.T) {
	var buf logBuffer
	r := NewRegistry(slog.New(slog.NewTextHandler(&buf, nil)))
	defer r.Close()

	fake := upstream.NewFake()
	s, err := r.Create("bot1", fake, Config{}, 100)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Explicit removal wins; the pump's drop callback then finds no
	// entry and must not claim it removed one.
	r.Remove("bot1")
	<-s.Done()

	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		if strings.Contains(buf.String(), "session dropped") {
			t.Fatalf("stale drop logged a removal it did not perform")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !strings.Contains(buf.String(), "session removed") {
		t.Fatalf("explicit removal should have logged")
	}
}

func TestSession_ClosersRunOnce(t *testing.T) {
	s := newSession("a1", upstream.NewFake(), Config{}, 100, nil)
	calls := 0
	s.AddCloser(func() { calls++ })
	s.Close()
	s.Close()
	if calls != 1 {
		t.Fatalf("closer should run exactly once, ran %d times", calls)
	}
	// Closers added after close run immediately.
	s.AddCloser(func() { calls++ })
	if calls != 2 {
		t.Fatalf("late closer should run immediately, calls=%d", calls)
	}
}
