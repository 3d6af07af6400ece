package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"minebridge/internal/upstream"
)

func TestSuspend_RefcountNeverNegative(t *testing.T) {
	s := testSession(t)

	// Spurious resumes must not push the count below zero.
	s.Resume()
	s.Resume()
	if s.Suspended() {
		t.Fatalf("fresh session must not be suspended")
	}

	s.Suspend()
	s.Suspend()
	if !s.Suspended() {
		t.Fatalf("suspended after two increments")
	}
	s.Resume()
	if !s.Suspended() {
		t.Fatalf("one holder remains")
	}
	s.Resume()
	if s.Suspended() {
		t.Fatalf("all holders released")
	}
	s.Resume()
	s.Suspend()
	if !s.Suspended() {
		t.Fatalf("increment after spurious resume must still suspend")
	}
}

func TestSuspend_ConcurrentBalance(t *testing.T) {
	s := testSession(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithSuspended(func() error { return nil })
		}()
	}
	wg.Wait()
	if s.Suspended() {
		t.Fatalf("refcount unbalanced after concurrent use")
	}
}

func TestWithSuspended_DecrementsOnError(t *testing.T) {
	s := testSession(t)
	sentinel := errors.New("boom")
	if err := s.WithSuspended(func() error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("error should propagate, got %v", err)
	}
	if s.Suspended() {
		t.Fatalf("failed body must still release the flag")
	}
}

func TestWithSuspended_DecrementsOnPanic(t *testing.T) {
	s := testSession(t)
	func() {
		defer func() { _ = recover() }()
		_ = s.WithSuspended(func() error { panic("boom") })
	}()
	if s.Suspended() {
		t.Fatalf("panicking body must still release the flag")
	}
}

func TestEquipSuspended_FlagHeldDuringEquip(t *testing.T) {
	fake := upstream.NewFake()
	s := newSession("a1", fake, Config{}, 100, nil)
	t.Cleanup(s.Close)

	var duringEquip bool
	fake.EquipFn = func(ctx context.Context, item, slot string) error {
		duringEquip = s.Suspended()
		return nil
	}
	if err := s.EquipSuspended(context.Background(), "shield", "off-hand"); err != nil {
		t.Fatalf("equip: %v", err)
	}
	if !duringEquip {
		t.Fatalf("suspension flag must be held during the equip")
	}
	if s.Suspended() {
		t.Fatalf("suspension flag must release after the equip")
	}
}
