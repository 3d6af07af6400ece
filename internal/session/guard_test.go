package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"minebridge/internal/protocol"
	"minebridge/internal/upstream"
)

func testSession(t *testing.T) *Session {
	t.Helper()
	s := newSession("a1", upstream.NewFake(), Config{}, 100, nil)
	t.Cleanup(s.Close)
	return s
}

func TestAcquire_SingleFlight(t *testing.T) {
	s := testSession(t)

	scope, err := s.Acquire(context.Background())
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if !s.TaskRunning() {
		t.Fatalf("running flag should be set")
	}

	if _, err := s.Acquire(context.Background()); !errors.Is(err, protocol.ErrAlreadyRunning) {
		t.Fatalf("second acquire should fail with ErrAlreadyRunning, got %v", err)
	}

	scope.Release()
	if s.TaskRunning() {
		t.Fatalf("running flag should clear on release")
	}

	// Slot is reusable after release.
	scope2, err := s.Acquire(context.Background())
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	scope2.Release()
}

func TestAcquire_ConcurrentContention(t *testing.T) {
	s := testSession(t)

	const n = 16
	var wg sync.WaitGroup
	results := make(chan error, n)
	hold := make(chan struct{})

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scope, err := s.Acquire(context.Background())
			if err != nil {
				results <- err
				return
			}
			<-hold
			scope.Release()
			results <- nil
		}()
	}

	// The single winner parks on hold; every other attempt must fail
	// immediately with the contention error.
	for i := 0; i < n-1; i++ {
		if err := <-results; !errors.Is(err, protocol.ErrAlreadyRunning) {
			t.Fatalf("loser %d: expected ErrAlreadyRunning, got %v", i, err)
		}
	}
	close(hold)
	if err := <-results; err != nil {
		t.Fatalf("winner should complete cleanly, got %v", err)
	}
	wg.Wait()
	if s.TaskRunning() {
		t.Fatalf("running flag must be false after all scopes complete")
	}
}

func TestCancelTask_CancelsScopeContext(t *testing.T) {
	s := testSession(t)

	scope, err := s.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer scope.Release()

	if s.CancelTask() != true {
		t.Fatalf("cancel should report an active task")
	}
	select {
	case <-scope.Context().Done():
	default:
		t.Fatalf("scope context should be cancelled")
	}

	scope.Release()
	if s.CancelTask() {
		t.Fatalf("cancel with no active task should report false")
	}
}

func TestRelease_Idempotent(t *testing.T) {
	s := testSession(t)
	scope, err := s.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	scope.Release()
	scope.Release()
	if s.TaskRunning() {
		t.Fatalf("running flag stuck after double release")
	}
}

func TestAcquire_ClosedSession(t *testing.T) {
	s := newSession("a1", upstream.NewFake(), Config{}, 100, nil)
	s.Close()
	if _, err := s.Acquire(context.Background()); !errors.Is(err, protocol.ErrNotConnected) {
		t.Fatalf("closed session should refuse acquire, got %v", err)
	}
}
