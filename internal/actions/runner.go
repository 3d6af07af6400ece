// Package actions implements the foreground operations: mining,
// crafting, smelting, sleeping, and container transfer. Every action
// runs under the session's single-flight task guard, is watched for
// stall and timeout, and returns a result envelope carrying the
// vitals delta and the one-shot event slots.
package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"minebridge/internal/protocol"
	"minebridge/internal/session"
	"minebridge/internal/tuning"
	"minebridge/internal/upstream"
	"minebridge/internal/watch"
)

// Runner executes foreground actions. Poll intervals are fields so
// tests can shrink them.
type Runner struct {
	tun tuning.Tuning
	log *slog.Logger

	// Poll paces the re-scan loops inside mine and navigate retries.
	Poll time.Duration
	// SmeltPoll paces furnace-state sampling.
	SmeltPoll time.Duration
}

func NewRunner(tun tuning.Tuning, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		tun:       tun,
		log:       log,
		Poll:      500 * time.Millisecond,
		SmeltPoll: time.Second,
	}
}

// Cancel requests cooperative cancellation of the running action.
// Returns false when no action is running.
func (r *Runner) Cancel(s *session.Session) bool { return s.CancelTask() }

// deadline applies a per-request override to the class default.
func (r *Runner) deadline(def time.Duration, overrideMs int) time.Duration {
	if overrideMs > 0 {
		return time.Duration(overrideMs) * time.Millisecond
	}
	return def
}

// run is the common envelope: acquire the task guard, bound the action
// by its class deadline, and close with a status block whatever the
// outcome.
func (r *Runner) run(ctx context.Context, s *session.Session, op string, deadline time.Duration, fn func(ctx context.Context) error) protocol.ActionResult {
	scope, err := s.Acquire(ctx)
	if err != nil {
		res := failureResult(err)
		r.log.Warn("action rejected", "agent", s.ID, "op", op, "code", res.Code)
		return res
	}
	defer scope.Release()

	before := s.Vitals()
	start := time.Now()

	tctx := scope.Context()
	if deadline > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(tctx, deadline)
		defer cancel()
	}

	err = fn(tctx)

	res := protocol.ActionResult{OK: err == nil}
	if err != nil {
		res.Code, res.Message = errorCode(err)
		res.TimedOut = res.Code == protocol.CodeTimeout
		res.Stalled = res.Code == protocol.CodeStalled
		r.log.Warn("action failed", "agent", s.ID, "op", op,
			"code", res.Code, "err", err, "elapsed", time.Since(start))
	} else {
		r.log.Info("action done", "agent", s.ID, "op", op, "elapsed", time.Since(start))
	}

	after := s.Vitals()
	res.Status = &protocol.StatusBlock{
		Health:      after.Health,
		Food:        after.Food,
		HealthDelta: after.Health - before.Health,
		FoodDelta:   after.Food - before.Food,
		Events:      s.TakeEvents(),
	}
	return res
}

// codedError carries a protocol result code through an action body.
type codedError struct {
	code string
	msg  string
}

func (e *codedError) Error() string { return e.code + ": " + e.msg }

func failf(code, format string, args ...any) error {
	return &codedError{code: code, msg: fmt.Sprintf(format, args...)}
}

// errorCode maps an action error to its result code and message.
func errorCode(err error) (code, msg string) {
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code, ce.msg
	}
	var oe *upstream.OpError
	if errors.As(err, &oe) {
		code = oe.Code
		if !protocol.IsKnownCode(code) || code == "" {
			code = protocol.CodeInternal
		}
		return code, oe.Error()
	}
	switch {
	case errors.Is(err, watch.ErrTimedOut), errors.Is(err, context.DeadlineExceeded):
		return protocol.CodeTimeout, "deadline exceeded"
	case errors.Is(err, watch.ErrStalled):
		return protocol.CodeStalled, "no progress within idle window"
	case errors.Is(err, context.Canceled):
		return protocol.CodeCancelled, "cancelled"
	case errors.Is(err, protocol.ErrAlreadyRunning):
		return protocol.CodeAlreadyRunning, err.Error()
	case errors.Is(err, protocol.ErrNotConnected):
		return protocol.CodeNotConnected, err.Error()
	case errors.Is(err, protocol.ErrTargetNotFound):
		return protocol.CodeTargetNotFound, err.Error()
	case errors.Is(err, protocol.ErrTargetLost):
		return protocol.CodeTargetLost, err.Error()
	}
	return protocol.CodeInternal, err.Error()
}

func failureResult(err error) protocol.ActionResult {
	code, msg := errorCode(err)
	return protocol.Failure(code, msg)
}

// sleepCtx waits d or until ctx cancels.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
