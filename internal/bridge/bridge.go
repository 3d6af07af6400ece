// Package bridge is the orchestration facade the tool server calls
// into: it owns the session registry, dials the game client on first
// use, starts the background behaviors, runs foreground actions, and
// records every completed action to the audit log and archive.
package bridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"minebridge/internal/actions"
	"minebridge/internal/behavior"
	"minebridge/internal/persistence/actionlog"
	"minebridge/internal/persistence/archive"
	"minebridge/internal/protocol"
	"minebridge/internal/session"
	"minebridge/internal/tuning"
	"minebridge/internal/upstream"
)

// DialFunc connects the game client for one agent.
type DialFunc func(ctx context.Context, agent string) (upstream.Surface, error)

type Config struct {
	Dial   DialFunc
	Tuning tuning.Tuning
	Log    *slog.Logger

	// Optional persistence. Nil disables the concern.
	ActionLog *actionlog.Writer
	Archive   *archive.Store

	// Defaults applied to new sessions.
	Behaviors session.Config
}

type Bridge struct {
	dial DialFunc
	tun  tuning.Tuning
	log  *slog.Logger
	alog *actionlog.Writer
	arch *archive.Store
	defs session.Config

	reg *session.Registry
	run *actions.Runner

	// Serializes first-use dialing so two calls for the same agent
	// produce one session.
	dialMu sync.Mutex
}

func New(cfg Config) *Bridge {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	return &Bridge{
		dial: cfg.Dial,
		tun:  cfg.Tuning,
		log:  log,
		alog: cfg.ActionLog,
		arch: cfg.Archive,
		defs: cfg.Behaviors,
		reg:  session.NewRegistry(log),
		run:  actions.NewRunner(cfg.Tuning, log),
	}
}

// Close tears down every session.
func (b *Bridge) Close() { b.reg.Close() }

// Sessions lists live agent ids.
func (b *Bridge) Sessions() []string { return b.reg.List() }

// ensure returns the live session for agent, dialing and wiring a new
// one on first use.
func (b *Bridge) ensure(ctx context.Context, agent string) (*session.Session, error) {
	if s, ok := b.reg.Get(agent); ok {
		return s, nil
	}

	b.dialMu.Lock()
	defer b.dialMu.Unlock()
	if s, ok := b.reg.Get(agent); ok {
		return s, nil
	}

	up, err := b.dial(ctx, agent)
	if err != nil {
		return nil, err
	}
	s, err := b.reg.Create(agent, up, b.defs, b.tun.ChatLogCapacity)
	if err != nil {
		_ = up.Close()
		return nil, err
	}
	if b.arch != nil {
		s.SetChatSink(func(line protocol.ChatLine) {
			b.arch.RecordChat(archive.ChatRow{
				Agent:  agent,
				Kind:   line.Kind,
				Source: line.Source,
				Text:   line.Text,
				At:     line.At,
			})
		})
	}
	behavior.Start(s, b.tun, b.log)
	return s, nil
}

// Connect dials the agent's session eagerly.
func (b *Bridge) Connect(ctx context.Context, agent string) error {
	_, err := b.ensure(ctx, agent)
	return err
}

// Disconnect tears the agent's session down.
func (b *Bridge) Disconnect(ctx context.Context, agent string) error {
	b.reg.Remove(agent)
	return nil
}

// record writes one completed action to the audit trail.
func (b *Bridge) record(agent, action string, req any, res protocol.ActionResult, elapsed time.Duration) {
	id := uuid.NewString()
	raw, _ := json.Marshal(req)
	if b.alog != nil {
		err := b.alog.Write(actionlog.Entry{
			At:       time.Now(),
			ActionID: id,
			Agent:    agent,
			Action:   action,
			Request:  raw,
			OK:       res.OK,
			Code:     res.Code,
			Elapsed:  elapsed.Milliseconds(),
		})
		if err != nil {
			b.log.Warn("action log write failed", "err", err)
		}
	}
	if b.arch != nil {
		b.arch.RecordAction(archive.ActionRow{
			ID:      id,
			Agent:   agent,
			Action:  action,
			OK:      res.OK,
			Code:    res.Code,
			Elapsed: elapsed.Milliseconds(),
			At:      time.Now(),
			Raw:     string(raw),
		})
	}
}

func (b *Bridge) Mine(ctx context.Context, agent string, req actions.MineRequest) (actions.MineResult, error) {
	s, err := b.ensure(ctx, agent)
	if err != nil {
		return actions.MineResult{}, err
	}
	start := time.Now()
	res := b.run.Mine(ctx, s, req)
	b.record(agent, "mine", req, res.ActionResult, time.Since(start))
	return res, nil
}

func (b *Bridge) Craft(ctx context.Context, agent string, req actions.CraftRequest) (actions.CraftResult, error) {
	s, err := b.ensure(ctx, agent)
	if err != nil {
		return actions.CraftResult{}, err
	}
	start := time.Now()
	res := b.run.Craft(ctx, s, req)
	b.record(agent, "craft", req, res.ActionResult, time.Since(start))
	return res, nil
}

func (b *Bridge) Smelt(ctx context.Context, agent string, req actions.SmeltRequest) (actions.SmeltResult, error) {
	s, err := b.ensure(ctx, agent)
	if err != nil {
		return actions.SmeltResult{}, err
	}
	start := time.Now()
	res := b.run.Smelt(ctx, s, req)
	b.record(agent, "smelt", req, res.ActionResult, time.Since(start))
	return res, nil
}

func (b *Bridge) Sleep(ctx context.Context, agent string, req actions.SleepRequest) (actions.SleepResult, error) {
	s, err := b.ensure(ctx, agent)
	if err != nil {
		return actions.SleepResult{}, err
	}
	start := time.Now()
	res := b.run.Sleep(ctx, s, req)
	b.record(agent, "sleep", req, res.ActionResult, time.Since(start))
	return res, nil
}

func (b *Bridge) Deposit(ctx context.Context, agent string, req actions.TransferRequest) (actions.TransferResult, error) {
	s, err := b.ensure(ctx, agent)
	if err != nil {
		return actions.TransferResult{}, err
	}
	start := time.Now()
	res := b.run.Deposit(ctx, s, req)
	b.record(agent, "deposit", req, res.ActionResult, time.Since(start))
	return res, nil
}

func (b *Bridge) Withdraw(ctx context.Context, agent string, req actions.TransferRequest) (actions.TransferResult, error) {
	s, err := b.ensure(ctx, agent)
	if err != nil {
		return actions.TransferResult{}, err
	}
	start := time.Now()
	res := b.run.Withdraw(ctx, s, req)
	b.record(agent, "withdraw", req, res.ActionResult, time.Since(start))
	return res, nil
}

func (b *Bridge) Status(ctx context.Context, agent string) (actions.StatusResult, error) {
	s, err := b.ensure(ctx, agent)
	if err != nil {
		return actions.StatusResult{}, err
	}
	return b.run.Status(ctx, s)
}

// Cancel requests cancellation of the agent's running action. False
// when nothing is running or the agent has no session.
func (b *Bridge) Cancel(ctx context.Context, agent string) (bool, error) {
	s, ok := b.reg.Get(agent)
	if !ok {
		return false, nil
	}
	return b.run.Cancel(s), nil
}

func (b *Bridge) ConfigureAutoFeed(ctx context.Context, agent string, cfg session.FeedConfig) error {
	s, err := b.ensure(ctx, agent)
	if err != nil {
		return err
	}
	s.SetFeedConfig(cfg)
	return nil
}

func (b *Bridge) ConfigureAutoShield(ctx context.Context, agent string, cfg session.ShieldConfig) error {
	s, err := b.ensure(ctx, agent)
	if err != nil {
		return err
	}
	s.SetShieldConfig(cfg)
	return nil
}

func (b *Bridge) ConfigureSelfDefense(ctx context.Context, agent string, cfg session.DefenseConfig) error {
	s, err := b.ensure(ctx, agent)
	if err != nil {
		return err
	}
	s.SetDefenseConfig(cfg)
	return nil
}

// ReadChat returns the newest chat lines, oldest first.
func (b *Bridge) ReadChat(ctx context.Context, agent string, limit int) ([]protocol.ChatLine, error) {
	s, err := b.ensure(ctx, agent)
	if err != nil {
		return nil, err
	}
	return s.ChatTail(limit), nil
}
