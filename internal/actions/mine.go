package actions

import (
	"context"
	"errors"
	"time"

	"minebridge/internal/items"
	"minebridge/internal/protocol"
	"minebridge/internal/session"
	"minebridge/internal/upstream"
	"minebridge/internal/watch"
)

type MineRequest struct {
	Block      string  `json:"block"`
	Count      int     `json:"count"`
	Radius     float64 `json:"radius"`
	DeadlineMs int     `json:"deadline_ms"`
}

type MineResult struct {
	protocol.ActionResult
	Block string `json:"block"`
	Mined int    `json:"mined"`
}

// Mine collects Count blocks matching the (possibly aliased) block
// name within Radius. Progress is the mined count; a vein that runs
// dry after at least one block is a partial success, not a stall.
func (r *Runner) Mine(ctx context.Context, s *session.Session, req MineRequest) MineResult {
	if req.Count <= 0 {
		req.Count = 1
	}
	if req.Radius <= 0 {
		req.Radius = 32
	}
	dl := r.deadline(r.tun.MineDeadline(), req.DeadlineMs)
	out := MineResult{Block: req.Block}
	out.ActionResult = r.run(ctx, s, "mine", dl, func(ctx context.Context) error {
		return r.mine(ctx, s, req, dl, &out.Mined)
	})
	return out
}

func (r *Runner) mine(ctx context.Context, s *session.Session, req MineRequest, dl time.Duration, mined *int) error {
	names := items.BlockAlias(req.Block)

	if err := r.equipDigTool(ctx, s, req.Block); err != nil {
		return err
	}

	w := watch.New(watch.Config{
		Deadline:   dl,
		IdleWindow: r.tun.MineIdle(),
		Direction:  watch.Increasing,
	})

	for *mined < req.Count {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, err := s.Upstream.NearestBlock(ctx, names, req.Radius)
		if err != nil {
			return err
		}
		if b == nil {
			if *mined == 0 {
				return failf(protocol.CodeTargetNotFound, "no %s within %.0f blocks", req.Block, req.Radius)
			}
			// Vein exhausted; report what we got.
			return nil
		}
		if err := r.navigate(ctx, s, b.Pos, 2); err != nil {
			return err
		}
		if err := s.Upstream.Dig(ctx, b.Pos); err != nil {
			var oe *upstream.OpError
			if errors.As(err, &oe) && oe.Code == protocol.CodeTargetLost {
				// Someone else took it; re-scan.
				if werr := w.Observe(float64(*mined)); werr != nil {
					return werr
				}
				if serr := sleepCtx(ctx, r.Poll); serr != nil {
					return serr
				}
				continue
			}
			return err
		}
		*mined++
		if err := w.Observe(float64(*mined)); err != nil {
			return err
		}
	}
	return nil
}

// equipDigTool picks and equips the strongest tool of the family the
// block wants, enforcing the harvest tier floor for ores.
func (r *Runner) equipDigTool(ctx context.Context, s *session.Session, block string) error {
	family := items.ToolFamilyForBlock(block)
	if family == items.ToolFamilyNone {
		return nil
	}
	inv, err := s.Upstream.Inventory(ctx)
	if err != nil {
		return err
	}
	minTier := items.MinTierForBlock(block)
	tool, ok := items.BestTool(inv, family)
	if !ok {
		if minTier == "" {
			// Bare hands work, just slowly.
			return nil
		}
		return failf(protocol.CodeNoTool, "mining %s needs a %s-tier tool or better", block, minTier)
	}
	if !items.TierSatisfies(items.TierOfTool(tool), minTier) {
		return failf(protocol.CodeNoTool, "mining %s needs %s tier or better, best in inventory is %s", block, minTier, tool)
	}
	return s.EquipSuspended(ctx, tool, "hand")
}
