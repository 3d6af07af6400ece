package actions

import (
	"context"

	"minebridge/internal/items"
	"minebridge/internal/protocol"
	"minebridge/internal/session"
)

type SleepRequest struct {
	Radius     float64 `json:"radius"`
	DeadlineMs int     `json:"deadline_ms"`
}

type SleepResult struct {
	protocol.ActionResult
	Bed protocol.Vec3 `json:"bed"`
}

// Sleep walks to the nearest bed and sleeps in it. Beds only accept a
// sleeper at night, so the night check fails fast instead of walking
// somewhere to be rejected.
func (r *Runner) Sleep(ctx context.Context, s *session.Session, req SleepRequest) SleepResult {
	if req.Radius <= 0 {
		req.Radius = 32
	}
	var out SleepResult
	out.ActionResult = r.run(ctx, s, "sleep", r.deadline(r.tun.SleepDeadline(), req.DeadlineMs), func(ctx context.Context) error {
		night, err := s.Upstream.IsNight(ctx)
		if err != nil {
			return err
		}
		if !night {
			return failf(protocol.CodeBadRequest, "can only sleep at night")
		}
		b, err := s.Upstream.NearestBlock(ctx, items.BlockAlias("bed"), req.Radius)
		if err != nil {
			return err
		}
		if b == nil {
			return failf(protocol.CodeTargetNotFound, "no bed within %.0f blocks", req.Radius)
		}
		if err := r.navigate(ctx, s, b.Pos, 2); err != nil {
			return err
		}
		if err := s.Upstream.SleepInBed(ctx, b.Pos); err != nil {
			return err
		}
		out.Bed = b.Pos
		return nil
	})
	return out
}

// Wake leaves the bed. Not guard-gated: waking must work while the
// sleep action still holds the slot.
func (r *Runner) Wake(ctx context.Context, s *session.Session) error {
	return s.Upstream.Wake(ctx)
}
