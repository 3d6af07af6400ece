package actions

import (
	"context"

	"minebridge/internal/protocol"
	"minebridge/internal/session"
	"minebridge/internal/upstream"
)

type TransferRequest struct {
	Items      map[string]int `json:"items"`
	Radius     float64        `json:"radius"`
	DeadlineMs int            `json:"deadline_ms"`
}

type TransferResult struct {
	protocol.ActionResult
	Container protocol.Vec3  `json:"container"`
	Moved     map[string]int `json:"moved"`
}

var containerBlocks = []string{"chest", "barrel", "trapped_chest"}

// Deposit moves items from the inventory into the nearest container.
// Partial moves are a success; Moved reports what actually went in.
func (r *Runner) Deposit(ctx context.Context, s *session.Session, req TransferRequest) TransferResult {
	return r.transfer(ctx, s, "deposit", req, upstream.Container.Deposit)
}

// Withdraw moves items from the nearest container into the inventory.
func (r *Runner) Withdraw(ctx context.Context, s *session.Session, req TransferRequest) TransferResult {
	return r.transfer(ctx, s, "withdraw", req, upstream.Container.Withdraw)
}

func (r *Runner) transfer(ctx context.Context, s *session.Session, op string, req TransferRequest,
	move func(upstream.Container, context.Context, string, int) (int, error)) TransferResult {

	if req.Radius <= 0 {
		req.Radius = 16
	}
	out := TransferResult{Moved: map[string]int{}}
	out.ActionResult = r.run(ctx, s, op, r.deadline(r.tun.TransferDeadline(), req.DeadlineMs), func(ctx context.Context) error {
		if len(req.Items) == 0 {
			return failf(protocol.CodeBadRequest, "no items named")
		}
		b, err := s.Upstream.NearestBlock(ctx, containerBlocks, req.Radius)
		if err != nil {
			return err
		}
		if b == nil {
			return failf(protocol.CodeTargetNotFound, "no container within %.0f blocks", req.Radius)
		}
		if err := r.navigate(ctx, s, b.Pos, 3); err != nil {
			return err
		}
		c, err := s.Upstream.OpenContainer(ctx, b.Pos)
		if err != nil {
			return err
		}
		defer c.Close()
		out.Container = b.Pos

		for item, count := range req.Items {
			if count <= 0 {
				continue
			}
			moved, err := move(c, ctx, item, count)
			if err != nil {
				return err
			}
			if moved > 0 {
				out.Moved[item] = moved
			}
		}
		if len(out.Moved) == 0 {
			return failf(protocol.CodeNoResource, "nothing could be moved")
		}
		return nil
	})
	return out
}
