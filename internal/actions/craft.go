package actions

import (
	"context"
	"time"

	"minebridge/internal/protocol"
	"minebridge/internal/recipes"
	"minebridge/internal/session"
	"minebridge/internal/watch"
)

type CraftRequest struct {
	Item       string `json:"item"`
	Count      int    `json:"count"`
	DeadlineMs int    `json:"deadline_ms"`
}

type CraftResult struct {
	protocol.ActionResult
	Item    string                 `json:"item"`
	Crafted int                    `json:"crafted"`
	Missing []protocol.MissingItem `json:"missing,omitempty"`
}

const craftTableRadius = 16

// craftZeroDeltaLimit bounds consecutive attempts that produce no
// inventory delta before the action reports a stall.
const craftZeroDeltaLimit = 3

// Craft produces up to Count of Item. An ingredient shortfall caps the
// attempt at the affordable unit count and reports the remainder in
// Missing; partial production is a success. Actual progress is measured
// by before/after inventory deltas, not by trusting the craft call to
// have worked.
func (r *Runner) Craft(ctx context.Context, s *session.Session, req CraftRequest) CraftResult {
	if req.Count <= 0 {
		req.Count = 1
	}
	dl := r.deadline(r.tun.CraftDeadline(), req.DeadlineMs)
	out := CraftResult{Item: req.Item}
	out.ActionResult = r.run(ctx, s, "craft", dl, func(ctx context.Context) error {
		return r.craft(ctx, s, req, dl, &out)
	})
	return out
}

func (r *Runner) craft(ctx context.Context, s *session.Session, req CraftRequest, dl time.Duration, out *CraftResult) error {
	rs, err := s.Upstream.RecipesFor(ctx, req.Item)
	if err != nil {
		return err
	}
	recipe, ok := recipes.Pick(rs)
	if !ok {
		return failf(protocol.CodeBadRequest, "no recipe for %s", req.Item)
	}

	perCraft := recipe.OutputCount
	if perCraft <= 0 {
		perCraft = 1
	}
	units := (req.Count + perCraft - 1) / perCraft

	need := recipe.PerUnit()
	inv, err := s.Upstream.Inventory(ctx)
	if err != nil {
		return err
	}
	if affordable := recipes.MaxUnits(need, inv); affordable < units {
		out.Missing = recipes.Shortfall(need, inv, units)
		if affordable == 0 {
			return failf(protocol.CodeNoResource, "missing ingredients for %dx %s", req.Count, req.Item)
		}
		units = affordable
	}

	if recipe.NeedsTable {
		if err := r.ensureCraftingTable(ctx, s, inv); err != nil {
			return err
		}
	}

	w := watch.New(watch.Config{
		Deadline:   dl,
		IdleWindow: r.tun.CraftIdle(),
		Direction:  watch.Increasing,
	})

	zeroDeltas := 0
	for i := 0; i < units; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		before, err := s.Upstream.Inventory(ctx)
		if err != nil {
			return err
		}

		actx, cancel := context.WithTimeout(ctx, r.tun.CraftAttempt())
		err = s.Upstream.Craft(actx, recipe)
		cancel()
		if err != nil {
			return err
		}

		after, err := s.Upstream.Inventory(ctx)
		if err != nil {
			return err
		}
		gained := after[req.Item] - before[req.Item]
		if gained > 0 {
			out.Crafted += gained
			zeroDeltas = 0
		} else {
			// A craft that silently produces nothing. Bounded before
			// it counts as a stall.
			zeroDeltas++
			if zeroDeltas >= craftZeroDeltaLimit {
				return failf(protocol.CodeStalled, "no output delta across %d attempts", zeroDeltas)
			}
		}
		if err := w.Observe(float64(out.Crafted)); err != nil {
			return err
		}
	}
	if out.Crafted == 0 {
		return failf(protocol.CodeStalled, "recipe produced nothing")
	}
	return nil
}

// ensureCraftingTable walks to a nearby table, placing one from the
// inventory when none is in range.
func (r *Runner) ensureCraftingTable(ctx context.Context, s *session.Session, inv map[string]int) error {
	b, err := s.Upstream.NearestBlock(ctx, []string{"crafting_table"}, craftTableRadius)
	if err != nil {
		return err
	}
	if b != nil {
		return r.navigate(ctx, s, b.Pos, 3)
	}
	if inv["crafting_table"] <= 0 {
		return failf(protocol.CodeNoCraftingSurface, "no crafting table nearby and none in inventory")
	}
	pos, err := s.Upstream.Position(ctx)
	if err != nil {
		return err
	}
	if _, err := s.Upstream.PlaceBlock(ctx, "crafting_table", pos); err != nil {
		return err
	}
	return nil
}
