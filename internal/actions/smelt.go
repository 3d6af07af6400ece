package actions

import (
	"context"
	"errors"
	"strings"
	"time"

	"minebridge/internal/items"
	"minebridge/internal/protocol"
	"minebridge/internal/session"
	"minebridge/internal/upstream"
	"minebridge/internal/watch"
)

type SmeltRequest struct {
	Item       string `json:"item"`
	Count      int    `json:"count"`
	Fuel       string `json:"fuel,omitempty"`   // explicit fuel item, else preference order
	Device     string `json:"device,omitempty"` // preferred device, else class chain
	DeadlineMs int    `json:"deadline_ms"`
}

type SmeltResult struct {
	protocol.ActionResult
	Item      string   `json:"item"`
	Output    string   `json:"output,omitempty"`
	Produced  int      `json:"produced"`
	Device    string   `json:"device,omitempty"`
	Attempted []string `json:"attempted,omitempty"`
	Refuels   int      `json:"refuels"`
}

const smeltDeviceRadius = 24

// Smelt cooks or smelts Count of Item, walking the item's device
// fallback chain (smoker before furnace before campfire for food,
// blast furnace before furnace for ore). A device that runs dry past
// the bounded refuel count, has no fuel to begin with, or stalls is
// abandoned for the next device in the chain; unsmelted input is
// reclaimed first so the next device can use it. The action succeeds
// on the device that completes production and fails with the last
// device error only when the whole chain is exhausted.
func (r *Runner) Smelt(ctx context.Context, s *session.Session, req SmeltRequest) SmeltResult {
	if req.Count <= 0 {
		req.Count = 1
	}
	dl := r.deadline(r.tun.SmeltDeadline(), req.DeadlineMs)
	out := SmeltResult{Item: req.Item}
	out.ActionResult = r.run(ctx, s, "smelt", dl, func(ctx context.Context) error {
		return r.smelt(ctx, s, req, &out)
	})
	return out
}

func (r *Runner) smelt(ctx context.Context, s *session.Session, req SmeltRequest, out *SmeltResult) error {
	chain := items.DeviceChain(req.Item, items.Device(req.Device))

	inv, err := s.Upstream.Inventory(ctx)
	if err != nil {
		return err
	}
	if inv[req.Item] <= 0 {
		return failf(protocol.CodeNoResource, "no %s in inventory", req.Item)
	}

	var lastErr error
	for _, d := range chain {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, err := s.Upstream.NearestBlock(ctx, []string{string(d)}, smeltDeviceRadius)
		if err != nil {
			return err
		}
		out.Attempted = append(out.Attempted, string(d))
		if b == nil {
			continue
		}
		out.Device = string(d)
		err = r.smeltAt(ctx, s, req, d, b.Pos, out)
		if err == nil {
			return nil
		}
		if !advancesChain(err) {
			return err
		}
		r.log.Info("smelting device failed, advancing chain",
			"agent", s.ID, "device", string(d), "err", err)
		lastErr = err
	}
	if lastErr != nil {
		return lastErr
	}
	return failf(protocol.CodeTargetNotFound, "no smelting device within %d blocks (tried %s)",
		smeltDeviceRadius, strings.Join(out.Attempted, ", "))
}

// advancesChain reports whether a device failure falls through to the
// next device instead of ending the action.
func advancesChain(err error) bool {
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code == protocol.CodeOutOfFuel || ce.code == protocol.CodeNoFuel
	}
	return errors.Is(err, watch.ErrStalled)
}

// smeltAt runs one device: load input, ensure fuel, poll for output.
// On any failure the unsmelted input is pulled back into the inventory
// before the device is abandoned.
func (r *Runner) smeltAt(ctx context.Context, s *session.Session, req SmeltRequest, device items.Device, pos protocol.Vec3, out *SmeltResult) (err error) {
	if err := r.navigate(ctx, s, pos, 3); err != nil {
		return err
	}
	c, err := s.Upstream.OpenContainer(ctx, pos)
	if err != nil {
		return err
	}
	defer c.Close()

	// Drain leftovers so the produced count measures this run only.
	if _, _, err := c.TakeOutput(ctx); err != nil {
		return err
	}

	loaded, err := c.PutInput(ctx, req.Item, req.Count-out.Produced)
	if err != nil {
		return err
	}
	if loaded <= 0 {
		return failf(protocol.CodeNoResource, "could not load %s into %s", req.Item, device)
	}
	target := out.Produced + loaded

	defer func() {
		if err != nil {
			r.reclaimInput(c, req.Item)
		}
	}()

	if device.NeedsFuel() {
		st, err := c.State(ctx)
		if err != nil {
			return err
		}
		if st.FuelCount <= 0 {
			if err := r.loadFuel(ctx, s, c, req.Fuel); err != nil {
				return err
			}
		}
	}

	w := watch.New(watch.Config{
		IdleWindow: r.tun.SmeltIdle(),
		Direction:  watch.Increasing,
	})

	refuels := 0
	for out.Produced < target {
		if err := sleepCtx(ctx, r.SmeltPoll); err != nil {
			return err
		}
		st, err := c.State(ctx)
		if err != nil {
			return err
		}
		item, n, err := c.TakeOutput(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			out.Produced += n
			out.Output = item
		}

		if device.NeedsFuel() && st.FuelCount <= 0 && st.InputCount > 0 {
			refuels++
			out.Refuels++
			if refuels > r.tun.Actions.RefuelAttempts {
				return failf(protocol.CodeOutOfFuel, "%s ran dry after %d refuels, produced %d of %d",
					device, refuels-1, out.Produced, target)
			}
			if err := r.loadFuel(ctx, s, c, req.Fuel); err != nil {
				return failf(protocol.CodeOutOfFuel, "%s ran dry and inventory has no fuel, produced %d of %d",
					device, out.Produced, target)
			}
		}

		if err := w.Observe(float64(out.Produced)); err != nil {
			return err
		}
	}
	return nil
}

// reclaimInput pulls unsmelted input back out of an abandoned device.
// Best effort, on its own context: the action's may already be done.
func (r *Runner) reclaimInput(c upstream.Container, item string) {
	rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st, err := c.State(rctx)
	if err != nil || st.InputItem != item || st.InputCount <= 0 {
		return
	}
	_, _ = c.Withdraw(rctx, item, st.InputCount)
}

// loadFuel moves one stack of fuel into the device: the explicit fuel
// when given and present, otherwise the first preferred fuel in the
// inventory.
func (r *Runner) loadFuel(ctx context.Context, s *session.Session, c upstream.Container, explicit string) error {
	inv, err := s.Upstream.Inventory(ctx)
	if err != nil {
		return err
	}
	fuel := explicit
	if fuel == "" || inv[fuel] <= 0 {
		f, ok := items.PickFuel(inv)
		if !ok {
			return failf(protocol.CodeNoFuel, "no fuel in inventory")
		}
		fuel = f
	}
	moved, err := c.PutFuel(ctx, fuel, inv[fuel])
	if err != nil {
		return err
	}
	if moved <= 0 {
		return failf(protocol.CodeNoFuel, "could not load fuel %s", fuel)
	}
	return nil
}
