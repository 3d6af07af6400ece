package actions

import (
	"context"
	"time"

	"minebridge/internal/protocol"
	"minebridge/internal/session"
	"minebridge/internal/watch"
)

// navigate runs the collaborator's pathfinder under a remaining-distance
// watchdog, so a frozen walk surfaces as a stall instead of burning the
// whole action deadline. Losing to the watchdog cancels the underlying
// move and discards its late result.
func (r *Runner) navigate(ctx context.Context, s *session.Session, goal protocol.Vec3, tolerance float64) error {
	nctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Upstream.Navigate(nctx, goal, tolerance) }()

	w := watch.New(watch.Config{
		IdleWindow: r.tun.NavigateIdle(),
		Direction:  watch.Decreasing,
	})
	t := time.NewTicker(r.Poll)
	defer t.Stop()
	for {
		select {
		case err := <-done:
			return err
		case <-t.C:
			pos, err := s.Upstream.Position(nctx)
			if err != nil {
				continue
			}
			if err := w.Observe(pos.DistanceTo(goal)); err != nil {
				cancel()
				<-done
				return err
			}
		}
	}
}
