package behavior

import (
	"context"
	"time"
)

// shieldLoop scans for hostile projectiles on a short interval and
// raises the shield when one is inside the configured radius.
func (b *Set) shieldLoop() {
	defer b.wg.Done()
	t := time.NewTicker(b.tun.ShieldInterval())
	defer t.Stop()

	for {
		select {
		case <-b.stop:
			return
		case <-t.C:
		}

		cfg := b.s.Config().AutoShield
		if !cfg.Enabled {
			continue
		}

		ctx, cancel := b.opCtx()
		ps, err := b.s.Upstream.Projectiles(ctx, b.tun.Behaviors.ShieldRadius)
		cancel()
		if err != nil || len(ps) == 0 {
			continue
		}
		b.RaiseShield(cfg.Duration)
	}
}

// RaiseShield raises the shield for d (tuning default when zero),
// rate-limited so bursts of triggers produce a single raise. Also
// invoked directly by the retaliation reaction. Fire-and-forget.
func (b *Set) RaiseShield(d time.Duration) bool {
	if d <= 0 {
		d = b.tun.ShieldDuration()
	}

	b.shieldMu.Lock()
	now := time.Now()
	if now.Sub(b.lastShieldRaise) < b.tun.ShieldMinGap() {
		b.shieldMu.Unlock()
		return false
	}
	b.lastShieldRaise = now
	b.shieldMu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.holdShield(d)
	}()
	return true
}

// holdShield equips the shield under the suspension flag, holds the
// active-use state for the duration, and releases it on every exit
// path.
func (b *Set) holdShield(d time.Duration) {
	ctx, cancel := b.opCtx()
	defer cancel()

	if err := b.s.EquipSuspended(ctx, "shield", "off-hand"); err != nil {
		b.log.Debug("shield equip failed", "err", err)
		return
	}
	if err := b.s.Upstream.ActivateItem(ctx); err != nil {
		b.log.Debug("shield activate failed", "err", err)
		return
	}
	defer func() {
		// Fresh context: the hold context may already be cancelled and
		// the active-use state must still be released.
		dctx, dcancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer dcancel()
		if err := b.s.Upstream.DeactivateItem(dctx); err != nil {
			b.log.Debug("shield release failed", "err", err)
		}
	}()

	select {
	case <-time.After(d):
	case <-b.stop:
	}
}
