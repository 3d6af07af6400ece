package behavior

import (
	"time"

	"minebridge/internal/items"
	"minebridge/internal/protocol"
)

// defenseLoop is the damage retaliation reaction. It consumes the
// session's damage channel (fed by the notification pump) and engages
// the attacker when self-defense is enabled. Fire-and-forget relative
// to any foreground task.
func (b *Set) defenseLoop() {
	defer b.wg.Done()
	for {
		select {
		case <-b.stop:
			return
		case n, ok := <-b.s.Damage():
			if !ok {
				return
			}
			b.retaliate(n)
		}
	}
}

func (b *Set) retaliate(n protocol.Notification) {
	// Getting hit always justifies the shield, rate limiter permitting.
	b.RaiseShield(b.s.Config().AutoShield.Duration)

	cfg := b.s.Config().SelfDefense
	if !cfg.Enabled || n.AttackerID == 0 {
		return
	}

	ctx, cancel := b.opCtx()
	defer cancel()

	attacker, err := b.s.Upstream.EntityByID(ctx, n.AttackerID)
	if err != nil || attacker == nil {
		b.log.Debug("retaliation target gone", "attacker_id", n.AttackerID)
		return
	}
	pos, err := b.s.Upstream.Position(ctx)
	if err != nil {
		return
	}
	dist := pos.DistanceTo(attacker.Pos)

	inv, err := b.s.Upstream.Inventory(ctx)
	if err != nil {
		return
	}

	weapon, ranged := b.selectWeapon(inv, dist)
	if weapon != "" {
		if err := b.s.EquipSuspended(ctx, weapon, "hand"); err != nil {
			b.log.Debug("weapon equip failed", "weapon", weapon, "err", err)
			weapon = ""
		}
	}
	if err := b.s.Upstream.Attack(ctx, attacker.ID); err != nil {
		b.log.Debug("retaliation attack failed", "err", err)
		return
	}
	b.s.SetDefenseAction(protocol.DefenseActionEvent{
		Weapon:   weapon,
		TargetID: attacker.ID,
		Ranged:   ranged,
		At:       time.Now(),
	})
	b.log.Info("retaliating", "attacker", attacker.ID, "weapon", weapon, "ranged", ranged)

	b.scheduleDisengage(cfg.Duration)
}

// selectWeapon picks ranged when the attacker is beyond melee range
// and a ranged weapon with ammunition exists, otherwise the best
// melee weapon by material tier.
func (b *Set) selectWeapon(inv map[string]int, dist float64) (weapon string, ranged bool) {
	if dist > b.tun.Behaviors.MeleeRange {
		if w, _, ok := items.RangedWeapon(inv); ok {
			return w, true
		}
	}
	if w, ok := items.BestMeleeWeapon(inv); ok {
		return w, false
	}
	return "", false
}

func (b *Set) scheduleDisengage(after time.Duration) {
	if after <= 0 {
		after = b.tun.DefenseDuration()
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		select {
		case <-time.After(after):
		case <-b.stop:
		}
		ctx, cancel := b.opCtx()
		defer cancel()
		if err := b.s.Upstream.StopAttack(ctx); err != nil {
			b.log.Debug("disengage failed", "err", err)
		}
	}()
}
