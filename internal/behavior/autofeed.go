package behavior

import (
	"time"

	"minebridge/internal/items"
	"minebridge/internal/protocol"
)

// feedLoop polls hunger on a fixed interval and eats when it drops
// below the configured threshold. It is deliberately not gated by the
// task guard: a foreground action holding the guard must not starve
// the agent. The eatBusy flag keeps at most one eat in flight.
func (b *Set) feedLoop() {
	defer b.wg.Done()
	t := time.NewTicker(b.tun.FeedInterval())
	defer t.Stop()

	for {
		select {
		case <-b.stop:
			return
		case <-t.C:
		}

		cfg := b.s.Config().AutoFeed
		if !cfg.Enabled {
			continue
		}
		threshold := cfg.Threshold
		if threshold <= 0 {
			threshold = b.tun.Behaviors.FeedThreshold
		}
		vit := b.s.Vitals()
		if vit.Food >= threshold {
			continue
		}
		if b.s.Suspended() {
			// An equip swap is mid-flight somewhere; eating now would
			// consume whatever ends up in hand.
			continue
		}
		if !b.eatBusy.CompareAndSwap(false, true) {
			continue
		}
		b.feedOnce(vit.Food)
		b.eatBusy.Store(false)
	}
}

func (b *Set) feedOnce(food float64) {
	ctx, cancel := b.opCtx()
	defer cancel()

	inv, err := b.s.Upstream.Inventory(ctx)
	if err != nil {
		b.log.Debug("auto-feed inventory query failed", "err", err)
		return
	}
	item, ok := items.PickFood(inv)
	if !ok {
		b.warnHunger(food, "no edible item in inventory")
		return
	}
	if err := b.s.EquipSuspended(ctx, item, "hand"); err != nil {
		b.warnHunger(food, "could not equip "+item)
		return
	}
	if err := b.s.Upstream.Consume(ctx); err != nil {
		b.warnHunger(food, "eat failed: "+err.Error())
		return
	}
	b.log.Debug("auto-feed consumed", "item", item)
}

// warnHunger raises the one-shot hunger warning at most once per
// cooldown window to avoid event flooding.
func (b *Set) warnHunger(food float64, reason string) {
	now := time.Now()
	if now.Sub(b.lastHungerWarn) < b.tun.HungerWarnCooldown() {
		return
	}
	b.lastHungerWarn = now
	b.s.SetHungerWarning(protocol.HungerWarningEvent{Food: food, Reason: reason, At: now})
	b.log.Warn("auto-feed could not eat", "reason", reason, "food", food)
}
