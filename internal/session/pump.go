package session

import "minebridge/internal/protocol"

// pump consumes the upstream notification stream and mutates session
// state. It is the only writer of effects and the event slots set by
// world events. Exits when the stream closes (link gone), which tears
// the session down.
func (s *Session) pump(onExit func()) {
	for n := range s.Upstream.Notifications() {
		s.apply(n)
	}
	s.log.Info("notification stream closed, tearing session down")
	s.Close()
	if onExit != nil {
		onExit()
	}
}

func (s *Session) apply(n protocol.Notification) {
	switch n.Kind {
	case protocol.NotifyDamage:
		s.setDamage(protocol.DamageEvent{
			Amount:     n.Amount,
			AttackerID: n.AttackerID,
			Attacker:   n.Attacker,
			At:         n.At,
		})
		s.forwardDamage(n)

	case protocol.NotifyDeath:
		s.setDeath(protocol.DeathEvent{Message: n.Message, At: n.At})

	case protocol.NotifyItemBroken:
		s.setBrokenEquipment(protocol.BrokenEquipmentEvent{Item: n.Item, At: n.At})

	case protocol.NotifyEffectStart:
		s.mu.Lock()
		s.effects[n.EffectID] = protocol.Effect{Amplifier: n.Amplifier, Remaining: n.Duration}
		s.mu.Unlock()

	case protocol.NotifyEffectEnd:
		s.mu.Lock()
		delete(s.effects, n.EffectID)
		s.mu.Unlock()

	case protocol.NotifySlotChanged:
		s.mu.Lock()
		if n.Item == "" {
			delete(s.gear, n.Slot)
		} else {
			s.gear[n.Slot] = n.Item
		}
		s.mu.Unlock()

	case protocol.NotifyVitals:
		if n.Vitals != nil {
			s.setVitals(*n.Vitals)
		}

	case protocol.NotifyChat:
		line := protocol.ChatLine{
			Kind:   n.ChatKind,
			Text:   n.Message,
			Source: n.Source,
			At:     n.At,
		}
		s.AppendChat(line)
		s.mu.Lock()
		sink := s.chatSink
		s.mu.Unlock()
		if sink != nil {
			sink(line)
		}
	}
}

// forwardDamage hands the notification to the retaliation reaction
// without ever blocking the pump.
func (s *Session) forwardDamage(n protocol.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.damageCh <- n:
	default:
	}
}
