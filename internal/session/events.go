package session

import "minebridge/internal/protocol"

// TakeEvents returns the one-shot event slots and clears them. Each
// event is surfaced to exactly one caller; nothing else clears slots.
func (s *Session) TakeEvents() protocol.EventSlots {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.slots
	s.slots = protocol.EventSlots{}
	return out
}

// PeekEvents returns the slots without clearing. Diagnostics only.
func (s *Session) PeekEvents() protocol.EventSlots {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots
}

func (s *Session) setDamage(ev protocol.DamageEvent) {
	s.mu.Lock()
	s.slots.LastDamage = &ev
	s.mu.Unlock()
}

func (s *Session) setDeath(ev protocol.DeathEvent) {
	s.mu.Lock()
	s.slots.LastDeath = &ev
	s.mu.Unlock()
}

func (s *Session) setBrokenEquipment(ev protocol.BrokenEquipmentEvent) {
	s.mu.Lock()
	s.slots.LastBrokenEquipment = &ev
	s.mu.Unlock()
}

// SetDefenseAction records that retaliation engaged.
func (s *Session) SetDefenseAction(ev protocol.DefenseActionEvent) {
	s.mu.Lock()
	s.slots.LastDefenseAction = &ev
	s.mu.Unlock()
}

// SetHungerWarning records a failed or impossible auto-feed attempt.
// Rate limiting is the caller's concern.
func (s *Session) SetHungerWarning(ev protocol.HungerWarningEvent) {
	s.mu.Lock()
	s.slots.LastHungerWarning = &ev
	s.mu.Unlock()
}
