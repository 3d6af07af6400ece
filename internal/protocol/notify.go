package protocol

import "time"

type NotifyKind string

const (
	NotifyDamage        NotifyKind = "DAMAGE"
	NotifyDeath         NotifyKind = "DEATH"
	NotifyEffectStart   NotifyKind = "EFFECT_START"
	NotifyEffectEnd     NotifyKind = "EFFECT_END"
	NotifyItemBroken    NotifyKind = "ITEM_BROKEN"
	NotifyVitals        NotifyKind = "VITALS"
	NotifyChat          NotifyKind = "CHAT"
	NotifySlotChanged   NotifyKind = "SLOT_CHANGED"
)

// Notification is one push message from the game client. Only the
// fields relevant to Kind are populated.
type Notification struct {
	Kind NotifyKind `json:"kind"`
	At   time.Time  `json:"at"`

	// DAMAGE
	Amount     float64 `json:"amount,omitempty"`
	AttackerID int     `json:"attacker_id,omitempty"`
	Attacker   string  `json:"attacker,omitempty"`

	// DEATH / CHAT
	Message string `json:"message,omitempty"`

	// EFFECT_START / EFFECT_END
	EffectID  string        `json:"effect_id,omitempty"`
	Amplifier int           `json:"amplifier,omitempty"`
	Duration  time.Duration `json:"duration_ms,omitempty"`

	// ITEM_BROKEN / SLOT_CHANGED
	Item string `json:"item,omitempty"`
	Slot string `json:"slot,omitempty"`

	// VITALS
	Vitals *Vitals `json:"vitals,omitempty"`

	// CHAT
	ChatKind string `json:"chat_kind,omitempty"`
	Source   string `json:"source,omitempty"`
}
