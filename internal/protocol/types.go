package protocol

import (
	"math"
	"time"
)

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) DistanceTo(o Vec3) float64 {
	dx, dy, dz := v.X-o.X, v.Y-o.Y, v.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Vitals is the live health/food counter pair tracked per agent.
type Vitals struct {
	Health     float64 `json:"health"`
	Food       float64 `json:"food"`
	Saturation float64 `json:"saturation,omitempty"`
}

type BlockRef struct {
	Name string `json:"name"`
	Pos  Vec3   `json:"pos"`
}

type EntityRef struct {
	ID       int     `json:"id"`
	Kind     string  `json:"kind"`
	Name     string  `json:"name,omitempty"`
	Pos      Vec3    `json:"pos"`
	Distance float64 `json:"distance,omitempty"`
	Hostile  bool    `json:"hostile,omitempty"`
}

// FurnaceState is a point-in-time view of a furnace-like device.
type FurnaceState struct {
	InputItem   string  `json:"input_item,omitempty"`
	InputCount  int     `json:"input_count"`
	FuelItem    string  `json:"fuel_item,omitempty"`
	FuelCount   int     `json:"fuel_count"`
	OutputItem  string  `json:"output_item,omitempty"`
	OutputCount int     `json:"output_count"`
	Progress    float64 `json:"progress"`
}

type Effect struct {
	Amplifier int           `json:"amplifier"`
	Remaining time.Duration `json:"remaining_ms"`
}

type ChatLine struct {
	Kind   string    `json:"kind"`
	Text   string    `json:"text"`
	Source string    `json:"source,omitempty"`
	At     time.Time `json:"at"`
}

// One-shot event payloads. Each is set by a notification reaction and
// cleared exactly once when a status report reads it.
type DamageEvent struct {
	Amount     float64 `json:"amount"`
	AttackerID int     `json:"attacker_id,omitempty"`
	Attacker   string  `json:"attacker,omitempty"`
	At         time.Time `json:"at"`
}

type DeathEvent struct {
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
}

type BrokenEquipmentEvent struct {
	Item string    `json:"item"`
	At   time.Time `json:"at"`
}

type DefenseActionEvent struct {
	Weapon   string    `json:"weapon"`
	TargetID int       `json:"target_id"`
	Ranged   bool      `json:"ranged"`
	At       time.Time `json:"at"`
}

type HungerWarningEvent struct {
	Food   float64   `json:"food"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// EventSlots is the one-shot slot block attached to status reports.
// A nil field means the event has not fired since the last read.
type EventSlots struct {
	LastDamage          *DamageEvent          `json:"last_damage,omitempty"`
	LastBrokenEquipment *BrokenEquipmentEvent `json:"last_broken_equipment,omitempty"`
	LastDefenseAction   *DefenseActionEvent   `json:"last_defense_action,omitempty"`
	LastDeath           *DeathEvent           `json:"last_death,omitempty"`
	LastHungerWarning   *HungerWarningEvent   `json:"last_hunger_warning,omitempty"`
}

func (s EventSlots) Empty() bool {
	return s.LastDamage == nil && s.LastBrokenEquipment == nil &&
		s.LastDefenseAction == nil && s.LastDeath == nil && s.LastHungerWarning == nil
}
