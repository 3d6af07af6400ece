// Package tuning holds every threshold the orchestration core consults:
// watchdog windows per action class, background poll intervals, radii
// and cooldowns. Values load from a yaml file and fall back to the
// defaults below.
package tuning

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	Actions   Actions   `yaml:"actions"`
	Behaviors Behaviors `yaml:"behaviors"`

	ChatLogCapacity int `yaml:"chat_log_capacity"`
}

// Actions is one consistent stall/timeout policy per action class.
type Actions struct {
	MineDeadlineS     int `yaml:"mine_deadline_s"`
	MineIdleS         int `yaml:"mine_idle_s"`
	NavigateIdleS     int `yaml:"navigate_idle_s"`
	CraftDeadlineS    int `yaml:"craft_deadline_s"`
	CraftIdleS        int `yaml:"craft_idle_s"`
	CraftAttemptS     int `yaml:"craft_attempt_s"`
	SmeltDeadlineS    int `yaml:"smelt_deadline_s"`
	SmeltIdleS        int `yaml:"smelt_idle_s"`
	RefuelAttempts    int `yaml:"refuel_attempts"`
	SleepDeadlineS    int `yaml:"sleep_deadline_s"`
	TransferDeadlineS int `yaml:"transfer_deadline_s"`
}

type Behaviors struct {
	FeedIntervalMs      int     `yaml:"feed_interval_ms"`
	FeedThreshold       float64 `yaml:"feed_threshold"`
	HungerWarnCooldownS int     `yaml:"hunger_warn_cooldown_s"`

	ShieldIntervalMs int     `yaml:"shield_interval_ms"`
	ShieldRadius     float64 `yaml:"shield_radius"`
	ShieldMinGapMs   int     `yaml:"shield_min_gap_ms"`
	ShieldDurationMs int     `yaml:"shield_duration_ms"`

	DefenseDurationMs int     `yaml:"defense_duration_ms"`
	MeleeRange        float64 `yaml:"melee_range"`
}

func Default() Tuning {
	return Tuning{
		Actions: Actions{
			MineDeadlineS:     120,
			MineIdleS:         20,
			NavigateIdleS:     20,
			CraftDeadlineS:    60,
			CraftIdleS:        15,
			CraftAttemptS:     8,
			SmeltDeadlineS:    90,
			SmeltIdleS:        15,
			RefuelAttempts:    2,
			SleepDeadlineS:    30,
			TransferDeadlineS: 30,
		},
		Behaviors: Behaviors{
			FeedIntervalMs:      2000,
			FeedThreshold:       14,
			HungerWarnCooldownS: 30,
			ShieldIntervalMs:    400,
			ShieldRadius:        6,
			ShieldMinGapMs:      600,
			ShieldDurationMs:    2000,
			DefenseDurationMs:   8000,
			MeleeRange:          8,
		},
		ChatLogCapacity: 100,
	}
}

// Load reads path over the defaults. A missing file is not an error;
// the defaults apply.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) MineDeadline() time.Duration     { return secs(t.Actions.MineDeadlineS) }
func (t Tuning) MineIdle() time.Duration         { return secs(t.Actions.MineIdleS) }
func (t Tuning) NavigateIdle() time.Duration     { return secs(t.Actions.NavigateIdleS) }
func (t Tuning) CraftDeadline() time.Duration    { return secs(t.Actions.CraftDeadlineS) }
func (t Tuning) CraftIdle() time.Duration        { return secs(t.Actions.CraftIdleS) }
func (t Tuning) CraftAttempt() time.Duration     { return secs(t.Actions.CraftAttemptS) }
func (t Tuning) SmeltDeadline() time.Duration    { return secs(t.Actions.SmeltDeadlineS) }
func (t Tuning) SmeltIdle() time.Duration        { return secs(t.Actions.SmeltIdleS) }
func (t Tuning) SleepDeadline() time.Duration    { return secs(t.Actions.SleepDeadlineS) }
func (t Tuning) TransferDeadline() time.Duration { return secs(t.Actions.TransferDeadlineS) }

func (t Tuning) FeedInterval() time.Duration       { return millis(t.Behaviors.FeedIntervalMs) }
func (t Tuning) HungerWarnCooldown() time.Duration { return secs(t.Behaviors.HungerWarnCooldownS) }
func (t Tuning) ShieldInterval() time.Duration     { return millis(t.Behaviors.ShieldIntervalMs) }
func (t Tuning) ShieldMinGap() time.Duration       { return millis(t.Behaviors.ShieldMinGapMs) }
func (t Tuning) ShieldDuration() time.Duration     { return millis(t.Behaviors.ShieldDurationMs) }
func (t Tuning) DefenseDuration() time.Duration    { return millis(t.Behaviors.DefenseDurationMs) }

func secs(n int) time.Duration   { return time.Duration(n) * time.Second }
func millis(n int) time.Duration { return time.Duration(n) * time.Millisecond }
