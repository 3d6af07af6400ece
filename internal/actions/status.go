package actions

import (
	"context"

	"minebridge/internal/protocol"
	"minebridge/internal/session"
)

// StatusResult is the full observable agent state. Reading it consumes
// the one-shot event slots.
type StatusResult struct {
	Agent       string                     `json:"agent"`
	Connected   bool                       `json:"connected"`
	TaskRunning bool                       `json:"task_running"`
	Position    protocol.Vec3              `json:"position"`
	Vitals      protocol.Vitals            `json:"vitals"`
	Inventory   map[string]int             `json:"inventory"`
	Equipment   map[string]string          `json:"equipment,omitempty"`
	Effects     map[string]protocol.Effect `json:"effects"`
	Events      protocol.EventSlots        `json:"events"`
}

// Status reports without touching the task guard, so it works while an
// action runs.
func (r *Runner) Status(ctx context.Context, s *session.Session) (StatusResult, error) {
	out := StatusResult{
		Agent:       s.ID,
		Connected:   s.Upstream.Connected(),
		TaskRunning: s.TaskRunning(),
		Vitals:      s.Vitals(),
		Equipment:   s.Gear(),
		Effects:     s.Effects(),
		Events:      s.TakeEvents(),
	}
	if !out.Connected {
		return out, nil
	}
	pos, err := s.Upstream.Position(ctx)
	if err != nil {
		return out, err
	}
	out.Position = pos
	inv, err := s.Upstream.Inventory(ctx)
	if err != nil {
		return out, err
	}
	out.Inventory = inv
	return out, nil
}
