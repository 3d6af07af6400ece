package toolsrv

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"minebridge/internal/actions"
	"minebridge/internal/session"
)

// toolDef binds a published descriptor to its argument schema and
// handler. Arguments are schema-validated before the handler runs.
type toolDef struct {
	name        string
	description string
	schema      map[string]any
	handle      func(ctx context.Context, s *Server, agent string, args json.RawMessage) (any, error)
}

func objSchema(props map[string]any, required ...string) map[string]any {
	sch := map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		sch["required"] = required
	}
	return sch
}

func toolTable() []toolDef {
	return []toolDef{
		{
			name:        "mine_resource",
			description: "Mine blocks by name or category (log, stone, iron_ore, ...) until the count is met.",
			schema: objSchema(map[string]any{
				"block":       map[string]any{"type": "string", "minLength": 1},
				"count":       map[string]any{"type": "integer", "minimum": 1},
				"radius":      map[string]any{"type": "number", "exclusiveMinimum": 0},
				"deadline_ms": map[string]any{"type": "integer", "minimum": 1},
			}, "block"),
			handle: func(ctx context.Context, s *Server, agent string, args json.RawMessage) (any, error) {
				var req actions.MineRequest
				if err := json.Unmarshal(args, &req); err != nil {
					return nil, err
				}
				return s.core.Mine(ctx, agent, req)
			},
		},
		{
			name:        "craft_items",
			description: "Craft items, placing a crafting table from the inventory when the recipe needs one.",
			schema: objSchema(map[string]any{
				"item":        map[string]any{"type": "string", "minLength": 1},
				"count":       map[string]any{"type": "integer", "minimum": 1},
				"deadline_ms": map[string]any{"type": "integer", "minimum": 1},
			}, "item"),
			handle: func(ctx context.Context, s *Server, agent string, args json.RawMessage) (any, error) {
				var req actions.CraftRequest
				if err := json.Unmarshal(args, &req); err != nil {
					return nil, err
				}
				return s.core.Craft(ctx, agent, req)
			},
		},
		{
			name:        "smelt_item",
			description: "Smelt or cook items in the nearest suitable device, refueling from the inventory as needed.",
			schema: objSchema(map[string]any{
				"item":        map[string]any{"type": "string", "minLength": 1},
				"count":       map[string]any{"type": "integer", "minimum": 1},
				"fuel":        map[string]any{"type": "string"},
				"device":      map[string]any{"type": "string", "enum": []string{"furnace", "blast_furnace", "smoker", "campfire"}},
				"deadline_ms": map[string]any{"type": "integer", "minimum": 1},
			}, "item"),
			handle: func(ctx context.Context, s *Server, agent string, args json.RawMessage) (any, error) {
				var req actions.SmeltRequest
				if err := json.Unmarshal(args, &req); err != nil {
					return nil, err
				}
				return s.core.Smelt(ctx, agent, req)
			},
		},
		{
			name:        "sleep_in_bed",
			description: "Walk to the nearest bed and sleep. Only works at night.",
			schema: objSchema(map[string]any{
				"radius":      map[string]any{"type": "number", "exclusiveMinimum": 0},
				"deadline_ms": map[string]any{"type": "integer", "minimum": 1},
			}),
			handle: func(ctx context.Context, s *Server, agent string, args json.RawMessage) (any, error) {
				var req actions.SleepRequest
				if err := json.Unmarshal(args, &req); err != nil {
					return nil, err
				}
				return s.core.Sleep(ctx, agent, req)
			},
		},
		{
			name:        "deposit_items",
			description: "Deposit items into the nearest chest or barrel.",
			schema: objSchema(map[string]any{
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": map[string]any{"type": "integer", "minimum": 1},
					"minProperties":        1,
				},
				"radius":      map[string]any{"type": "number", "exclusiveMinimum": 0},
				"deadline_ms": map[string]any{"type": "integer", "minimum": 1},
			}, "items"),
			handle: func(ctx context.Context, s *Server, agent string, args json.RawMessage) (any, error) {
				var req actions.TransferRequest
				if err := json.Unmarshal(args, &req); err != nil {
					return nil, err
				}
				return s.core.Deposit(ctx, agent, req)
			},
		},
		{
			name:        "withdraw_items",
			description: "Withdraw items from the nearest chest or barrel.",
			schema: objSchema(map[string]any{
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": map[string]any{"type": "integer", "minimum": 1},
					"minProperties":        1,
				},
				"radius":      map[string]any{"type": "number", "exclusiveMinimum": 0},
				"deadline_ms": map[string]any{"type": "integer", "minimum": 1},
			}, "items"),
			handle: func(ctx context.Context, s *Server, agent string, args json.RawMessage) (any, error) {
				var req actions.TransferRequest
				if err := json.Unmarshal(args, &req); err != nil {
					return nil, err
				}
				return s.core.Withdraw(ctx, agent, req)
			},
		},
		{
			name:        "get_status",
			description: "Get vitals, position, inventory, effects, and pending one-shot events. Reading consumes the events.",
			schema:      objSchema(map[string]any{}),
			handle: func(ctx context.Context, s *Server, agent string, args json.RawMessage) (any, error) {
				return s.core.Status(ctx, agent)
			},
		},
		{
			name:        "cancel_task",
			description: "Cancel the agent's running action, if any.",
			schema:      objSchema(map[string]any{}),
			handle: func(ctx context.Context, s *Server, agent string, args json.RawMessage) (any, error) {
				ok, err := s.core.Cancel(ctx, agent)
				if err != nil {
					return nil, err
				}
				return map[string]any{"cancelled": ok}, nil
			},
		},
		{
			name:        "configure_auto_feed",
			description: "Enable or disable automatic eating and set the hunger threshold.",
			schema: objSchema(map[string]any{
				"enabled":   map[string]any{"type": "boolean"},
				"threshold": map[string]any{"type": "number", "minimum": 0, "maximum": 20},
			}, "enabled"),
			handle: func(ctx context.Context, s *Server, agent string, args json.RawMessage) (any, error) {
				var p struct {
					Enabled   bool    `json:"enabled"`
					Threshold float64 `json:"threshold"`
				}
				if err := json.Unmarshal(args, &p); err != nil {
					return nil, err
				}
				err := s.core.ConfigureAutoFeed(ctx, agent, session.FeedConfig{
					Enabled:   p.Enabled,
					Threshold: p.Threshold,
				})
				if err != nil {
					return nil, err
				}
				return map[string]any{"ok": true}, nil
			},
		},
		{
			name:        "configure_auto_shield",
			description: "Enable or disable automatic shield raising against incoming projectiles.",
			schema: objSchema(map[string]any{
				"enabled":     map[string]any{"type": "boolean"},
				"duration_ms": map[string]any{"type": "integer", "minimum": 0},
			}, "enabled"),
			handle: func(ctx context.Context, s *Server, agent string, args json.RawMessage) (any, error) {
				var p struct {
					Enabled    bool `json:"enabled"`
					DurationMs int  `json:"duration_ms"`
				}
				if err := json.Unmarshal(args, &p); err != nil {
					return nil, err
				}
				err := s.core.ConfigureAutoShield(ctx, agent, session.ShieldConfig{
					Enabled:  p.Enabled,
					Duration: time.Duration(p.DurationMs) * time.Millisecond,
				})
				if err != nil {
					return nil, err
				}
				return map[string]any{"ok": true}, nil
			},
		},
		{
			name:        "configure_self_defense",
			description: "Enable or disable retaliation against attackers.",
			schema: objSchema(map[string]any{
				"enabled":     map[string]any{"type": "boolean"},
				"duration_ms": map[string]any{"type": "integer", "minimum": 0},
			}, "enabled"),
			handle: func(ctx context.Context, s *Server, agent string, args json.RawMessage) (any, error) {
				var p struct {
					Enabled    bool `json:"enabled"`
					DurationMs int  `json:"duration_ms"`
				}
				if err := json.Unmarshal(args, &p); err != nil {
					return nil, err
				}
				err := s.core.ConfigureSelfDefense(ctx, agent, session.DefenseConfig{
					Enabled:  p.Enabled,
					Duration: time.Duration(p.DurationMs) * time.Millisecond,
				})
				if err != nil {
					return nil, err
				}
				return map[string]any{"ok": true}, nil
			},
		},
		{
			name:        "read_chat",
			description: "Read the newest chat lines seen by the agent, oldest first.",
			schema: objSchema(map[string]any{
				"limit": map[string]any{"type": "integer", "minimum": 1, "maximum": 100},
			}),
			handle: func(ctx context.Context, s *Server, agent string, args json.RawMessage) (any, error) {
				var p struct {
					Limit int `json:"limit"`
				}
				if err := json.Unmarshal(args, &p); err != nil {
					return nil, err
				}
				lines, err := s.core.ReadChat(ctx, agent, p.Limit)
				if err != nil {
					return nil, err
				}
				return map[string]any{"lines": lines}, nil
			},
		},
		{
			name:        "connect",
			description: "Eagerly connect the agent's game session.",
			schema:      objSchema(map[string]any{}),
			handle: func(ctx context.Context, s *Server, agent string, args json.RawMessage) (any, error) {
				if err := s.core.Connect(ctx, agent); err != nil {
					return nil, err
				}
				return map[string]any{"ok": true}, nil
			},
		},
		{
			name:        "disconnect",
			description: "Tear down the agent's game session.",
			schema:      objSchema(map[string]any{}),
			handle: func(ctx context.Context, s *Server, agent string, args json.RawMessage) (any, error) {
				if err := s.core.Disconnect(ctx, agent); err != nil {
					return nil, err
				}
				return map[string]any{"ok": true}, nil
			},
		},
	}
}

func fmtToolError(name string, err error) error {
	return fmt.Errorf("%s: %w", name, err)
}
