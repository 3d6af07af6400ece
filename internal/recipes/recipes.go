// Package recipes does the ingredient accounting for crafting: a
// per-unit requirement plan derived from either a shapeless ingredient
// list or a shaped grid, the maximum immediately craftable unit count,
// and the shortfall report when it is not enough.
package recipes

import (
	"minebridge/internal/protocol"
)

// Recipe is one way to produce OutputCount of Output. Exactly one of
// Ingredients (shapeless) or Grid (shaped, row-major, "" for empty
// cells) is populated.
type Recipe struct {
	Output      string     `json:"output" yaml:"output"`
	OutputCount int        `json:"output_count" yaml:"output_count"`
	NeedsTable  bool       `json:"needs_table" yaml:"needs_table"`
	Ingredients []string   `json:"ingredients,omitempty" yaml:"ingredients,omitempty"`
	Grid        [][]string `json:"grid,omitempty" yaml:"grid,omitempty"`
}

// PerUnit returns the ingredient requirement for one craft: cells and
// list entries merged by ingredient id, repeated cells counted.
func (r Recipe) PerUnit() map[string]int {
	need := map[string]int{}
	for _, ing := range r.Ingredients {
		if ing == "" {
			continue
		}
		need[ing]++
	}
	for _, row := range r.Grid {
		for _, cell := range row {
			if cell == "" {
				continue
			}
			need[cell]++
		}
	}
	return need
}

// MaxUnits is the number of crafts the inventory can pay for: the
// minimum over ingredients of floor(have/needPerUnit).
func MaxUnits(need map[string]int, inv map[string]int) int {
	if len(need) == 0 {
		return 0
	}
	max := -1
	for item, per := range need {
		if per <= 0 {
			continue
		}
		units := inv[item] / per
		if max < 0 || units < max {
			max = units
		}
	}
	if max < 0 {
		return 0
	}
	return max
}

// Shortfall lists what is missing to craft `units` more, for the
// structured MissingResources payload.
func Shortfall(need map[string]int, inv map[string]int, units int) []protocol.MissingItem {
	if units <= 0 {
		return nil
	}
	var out []protocol.MissingItem
	for item, per := range need {
		required := per * units
		have := inv[item]
		if have >= required {
			continue
		}
		out = append(out, protocol.MissingItem{
			Item:     item,
			Required: required,
			Have:     have,
			Missing:  required - have,
		})
	}
	return out
}

// Pick chooses the recipe to attempt: the first hand recipe when no
// table is reachable would be preferable, but selection order here is
// simply "cheapest first by distinct ingredient count", which keeps
// hand recipes viable. Returns ok=false for an empty slice.
func Pick(rs []Recipe) (Recipe, bool) {
	if len(rs) == 0 {
		return Recipe{}, false
	}
	best := rs[0]
	for _, r := range rs[1:] {
		if !r.NeedsTable && best.NeedsTable {
			best = r
			continue
		}
		if r.NeedsTable == best.NeedsTable && len(r.PerUnit()) < len(best.PerUnit()) {
			best = r
		}
	}
	return best, true
}
