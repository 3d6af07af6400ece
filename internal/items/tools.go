package items

import "strings"

type ToolFamily int

const (
	ToolFamilyNone ToolFamily = iota
	ToolFamilyPickaxe
	ToolFamilyAxe
	ToolFamilyShovel
	ToolFamilyHoe
)

// tierOrder runs strongest to weakest. Gold digs fast but breaks fast,
// so it ranks below stone for our purposes.
var tierOrder = []string{"netherite", "diamond", "iron", "stone", "golden", "wooden"}

// ToolFamilyForBlock picks the dig tool family for a concrete block
// name. Alias categories must be expanded first (BlockAlias).
func ToolFamilyForBlock(block string) ToolFamily {
	switch {
	case strings.HasSuffix(block, "_log"), strings.HasSuffix(block, "_planks"),
		strings.HasSuffix(block, "_wood"), block == "crafting_table", block == "chest":
		return ToolFamilyAxe
	case block == "dirt", block == "grass_block", block == "coarse_dirt",
		block == "rooted_dirt", block == "sand", block == "red_sand",
		block == "gravel", block == "clay", block == "soul_sand":
		return ToolFamilyShovel
	case strings.HasSuffix(block, "_leaves"), strings.HasSuffix(block, "_bed"),
		block == "torch", block == "sugar_cane":
		return ToolFamilyNone
	default:
		return ToolFamilyPickaxe
	}
}

func (f ToolFamily) suffix() string {
	switch f {
	case ToolFamilyPickaxe:
		return "_pickaxe"
	case ToolFamilyAxe:
		return "_axe"
	case ToolFamilyShovel:
		return "_shovel"
	case ToolFamilyHoe:
		return "_hoe"
	default:
		return ""
	}
}

// BestTool returns the strongest tool of the family present in inv.
func BestTool(inv map[string]int, family ToolFamily) (string, bool) {
	suffix := family.suffix()
	if suffix == "" {
		return "", false
	}
	for _, tier := range tierOrder {
		name := tier + suffix
		if inv[name] > 0 {
			return name, true
		}
	}
	return "", false
}

// MinTierForBlock returns the weakest pickaxe tier that can harvest the
// block, or "" when any tool (or bare hands) works.
func MinTierForBlock(block string) string {
	switch {
	case strings.Contains(block, "diamond_ore"), strings.Contains(block, "emerald_ore"),
		strings.Contains(block, "gold_ore"), strings.Contains(block, "redstone_ore"):
		return "iron"
	case strings.Contains(block, "iron_ore"), strings.Contains(block, "copper_ore"),
		strings.Contains(block, "lapis_ore"):
		return "stone"
	case block == "obsidian", block == "ancient_debris":
		return "diamond"
	default:
		return ""
	}
}

// TierSatisfies reports whether a tool of tier `have` meets the `need`
// floor. Both are tier names from tierOrder; empty need always passes.
func TierSatisfies(have, need string) bool {
	if need == "" {
		return true
	}
	rank := func(t string) int {
		for i, name := range tierOrder {
			if name == t {
				return len(tierOrder) - i
			}
		}
		return 0
	}
	// Gold never satisfies a tier floor even though it ranks above wood.
	if have == "golden" {
		return need == "wooden" || need == "golden"
	}
	return rank(have) >= rank(need)
}

// TierOfTool extracts the material tier from a tool name.
func TierOfTool(tool string) string {
	i := strings.IndexByte(tool, '_')
	if i <= 0 {
		return ""
	}
	t := tool[:i]
	for _, name := range tierOrder {
		if name == t {
			return t
		}
	}
	return ""
}
