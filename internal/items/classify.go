// Package items is the tagged classification layer: loose resource
// names expand to explicit block lists, smeltables classify into
// device chains, and tool/weapon/fuel selection follows fixed
// preference orders. Everything here is a deterministic mapping so the
// classification is exhaustively testable.
package items

// BlockAlias expands a loose resource category ("log", "iron_ore") to
// the concrete block names it matches. Unknown names map to
// themselves so exact block ids pass through.
func BlockAlias(name string) []string {
	switch name {
	case "log", "wood":
		return []string{
			"oak_log", "spruce_log", "birch_log", "jungle_log",
			"acacia_log", "dark_oak_log", "mangrove_log", "cherry_log",
		}
	case "plank", "planks":
		return []string{
			"oak_planks", "spruce_planks", "birch_planks", "jungle_planks",
			"acacia_planks", "dark_oak_planks", "mangrove_planks", "cherry_planks",
		}
	case "stone":
		return []string{"stone", "cobblestone", "andesite", "diorite", "granite", "deepslate", "cobbled_deepslate"}
	case "coal_ore":
		return []string{"coal_ore", "deepslate_coal_ore"}
	case "iron_ore":
		return []string{"iron_ore", "deepslate_iron_ore"}
	case "copper_ore":
		return []string{"copper_ore", "deepslate_copper_ore"}
	case "gold_ore":
		return []string{"gold_ore", "deepslate_gold_ore", "nether_gold_ore"}
	case "diamond_ore":
		return []string{"diamond_ore", "deepslate_diamond_ore"}
	case "redstone_ore":
		return []string{"redstone_ore", "deepslate_redstone_ore"}
	case "lapis_ore":
		return []string{"lapis_ore", "deepslate_lapis_ore"}
	case "emerald_ore":
		return []string{"emerald_ore", "deepslate_emerald_ore"}
	case "dirt":
		return []string{"dirt", "grass_block", "coarse_dirt", "rooted_dirt"}
	case "sand":
		return []string{"sand", "red_sand"}
	case "bed":
		return []string{
			"white_bed", "red_bed", "blue_bed", "green_bed", "yellow_bed",
			"black_bed", "brown_bed", "cyan_bed", "gray_bed", "light_blue_bed",
			"light_gray_bed", "lime_bed", "magenta_bed", "orange_bed",
			"pink_bed", "purple_bed",
		}
	default:
		return []string{name}
	}
}

// SmeltClass drives device-chain selection for smelting and cooking.
type SmeltClass int

const (
	SmeltOther SmeltClass = iota
	SmeltFood
	SmeltOre
)

var smeltFoods = map[string]struct{}{
	"beef": {}, "porkchop": {}, "chicken": {}, "mutton": {}, "rabbit": {},
	"cod": {}, "salmon": {}, "potato": {}, "kelp": {},
}

var smeltOres = map[string]struct{}{
	"raw_iron": {}, "raw_gold": {}, "raw_copper": {},
	"iron_ore": {}, "gold_ore": {}, "copper_ore": {},
	"deepslate_iron_ore": {}, "deepslate_gold_ore": {}, "deepslate_copper_ore": {},
	"nether_gold_ore": {}, "ancient_debris": {},
}

func ClassifySmeltable(item string) SmeltClass {
	if _, ok := smeltFoods[item]; ok {
		return SmeltFood
	}
	if _, ok := smeltOres[item]; ok {
		return SmeltOre
	}
	return SmeltOther
}

// Device is one furnace-like station in a fallback chain.
type Device string

const (
	DeviceFurnace      Device = "furnace"
	DeviceBlastFurnace Device = "blast_furnace"
	DeviceSmoker       Device = "smoker"
	DeviceCampfire     Device = "campfire"
)

// NeedsFuel reports whether a device consumes fuel. The campfire is
// the no-fuel last resort for food.
func (d Device) NeedsFuel() bool { return d != DeviceCampfire }

// DeviceChain returns the ordered fallback chain for an item. An
// explicit preference goes first; the furnace is always reachable; the
// campfire closes the chain for food only.
func DeviceChain(item string, preferred Device) []Device {
	var chain []Device
	switch ClassifySmeltable(item) {
	case SmeltFood:
		chain = []Device{DeviceSmoker, DeviceFurnace, DeviceCampfire}
	case SmeltOre:
		chain = []Device{DeviceBlastFurnace, DeviceFurnace}
	default:
		chain = []Device{DeviceFurnace}
	}
	if preferred == "" {
		return chain
	}
	out := []Device{preferred}
	for _, d := range chain {
		if d != preferred {
			out = append(out, d)
		}
	}
	return out
}
