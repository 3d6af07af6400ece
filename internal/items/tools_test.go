package items

import "testing"

func TestBestTool(t *testing.T) {
	inv := map[string]int{
		"wooden_pickaxe": 1,
		"stone_pickaxe":  1,
		"iron_axe":       1,
	}
	if got, ok := BestTool(inv, ToolFamilyPickaxe); !ok || got != "stone_pickaxe" {
		t.Fatalf("expected stone_pickaxe, got %q ok=%v", got, ok)
	}
	if got, ok := BestTool(inv, ToolFamilyAxe); !ok || got != "iron_axe" {
		t.Fatalf("expected iron_axe, got %q ok=%v", got, ok)
	}
	if _, ok := BestTool(inv, ToolFamilyShovel); ok {
		t.Fatalf("no shovel in inventory")
	}
	if _, ok := BestTool(inv, ToolFamilyNone); ok {
		t.Fatalf("family none has no tools")
	}
}

func TestToolFamilyForBlock(t *testing.T) {
	cases := []struct {
		block string
		want  ToolFamily
	}{
		{"oak_log", ToolFamilyAxe},
		{"crafting_table", ToolFamilyAxe},
		{"dirt", ToolFamilyShovel},
		{"sand", ToolFamilyShovel},
		{"stone", ToolFamilyPickaxe},
		{"deepslate_iron_ore", ToolFamilyPickaxe},
		{"oak_leaves", ToolFamilyNone},
	}
	for _, c := range cases {
		if got := ToolFamilyForBlock(c.block); got != c.want {
			t.Fatalf("%s: got family %v, want %v", c.block, got, c.want)
		}
	}
}

func TestMinTierForBlock(t *testing.T) {
	if got := MinTierForBlock("diamond_ore"); got != "iron" {
		t.Fatalf("diamond ore needs iron, got %q", got)
	}
	if got := MinTierForBlock("deepslate_iron_ore"); got != "stone" {
		t.Fatalf("iron ore needs stone, got %q", got)
	}
	if got := MinTierForBlock("obsidian"); got != "diamond" {
		t.Fatalf("obsidian needs diamond, got %q", got)
	}
	if got := MinTierForBlock("dirt"); got != "" {
		t.Fatalf("dirt needs nothing, got %q", got)
	}
}

func TestTierSatisfies(t *testing.T) {
	if !TierSatisfies("iron", "stone") {
		t.Fatalf("iron should satisfy a stone floor")
	}
	if TierSatisfies("stone", "iron") {
		t.Fatalf("stone must not satisfy an iron floor")
	}
	if !TierSatisfies("netherite", "diamond") {
		t.Fatalf("netherite should satisfy a diamond floor")
	}
	if TierSatisfies("golden", "stone") {
		t.Fatalf("gold tools never satisfy a stone floor")
	}
	if !TierSatisfies("wooden", "") {
		t.Fatalf("empty floor always passes")
	}
}

func TestBestMeleeWeapon(t *testing.T) {
	inv := map[string]int{"stone_sword": 1, "diamond_axe": 1, "wooden_sword": 2}
	// Any sword outranks any axe only within its tier order: diamond axe
	// sits behind all swords of stronger tiers but our order lists all
	// swords first.
	if got, ok := BestMeleeWeapon(inv); !ok || got != "stone_sword" {
		t.Fatalf("expected stone_sword (swords before axes), got %q", got)
	}
	if _, ok := BestMeleeWeapon(map[string]int{}); ok {
		t.Fatalf("empty inventory has no weapon")
	}
}

func TestRangedWeapon(t *testing.T) {
	if _, _, ok := RangedWeapon(map[string]int{"bow": 1}); ok {
		t.Fatalf("bow without ammo is unusable")
	}
	w, a, ok := RangedWeapon(map[string]int{"bow": 1, "arrow": 12})
	if !ok || w != "bow" || a != "arrow" {
		t.Fatalf("expected bow+arrow, got %q %q ok=%v", w, a, ok)
	}
	if _, _, ok := RangedWeapon(map[string]int{"arrow": 64}); ok {
		t.Fatalf("ammo without weapon is unusable")
	}
}

func TestPickFuelAndFood(t *testing.T) {
	inv := map[string]int{"oak_planks": 10, "coal": 3}
	if got, ok := PickFuel(inv); !ok || got != "coal" {
		t.Fatalf("coal preferred over planks, got %q", got)
	}
	if _, ok := PickFuel(map[string]int{"dirt": 9}); ok {
		t.Fatalf("dirt is not fuel")
	}
	if !IsFuel("charcoal") || IsFuel("stone") {
		t.Fatalf("fuel membership wrong")
	}

	food := map[string]int{"beef": 3, "cooked_beef": 1}
	if got, ok := PickFood(food); !ok || got != "cooked_beef" {
		t.Fatalf("cooked beef preferred, got %q", got)
	}
	if _, ok := PickFood(map[string]int{"stone": 1}); ok {
		t.Fatalf("stone is not food")
	}
}
