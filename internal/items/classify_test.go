package items

import "testing"

func TestBlockAlias(t *testing.T) {
	logs := BlockAlias("log")
	if len(logs) < 6 {
		t.Fatalf("expected every log variant, got %v", logs)
	}
	for _, b := range logs {
		if ToolFamilyForBlock(b) != ToolFamilyAxe {
			t.Fatalf("log variant %s should map to axe family", b)
		}
	}
	iron := BlockAlias("iron_ore")
	if len(iron) != 2 {
		t.Fatalf("expected surface+deepslate iron ore, got %v", iron)
	}
	// Exact names pass through untouched.
	if got := BlockAlias("obsidian"); len(got) != 1 || got[0] != "obsidian" {
		t.Fatalf("unknown name should map to itself, got %v", got)
	}
}

func TestClassifySmeltable(t *testing.T) {
	cases := []struct {
		item string
		want SmeltClass
	}{
		{"beef", SmeltFood},
		{"kelp", SmeltFood},
		{"raw_iron", SmeltOre},
		{"deepslate_gold_ore", SmeltOre},
		{"ancient_debris", SmeltOre},
		{"cactus", SmeltOther},
		{"clay_ball", SmeltOther},
	}
	for _, c := range cases {
		if got := ClassifySmeltable(c.item); got != c.want {
			t.Fatalf("%s: got class %v, want %v", c.item, got, c.want)
		}
	}
}

func TestDeviceChain(t *testing.T) {
	food := DeviceChain("beef", "")
	want := []Device{DeviceSmoker, DeviceFurnace, DeviceCampfire}
	if len(food) != len(want) {
		t.Fatalf("food chain: got %v", food)
	}
	for i := range want {
		if food[i] != want[i] {
			t.Fatalf("food chain order: got %v, want %v", food, want)
		}
	}

	ore := DeviceChain("raw_iron", "")
	if ore[0] != DeviceBlastFurnace || ore[1] != DeviceFurnace || len(ore) != 2 {
		t.Fatalf("ore chain: got %v", ore)
	}

	other := DeviceChain("cactus", "")
	if len(other) != 1 || other[0] != DeviceFurnace {
		t.Fatalf("default chain: got %v", other)
	}

	// An explicit preference moves to the front without duplication.
	pref := DeviceChain("beef", DeviceFurnace)
	if pref[0] != DeviceFurnace || len(pref) != 3 {
		t.Fatalf("preferred chain: got %v", pref)
	}
}

func TestDeviceNeedsFuel(t *testing.T) {
	if DeviceCampfire.NeedsFuel() {
		t.Fatalf("campfire must not require fuel")
	}
	if !DeviceSmoker.NeedsFuel() || !DeviceFurnace.NeedsFuel() {
		t.Fatalf("fueled devices misclassified")
	}
}
