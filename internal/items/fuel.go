package items

// fuelPreference is the fixed order tried when no explicit fuel is
// named: densest and cheapest first, raw wood last.
var fuelPreference = []string{
	"coal", "charcoal", "coal_block", "dried_kelp_block", "blaze_rod",
	"oak_planks", "spruce_planks", "birch_planks", "jungle_planks",
	"acacia_planks", "dark_oak_planks",
	"oak_log", "spruce_log", "birch_log", "jungle_log",
	"acacia_log", "dark_oak_log",
}

// PickFuel selects the first preferred fuel present in inv.
func PickFuel(inv map[string]int) (string, bool) {
	for _, f := range fuelPreference {
		if inv[f] > 0 {
			return f, true
		}
	}
	return "", false
}

// IsFuel reports whether an item can burn in a fueled device.
func IsFuel(item string) bool {
	for _, f := range fuelPreference {
		if f == item {
			return true
		}
	}
	return false
}

// foodPreference orders edible items best nutrition first for the
// auto-feed poller.
var foodPreference = []string{
	"golden_carrot", "cooked_beef", "cooked_porkchop", "cooked_mutton",
	"cooked_chicken", "cooked_salmon", "cooked_cod", "cooked_rabbit",
	"baked_potato", "bread", "carrot", "apple", "melon_slice",
	"beef", "porkchop", "chicken", "mutton",
}

// PickFood selects the best available food item.
func PickFood(inv map[string]int) (string, bool) {
	for _, f := range foodPreference {
		if inv[f] > 0 {
			return f, true
		}
	}
	return "", false
}
