package items

// Melee preference runs strongest to weakest: swords of each tier,
// then axes of each tier.
var meleePreference = buildMeleePreference()

func buildMeleePreference() []string {
	var out []string
	for _, tier := range tierOrder {
		out = append(out, tier+"_sword")
	}
	for _, tier := range tierOrder {
		out = append(out, tier+"_axe")
	}
	return out
}

// BestMeleeWeapon returns the best available melee weapon.
func BestMeleeWeapon(inv map[string]int) (string, bool) {
	for _, w := range meleePreference {
		if inv[w] > 0 {
			return w, true
		}
	}
	return "", false
}

// RangedWeapon returns a usable ranged weapon and its ammunition, or
// ok=false when either half is missing.
func RangedWeapon(inv map[string]int) (weapon, ammo string, ok bool) {
	for _, w := range []string{"bow", "crossbow"} {
		if inv[w] == 0 {
			continue
		}
		for _, a := range []string{"arrow", "spectral_arrow", "tipped_arrow"} {
			if inv[a] > 0 {
				return w, a, true
			}
		}
	}
	return "", "", false
}
