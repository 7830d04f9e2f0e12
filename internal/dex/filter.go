package dex

import "strings"

// Filter returns the creatures having category, preserving input order.
// An empty category selects everything. The input slice is never modified.
func Filter(creatures []Creature, category string) []Creature {
	category = strings.TrimSpace(category)
	if category == "" {
		out := make([]Creature, len(creatures))
		copy(out, creatures)
		return out
	}

	out := make([]Creature, 0, len(creatures))
	for _, c := range creatures {
		if c.HasCategory(category) {
			out = append(out, c)
		}
	}
	return out
}
