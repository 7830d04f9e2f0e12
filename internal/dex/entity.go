// Package dex holds the creature batch domain: sampling ids, enriching them
// from PokeAPI and filtering the result by category.
package dex

import "strings"

const (
	// BatchSize is the number of creatures fetched per widget lifetime.
	BatchSize = 12
	// MaxID is the highest creature id drawn by the sampler.
	MaxID = 898
)

// Creature is the display entity built from one primary and one species record.
type Creature struct {
	ID             int
	DisplayName    string
	CanonicalName  string
	ImageURL       string
	Categories     []string
	HeightUnits    int
	WeightUnits    int
	Abilities      []string
	BaseExperience *int
}

// HasCategory reports whether any category equals code, ignoring case.
func (c Creature) HasCategory(code string) bool {
	for _, category := range c.Categories {
		if strings.EqualFold(category, code) {
			return true
		}
	}
	return false
}

// HasImage reports whether the creature carries a sprite reference.
func (c Creature) HasImage() bool {
	return strings.TrimSpace(c.ImageURL) != ""
}
