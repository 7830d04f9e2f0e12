package pokeapi

import "strings"

// NamedResource is PokeAPI's {name, url} reference to another resource.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Pokemon is the subset of GET /pokemon/{id}/ consumed by the widget.
type Pokemon struct {
	ID             int           `json:"id"`
	Name           string        `json:"name"`
	Height         int           `json:"height"`
	Weight         int           `json:"weight"`
	BaseExperience *int          `json:"base_experience"`
	Sprites        Sprites       `json:"sprites"`
	Types          []TypeSlot    `json:"types"`
	Abilities      []AbilitySlot `json:"abilities"`
}

// Sprites holds image references; FrontDefault is null for some entries.
type Sprites struct {
	FrontDefault *string `json:"front_default"`
}

// TypeSlot binds a type to its slot on a Pokemon.
type TypeSlot struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

// AbilitySlot binds an ability to its slot on a Pokemon.
type AbilitySlot struct {
	Slot     int           `json:"slot"`
	IsHidden bool          `json:"is_hidden"`
	Ability  NamedResource `json:"ability"`
}

// Species is the subset of GET /pokemon-species/{id}/ consumed by the widget.
type Species struct {
	ID    int             `json:"id"`
	Name  string          `json:"name"`
	Names []LocalizedName `json:"names"`
}

// LocalizedName is one translated name of a species.
type LocalizedName struct {
	Name     string        `json:"name"`
	Language NamedResource `json:"language"`
}

// NameFor returns the first non-empty name whose language matches lang exactly.
func (s *Species) NameFor(lang string) (string, bool) {
	if s == nil {
		return "", false
	}
	for _, n := range s.Names {
		if n.Language.Name == lang && strings.TrimSpace(n.Name) != "" {
			return n.Name, true
		}
	}
	return "", false
}
