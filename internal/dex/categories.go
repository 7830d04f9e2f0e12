package dex

import "strings"

// Category is one of the closed set of creature type codes with its Spanish label.
type Category struct {
	Code  string
	Label string
}

// Categories lists the known type codes in selector order.
var Categories = []Category{
	{Code: "fire", Label: "Fuego"},
	{Code: "water", Label: "Agua"},
	{Code: "grass", Label: "Planta"},
	{Code: "electric", Label: "Eléctrico"},
	{Code: "fighting", Label: "Lucha"},
	{Code: "psychic", Label: "Psíquico"},
	{Code: "rock", Label: "Roca"},
	{Code: "ground", Label: "Tierra"},
	{Code: "ice", Label: "Hielo"},
	{Code: "bug", Label: "Bicho"},
	{Code: "dragon", Label: "Dragón"},
	{Code: "ghost", Label: "Fantasma"},
	{Code: "poison", Label: "Veneno"},
	{Code: "normal", Label: "Normal"},
	{Code: "flying", Label: "Volador"},
	{Code: "dark", Label: "Siniestro"},
	{Code: "steel", Label: "Acero"},
	{Code: "fairy", Label: "Hada"},
}

var categoryLabels = func() map[string]string {
	out := make(map[string]string, len(Categories))
	for _, c := range Categories {
		out[c.Code] = c.Label
	}
	return out
}()

// LookupCategory returns the Spanish label for a known code.
func LookupCategory(code string) (string, bool) {
	label, ok := categoryLabels[strings.ToLower(strings.TrimSpace(code))]
	return label, ok
}

// IsKnownCategory reports whether code belongs to the closed set.
func IsKnownCategory(code string) bool {
	_, ok := LookupCategory(code)
	return ok
}
