package dex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleCreatures() []Creature {
	return []Creature{
		{ID: 4, DisplayName: "Charmander", Categories: []string{"fire"}},
		{ID: 1, DisplayName: "Bulbasaur", Categories: []string{"grass", "poison"}},
		{ID: 6, DisplayName: "Charizard", Categories: []string{"Fire", "flying"}},
		{ID: 132, DisplayName: "Ditto", Categories: []string{}},
		{ID: 146, DisplayName: "Moltres", Categories: []string{"FIRE", "flying"}},
	}
}

func ids(creatures []Creature) []int {
	out := make([]int, 0, len(creatures))
	for _, c := range creatures {
		out = append(out, c.ID)
	}
	return out
}

func TestFilterEmptyCategoryReturnsAll(t *testing.T) {
	in := sampleCreatures()
	out := Filter(in, "")
	require.Equal(t, in, out)

	out[0].DisplayName = "changed"
	require.Equal(t, "Charmander", in[0].DisplayName)
}

func TestFilterIsCaseInsensitiveAndStable(t *testing.T) {
	in := sampleCreatures()
	require.Equal(t, []int{4, 6, 146}, ids(Filter(in, "fire")))
	require.Equal(t, []int{4, 6, 146}, ids(Filter(in, "FiRe")))
	require.Equal(t, []int{6, 146}, ids(Filter(in, "flying")))
	require.Empty(t, Filter(in, "dragon"))
}

func TestFilterIsIdempotent(t *testing.T) {
	in := sampleCreatures()
	for _, c := range append(Categories, Category{Code: "FLYING"}, Category{Code: ""}) {
		once := Filter(in, c.Code)
		require.Equal(t, once, Filter(once, c.Code), "category %q", c.Code)
	}
}

func TestLookupCategory(t *testing.T) {
	require.Len(t, Categories, 18)

	label, ok := LookupCategory("Fire")
	require.True(t, ok)
	require.Equal(t, "Fuego", label)

	_, ok = LookupCategory("stellar")
	require.False(t, ok)
	require.True(t, IsKnownCategory("fairy"))
}
