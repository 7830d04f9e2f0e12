// Package pokeapitest serves a deterministic fake of the two PokeAPI endpoints
// consumed by the widget.
package pokeapitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"finitefield.org/dex-web/internal/pokeapi"
)

// Server is a fake PokeAPI. Ids without an explicit fixture are synthesised.
type Server struct {
	*httptest.Server

	mu             sync.Mutex
	pokemon        map[int]pokeapi.Pokemon
	species        map[int]pokeapi.Species
	pokemonStatus  map[int]int
	speciesStatus  map[int]int
	malformedNames map[int]bool
	malformedMons  map[int]bool
	requests       []string
}

// Option customises the fake.
type Option func(*Server)

// WithPokemon registers an explicit primary record.
func WithPokemon(p pokeapi.Pokemon) Option {
	return func(s *Server) { s.pokemon[p.ID] = p }
}

// WithSpecies registers an explicit species record.
func WithSpecies(sp pokeapi.Species) Option {
	return func(s *Server) { s.species[sp.ID] = sp }
}

// WithPokemonStatus makes GET /pokemon/{id}/ answer with status.
func WithPokemonStatus(id, status int) Option {
	return func(s *Server) { s.pokemonStatus[id] = status }
}

// WithSpeciesStatus makes GET /pokemon-species/{id}/ answer with status.
func WithSpeciesStatus(id, status int) Option {
	return func(s *Server) { s.speciesStatus[id] = status }
}

// WithMalformedSpecies makes GET /pokemon-species/{id}/ answer 200 with an invalid body.
func WithMalformedSpecies(id int) Option {
	return func(s *Server) { s.malformedNames[id] = true }
}

// WithMalformedPokemon makes GET /pokemon/{id}/ answer 200 with an invalid body.
func WithMalformedPokemon(id int) Option {
	return func(s *Server) { s.malformedMons[id] = true }
}

// NewServer starts the fake and registers its shutdown with t.Cleanup.
func NewServer(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		pokemon:        map[int]pokeapi.Pokemon{},
		species:        map[int]pokeapi.Species{},
		pokemonStatus:  map[int]int{},
		speciesStatus:  map[int]int{},
		malformedNames: map[int]bool{},
		malformedMons:  map[int]bool{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Requests returns the request paths served so far, in arrival order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL.Path)
	s.mu.Unlock()

	resource, id, ok := parsePath(r.URL.Path)
	if !ok || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "pokemon":
		if status, ok := s.pokemonStatus[id]; ok {
			http.Error(w, http.StatusText(status), status)
			return
		}
		if s.malformedMons[id] {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id": "one"`))
			return
		}
		p, ok := s.pokemon[id]
		if !ok {
			p = Synthesize(id)
		}
		writeJSON(w, p)
	case "pokemon-species":
		if status, ok := s.speciesStatus[id]; ok {
			http.Error(w, http.StatusText(status), status)
			return
		}
		if s.malformedNames[id] {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"names": "oops"`))
			return
		}
		sp, ok := s.species[id]
		if !ok {
			sp = SynthesizeSpecies(id)
		}
		writeJSON(w, sp)
	default:
		http.NotFound(w, r)
	}
}

// Synthesize builds the default primary record for id. Every third id is a
// fire type, every id divisible by five has no sprite.
func Synthesize(id int) pokeapi.Pokemon {
	types := []pokeapi.TypeSlot{{Slot: 1, Type: pokeapi.NamedResource{Name: "normal"}}}
	if id%3 == 0 {
		types = []pokeapi.TypeSlot{
			{Slot: 1, Type: pokeapi.NamedResource{Name: "fire"}},
			{Slot: 2, Type: pokeapi.NamedResource{Name: "flying"}},
		}
	}
	var sprite *string
	if id%5 != 0 {
		u := fmt.Sprintf("https://sprites.example/%d.png", id)
		sprite = &u
	}
	exp := 50 + id
	return pokeapi.Pokemon{
		ID:             id,
		Name:           fmt.Sprintf("creature-%d", id),
		Height:         id % 40,
		Weight:         id * 3,
		BaseExperience: &exp,
		Sprites:        pokeapi.Sprites{FrontDefault: sprite},
		Types:          types,
		Abilities: []pokeapi.AbilitySlot{
			{Slot: 1, Ability: pokeapi.NamedResource{Name: "overgrow"}},
			{Slot: 3, IsHidden: true, Ability: pokeapi.NamedResource{Name: "chlorophyll"}},
		},
	}
}

// SynthesizeSpecies builds the default species record for id with an "es" name.
func SynthesizeSpecies(id int) pokeapi.Species {
	return pokeapi.Species{
		ID:   id,
		Name: fmt.Sprintf("creature-%d", id),
		Names: []pokeapi.LocalizedName{
			{Name: fmt.Sprintf("Creature %d", id), Language: pokeapi.NamedResource{Name: "en"}},
			{Name: fmt.Sprintf("criatura-%d", id), Language: pokeapi.NamedResource{Name: "es"}},
		},
	}
}

func parsePath(p string) (string, int, bool) {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	if len(parts) < 2 {
		return "", 0, false
	}
	id, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return "", 0, false
	}
	return parts[len(parts)-2], id, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
