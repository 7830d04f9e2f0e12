// Package widget owns the per-mount view state of the creature widget and the
// store that keeps mounted instances alive until they are unmounted or expire.
package widget

import (
	"errors"
	"strings"
	"sync"
	"time"

	"finitefield.org/dex-web/internal/dex"
)

var (
	// ErrNotFound indicates no widget is mounted under the requested id.
	ErrNotFound = errors.New("widget: not found")
	// ErrNotReady indicates the interaction requires a successfully loaded batch.
	ErrNotReady = errors.New("widget: not ready")
	// ErrUnknownCreature indicates the creature id is not part of the batch.
	ErrUnknownCreature = errors.New("widget: unknown creature")
	// ErrClosed indicates the widget has been unmounted.
	ErrClosed = errors.New("widget: closed")
)

// Phase is the top-level render mode.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseError
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseError:
		return "error"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

// ViewState is the state one widget renders from.
type ViewState struct {
	Creatures        []dex.Creature
	Loading          bool
	LoadError        string
	SelectedCategory string
	Expanded         map[int]bool
}

func newViewState() ViewState {
	return ViewState{
		Creatures: []dex.Creature{},
		Loading:   true,
		Expanded:  map[int]bool{},
	}
}

// Phase derives the render mode. An error always wins over the list.
func (s ViewState) Phase() Phase {
	switch {
	case s.Loading:
		return PhaseLoading
	case s.LoadError != "":
		return PhaseError
	default:
		return PhaseReady
	}
}

// Visible applies the category filter.
func (s ViewState) Visible() []dex.Creature {
	return dex.Filter(s.Creatures, s.SelectedCategory)
}

// IsExpanded reports whether the creature shows its detail section.
func (s ViewState) IsExpanded(id int) bool {
	return s.Expanded[id]
}

func (s ViewState) has(id int) bool {
	for _, c := range s.Creatures {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (s ViewState) clone() ViewState {
	out := s
	out.Creatures = make([]dex.Creature, len(s.Creatures))
	copy(out.Creatures, s.Creatures)
	out.Expanded = make(map[int]bool, len(s.Expanded))
	for id, v := range s.Expanded {
		out.Expanded[id] = v
	}
	return out
}

// Instance is one mounted widget. All state changes go through its methods.
type Instance struct {
	id string

	mu        sync.Mutex
	state     ViewState
	completed bool
	closed    bool
	lastSeen  time.Time
	cancel    func()

	done chan struct{}
}

func newInstance(id string, now time.Time) *Instance {
	return &Instance{
		id:       id,
		state:    newViewState(),
		lastSeen: now,
		cancel:   func() {},
		done:     make(chan struct{}),
	}
}

// ID returns the widget id.
func (i *Instance) ID() string {
	return i.id
}

// Done is closed once the fetch cycle has finished, whether or not its
// result was applied.
func (i *Instance) Done() <-chan struct{} {
	return i.done
}

// Snapshot returns a copy of the current state.
func (i *Instance) Snapshot() ViewState {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state.clone()
}

// SelectCategory sets the category filter. Codes are stored lower-cased.
func (i *Instance) SelectCategory(code string) (ViewState, error) {
	return i.mutate(func(s *ViewState) error {
		s.SelectedCategory = strings.ToLower(strings.TrimSpace(code))
		return nil
	})
}

// ClearCategory resets the filter to all categories.
func (i *Instance) ClearCategory() (ViewState, error) {
	return i.mutate(func(s *ViewState) error {
		s.SelectedCategory = ""
		return nil
	})
}

// Toggle flips the expansion flag of one creature.
func (i *Instance) Toggle(creatureID int) (ViewState, error) {
	return i.mutate(func(s *ViewState) error {
		if !s.has(creatureID) {
			return ErrUnknownCreature
		}
		if s.Expanded[creatureID] {
			delete(s.Expanded, creatureID)
		} else {
			s.Expanded[creatureID] = true
		}
		return nil
	})
}

func (i *Instance) mutate(fn func(*ViewState) error) (ViewState, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return ViewState{}, ErrClosed
	}
	if i.state.Phase() != PhaseReady {
		return i.state.clone(), ErrNotReady
	}
	if err := fn(&i.state); err != nil {
		return i.state.clone(), err
	}
	return i.state.clone(), nil
}

// complete applies the fetch result once. It reports false when the result
// was discarded because the instance was already completed or closed.
func (i *Instance) complete(creatures []dex.Creature, err error) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.completed || i.closed {
		return false
	}
	i.completed = true
	i.state.Loading = false
	if err != nil {
		i.state.LoadError = err.Error()
		i.state.Creatures = []dex.Creature{}
		return true
	}
	if creatures == nil {
		creatures = []dex.Creature{}
	}
	i.state.Creatures = creatures
	return true
}

func (i *Instance) touch(now time.Time) {
	i.mu.Lock()
	i.lastSeen = now
	i.mu.Unlock()
}

func (i *Instance) idleSince(now time.Time) time.Duration {
	i.mu.Lock()
	defer i.mu.Unlock()
	return now.Sub(i.lastSeen)
}

func (i *Instance) close() {
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return
	}
	i.closed = true
	cancel := i.cancel
	i.mu.Unlock()
	cancel()
}
