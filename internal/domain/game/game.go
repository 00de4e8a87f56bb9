// Package game implements the pick-one-of-three lucky draw.
//
// A game starts idle with up to three distinct candidates. Picking one moves
// it to revealing and fixes the chosen item and its fortune. Once the reveal
// delay has elapsed it moves to result, and only Reset starts a new draw.
package game

import (
	"sync"

	"github.com/okian/daonpick/internal/domain/model"
	"github.com/okian/daonpick/internal/domain/sampler"
)

// Candidates is the number of items drawn per round.
const Candidates = 3

// Phase is the state of a game.
type Phase string

// Phases.
const (
	PhaseIdle      Phase = "idle"
	PhaseRevealing Phase = "revealing"
	PhaseResult    Phase = "result"
)

// FortuneFunc picks the fortune message for a category label.
type FortuneFunc func(s sampler.Sampler, category string) string

// State is a snapshot of a game.
type State struct {
	Candidates []model.CatalogEntry `json:"candidates"`
	Selected   int                  `json:"selected"` // -1 until a pick
	Phase      Phase                `json:"phase"`
	Fortune    string               `json:"fortune,omitempty"`
}

// Chosen returns the picked candidate.
func (s State) Chosen() (model.CatalogEntry, bool) {
	if s.Selected < 0 || s.Selected >= len(s.Candidates) {
		return model.CatalogEntry{}, false
	}
	return s.Candidates[s.Selected], true
}

// Game is safe for concurrent use.
type Game struct {
	mu      sync.Mutex
	s       sampler.Sampler
	fortune FortuneFunc
	state   State
}

// New draws the first round from catalog.
func New(catalog []model.CatalogEntry, s sampler.Sampler, fortune FortuneFunc) *Game {
	g := &Game{s: s, fortune: fortune}
	g.draw(catalog)
	return g
}

func (g *Game) draw(catalog []model.CatalogEntry) {
	candidates := sampler.Sample(g.s, catalog, Candidates)
	if candidates == nil {
		candidates = []model.CatalogEntry{}
	}
	g.state = State{Candidates: candidates, Selected: -1, Phase: PhaseIdle}
}

// State returns a copy of the current state.
func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) snapshot() State {
	st := g.state
	st.Candidates = append([]model.CatalogEntry(nil), g.state.Candidates...)
	return st
}

// Pick selects candidate i and fixes its fortune.
func (g *Game) Pick(i int) (State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state.Phase != PhaseIdle {
		return g.snapshot(), ErrNotIdle
	}
	if i < 0 || i >= len(g.state.Candidates) {
		return g.snapshot(), ErrBadIndex
	}
	g.state.Selected = i
	g.state.Phase = PhaseRevealing
	if g.fortune != nil {
		g.state.Fortune = g.fortune(g.s, g.state.Candidates[i].Category)
	}
	return g.snapshot(), nil
}

// RevealElapsed signals that the reveal delay is over.
func (g *Game) RevealElapsed() (State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state.Phase != PhaseRevealing {
		return g.snapshot(), ErrNotRevealing
	}
	g.state.Phase = PhaseResult
	return g.snapshot(), nil
}

// Reset draws a fresh, independent round from catalog in any phase.
func (g *Game) Reset(catalog []model.CatalogEntry) State {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.draw(catalog)
	return g.snapshot()
}
