package main

import (
	"math/rand/v2"

	"github.com/wricardo/mcp-training/minesweeper/game/engine"
)

// Move is the solver's next action
type Move struct {
	X, Y   int
	Action string // engine.ActionReveal or engine.ActionMark
	Guess  bool
}

// Solver picks moves from a redacted game state using single-tile deductions
// and falls back to a random hidden tile when nothing is certain.
type Solver struct {
	rng *rand.Rand
}

func NewSolver(seed uint64) *Solver {
	return &Solver{rng: rand.New(rand.NewPCG(seed, seed+1))}
}

type neighbourInfo struct {
	marked   int
	unmarked []engine.Position // hidden and not marked
}

func inspect(state *engine.GameState, x, y int) neighbourInfo {
	var info neighbourInfo
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			t, ok := state.TileAt(x+dx, y+dy)
			if !ok || t.Revealed {
				continue
			}
			if t.Marked {
				info.marked++
			} else {
				info.unmarked = append(info.unmarked, engine.Position{X: x + dx, Y: y + dy})
			}
		}
	}
	return info
}

// NextMove returns nil once no hidden, unmarked tile is left
func (s *Solver) NextMove(state *engine.GameState) *Move {
	// A number whose marks are all placed makes its other neighbours safe.
	for _, t := range state.Tiles {
		if !t.Revealed || t.AdjacentMines == 0 {
			continue
		}
		info := inspect(state, t.X, t.Y)
		if len(info.unmarked) > 0 && info.marked == t.AdjacentMines {
			p := info.unmarked[0]
			return &Move{X: p.X, Y: p.Y, Action: engine.ActionReveal}
		}
	}

	// A number with exactly as many hidden neighbours as mines marks them all.
	for _, t := range state.Tiles {
		if !t.Revealed || t.AdjacentMines == 0 {
			continue
		}
		info := inspect(state, t.X, t.Y)
		if len(info.unmarked) > 0 && info.marked+len(info.unmarked) == t.AdjacentMines {
			p := info.unmarked[0]
			return &Move{X: p.X, Y: p.Y, Action: engine.ActionMark}
		}
	}

	var hidden []engine.Position
	for _, t := range state.Tiles {
		if !t.Revealed && !t.Marked {
			hidden = append(hidden, engine.Position{X: t.X, Y: t.Y})
		}
	}
	if len(hidden) == 0 {
		return nil
	}
	p := hidden[s.rng.IntN(len(hidden))]
	return &Move{X: p.X, Y: p.Y, Action: engine.ActionReveal, Guess: true}
}
