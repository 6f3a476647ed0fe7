package engine

import (
	"errors"
	"fmt"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsGameOver() bool
	IsVictory() bool
	RemainingMines() int

	// Commands
	Start() error
	Reveal(x, y int) (*RevealResult, error)
	Mark(x, y int) (bool, error)

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

const (
	msgReady     = "Board ready. Start the game, then reveal tiles."
	msgStarted   = "Game started. Good luck!"
	msgMarked    = "Marked (%d, %d). %d mines remaining."
	msgUnmarked  = "Unmarked (%d, %d). %d mines remaining."
	msgNoop      = "Tile (%d, %d) is already revealed."
	msgRevealed  = "Revealed %d tile(s)."
	msgHitMine   = "Boom! Mine at (%d, %d). Game over."
	msgVictory   = "All safe tiles revealed. You win!"
	msgGameOver  = "The game is over. Reset to play again."
	msgBadStart  = "The game can only be started once from a fresh board."
	msgOutOfGrid = "Position (%d, %d) is outside the %dx%d board."
)

// GameEngine implements the Engine interface on top of a Board
type GameEngine struct {
	board   *Board
	config  *GameConfig
	rng     RandomSource
	message string

	history    []MoveHistoryEntry
	totalMoves int
	current    []MoveHistoryEntry
}

// NewEngine creates a new game engine with the provided configuration.
// A config with a Seed produces the same layout on every reset.
func NewEngine(config *GameConfig) (*GameEngine, error) {
	return NewEngineWithSource(config, nil)
}

// NewEngineWithSource creates an engine that draws mine positions from rng.
// A nil rng falls back to the config seed or DefaultSource.
func NewEngineWithSource(config *GameConfig, rng RandomSource) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{
		config:  config,
		rng:     rng,
		history: []MoveHistoryEntry{},
		current: []MoveHistoryEntry{},
	}
	if err := e.newBoard(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates a new game engine with the built-in beginner board
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultGameConfig())
	if err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return e
}

func (e *GameEngine) source() RandomSource {
	if e.rng != nil {
		return e.rng
	}
	if e.config.Seed != nil {
		return NewSeededSource(*e.config.Seed)
	}
	return DefaultSource
}

func (e *GameEngine) newBoard() error {
	board, err := NewBoard(e.config.Width, e.config.Height, e.config.MineCount, e.source())
	if err != nil {
		return err
	}
	e.board = board
	e.message = msgReady
	return nil
}

// GetBoard returns the underlying board
func (e *GameEngine) GetBoard() *Board {
	return e.board
}

// GetState returns a serializable snapshot of the current game
func (e *GameEngine) GetState() *GameState {
	history := make([]MoveHistoryEntry, len(e.history))
	copy(history, e.history)
	current := make([]MoveHistoryEntry, len(e.current))
	copy(current, e.current)

	return &GameState{
		Width:             e.board.Width(),
		Height:            e.board.Height(),
		MineCount:         e.board.MineCount(),
		State:             e.board.State(),
		Tiles:             e.board.Tiles(),
		MarkedCount:       e.board.MarkedCount(),
		RevealedCount:     e.board.RevealedCount(),
		RemainingMines:    e.RemainingMines(),
		Message:           e.message,
		ConfigName:        e.config.Name,
		MoveHistory:       history,
		TotalMoves:        e.totalMoves,
		CurrentMoves:      current,
		CurrentMovesCount: len(current),
	}
}

// SetState restores a persisted snapshot. The tile layout is checked for
// consistency before it replaces the current board.
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if len(state.Tiles) != state.Width*state.Height {
		return fmt.Errorf("restore state: expected %d tiles for a %dx%d board, got %d",
			state.Width*state.Height, state.Width, state.Height, len(state.Tiles))
	}
	for i, t := range state.Tiles {
		if t.Index != i || t.X != i%state.Width || t.Y != i/state.Width {
			return fmt.Errorf("restore state: tile %d has coordinates (%d, %d) and index %d", i, t.X, t.Y, t.Index)
		}
	}
	if mines := CountMines(state.Tiles); mines != state.MineCount {
		return fmt.Errorf("restore state: mine_count is %d but %d tiles are mines", state.MineCount, mines)
	}

	board, err := RestoreBoard(state.Width, state.Height, state.Tiles, state.State)
	if err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	for i, t := range board.tiles {
		if t.AdjacentMines != state.Tiles[i].AdjacentMines {
			return fmt.Errorf("restore state: tile (%d, %d) adjacency is %d, expected %d",
				t.X, t.Y, state.Tiles[i].AdjacentMines, t.AdjacentMines)
		}
	}

	e.board = board
	e.message = state.Message
	e.history = append([]MoveHistoryEntry{}, state.MoveHistory...)
	e.current = append([]MoveHistoryEntry{}, state.CurrentMoves...)
	e.totalMoves = state.TotalMoves
	return nil
}

// Reset builds a fresh board from the config
func (e *GameEngine) Reset() *GameState {
	if err := e.newBoard(); err != nil {
		// the config was validated when the engine was built
		panic(fmt.Sprintf("reset: %v", err))
	}
	// Preserve cumulative history and totals; clear only the current segment
	e.current = []MoveHistoryEntry{}
	return e.GetState()
}

// Start moves the board from Initialized to Playing
func (e *GameEngine) Start() error {
	err := e.board.Start()
	if err != nil {
		e.message = msgBadStart
		if e.board.State().IsTerminal() {
			e.message = msgGameOver
		}
	} else {
		e.message = msgStarted
	}
	e.record(ActionStart, 0, 0, err == nil, 0)
	return err
}

// Reveal uncovers (x, y) and records the move
func (e *GameEngine) Reveal(x, y int) (*RevealResult, error) {
	result, err := e.board.Reveal(x, y)
	if err != nil {
		e.setErrorMessage(x, y, err)
		e.record(ActionReveal, x, y, false, 0)
		return nil, err
	}

	switch {
	case result.HitMine:
		e.message = fmt.Sprintf(msgHitMine, x, y)
	case result.State == Won:
		e.message = msgVictory
	default:
		e.message = fmt.Sprintf(msgRevealed, len(result.Revealed))
	}
	e.record(ActionReveal, x, y, true, len(result.Revealed))
	return result, nil
}

// Mark toggles the mark on (x, y) and records the move
func (e *GameEngine) Mark(x, y int) (bool, error) {
	changed, err := e.board.Mark(x, y)
	if err != nil {
		e.setErrorMessage(x, y, err)
		e.record(ActionMark, x, y, false, 0)
		return false, err
	}

	if !changed {
		e.message = fmt.Sprintf(msgNoop, x, y)
	} else if tile, _ := e.board.TileAt(x, y); tile.Marked {
		e.message = fmt.Sprintf(msgMarked, x, y, e.RemainingMines())
	} else {
		e.message = fmt.Sprintf(msgUnmarked, x, y, e.RemainingMines())
	}
	e.record(ActionMark, x, y, changed, 0)
	return changed, nil
}

func (e *GameEngine) setErrorMessage(x, y int, err error) {
	if errors.Is(err, ErrGameOver) {
		e.message = msgGameOver
		return
	}
	e.message = fmt.Sprintf(msgOutOfGrid, x, y, e.board.Width(), e.board.Height())
}

func (e *GameEngine) record(action string, x, y int, success bool, revealed int) {
	e.totalMoves++
	entry := MoveHistoryEntry{
		Action:     action,
		X:          x,
		Y:          y,
		Success:    success,
		Revealed:   revealed,
		State:      e.board.State(),
		Timestamp:  time.Now().Unix(),
		MoveNumber: e.totalMoves,
	}
	e.history = append(e.history, entry)
	e.current = append(e.current, entry)
}

// IsGameOver reports whether the board is Won or Dead
func (e *GameEngine) IsGameOver() bool {
	return e.board.State().IsTerminal()
}

// IsVictory reports whether the board is Won
func (e *GameEngine) IsVictory() bool {
	return e.board.State() == Won
}

// RemainingMines returns mines minus marks; it goes negative when over-marked
func (e *GameEngine) RemainingMines() int {
	return e.board.MineCount() - e.board.MarkedCount()
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and resets the game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	prev := e.config
	e.config = config
	if err := e.newBoard(); err != nil {
		e.config = prev
		return err
	}
	e.current = []MoveHistoryEntry{}
	return nil
}

// GetMoveHistory returns a copy of the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return append([]MoveHistoryEntry{}, e.history...)
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.history) == 0 {
		return nil
	}
	last := e.history[len(e.history)-1]
	return &last
}
