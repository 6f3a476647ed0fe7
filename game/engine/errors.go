package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfiguration = errors.New("invalid board configuration")
	ErrOutOfBounds          = errors.New("position out of bounds")
	ErrGameOver             = errors.New("game is over")
	ErrInvalidTransition    = errors.New("invalid state transition")
)

// InvalidConfigError reports board parameters that cannot produce a playable board
type InvalidConfigError struct {
	Width     int
	Height    int
	MineCount int
}

func (e *InvalidConfigError) Error() string {
	switch {
	case e.Width <= 0:
		return fmt.Sprintf("cannot create a board with width %d", e.Width)
	case e.Height <= 0:
		return fmt.Sprintf("cannot create a board with height %d", e.Height)
	case e.MineCount < 0:
		return fmt.Sprintf("cannot create a board with a negative mine count: %d", e.MineCount)
	case e.MineCount >= e.Width*e.Height:
		return fmt.Sprintf("not enough space for %d mines on a %dx%d board (need at least one safe tile)",
			e.MineCount, e.Width, e.Height)
	default:
		return "cannot create board: unknown error"
	}
}

func (e *InvalidConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}

// OutOfBoundsError reports a coordinate or index lookup outside the grid
type OutOfBoundsError struct {
	X       int
	Y       int
	Index   int
	ByIndex bool
	Width   int
	Height  int
}

func (e *OutOfBoundsError) Error() string {
	if e.ByIndex {
		return fmt.Sprintf("index %d out of range - board (%d, %d)", e.Index, e.Width, e.Height)
	}
	return fmt.Sprintf("position out of range - (%d, %d) - board (%d, %d)", e.X, e.Y, e.Width, e.Height)
}

func (e *OutOfBoundsError) Unwrap() error {
	return ErrOutOfBounds
}
