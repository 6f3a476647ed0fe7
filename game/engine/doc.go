// Package engine provides the core rules for the Minesweeper game.
//
// The engine package implements the game mechanics including:
//   - Board construction with validated dimensions and mine count
//   - Mine placement through an injected RandomSource
//   - Adjacent mine counting over Chebyshev-1 neighbours
//   - Reveal propagation (flood fill) with the satisfied-marks chord rule
//   - Marking, win and loss detection
//
// Core Types:
//
// Board owns the tile grid and its lifecycle state. It is single-threaded:
// callers sharing a board across goroutines must serialize access.
// GameEngine wraps a Board with its GameConfig and a move history, and
// produces serializable GameState snapshots for persistence and transport.
//
// Usage:
//
//	board, err := engine.NewBoard(9, 9, 10, engine.NewSeededSource(42))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := board.Start(); err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := board.Reveal(4, 4)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.State, len(result.Revealed))
//
// Game Rules:
//
// Revealing a mine ends the game (Dead). Revealing a tile with no adjacent
// mines floods outward through other zero tiles and uncovers the ring of
// numbered tiles bordering them. A numbered tile also expands once the
// player has marked exactly as many neighbours as it has adjacent mines.
// The game is won once every tile that is not a mine has been revealed.
package engine
