// Package tui plays a board in the terminal with bubbletea.
//
// The model drives an engine.GameEngine directly; nothing goes through the
// service layer. Arrow keys or hjkl move the cursor, space or enter reveals,
// f toggles a mark, s starts, r deals a new board and q quits.
package tui
