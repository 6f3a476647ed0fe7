// Command autoplay plays Minesweeper against a running game server through
// the REST API. Each game creates a session, starts it and lets the solver
// reveal and mark tiles until the board is won or lost, then prints a
// win rate summary.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/minesweeper/game/engine"
	"github.com/wricardo/mcp-training/minesweeper/logger"
)

// GameResult summarizes one finished game
type GameResult struct {
	SessionID string
	State     engine.State
	Moves     int
	Guesses   int
	Revealed  int
}

// playGame plays a fresh session to the end or until maxMoves
func playGame(ctx context.Context, client *Client, solver *Solver, configID string, maxMoves int, delay time.Duration) (*GameResult, error) {
	if _, err := client.CreateSession(ctx, configID); err != nil {
		return nil, err
	}
	state, err := client.Start(ctx)
	if err != nil {
		return nil, err
	}

	result := &GameResult{SessionID: client.SessionID()}
	for !state.State.IsTerminal() && result.Moves < maxMoves {
		move := solver.NextMove(state)
		if move == nil {
			break
		}

		var next *engine.GameState
		if move.Action == engine.ActionMark {
			next, err = client.Mark(ctx, move.X, move.Y)
		} else {
			next, err = client.Reveal(ctx, move.X, move.Y)
		}
		if err != nil {
			return result, fmt.Errorf("move %d %s (%d,%d): %w", result.Moves+1, move.Action, move.X, move.Y, err)
		}

		result.Moves++
		if move.Guess {
			result.Guesses++
		}
		logger.Debug("Move played",
			"session_id", result.SessionID,
			"action", move.Action, "x", move.X, "y", move.Y,
			"guess", move.Guess, "state", next.State)

		state = next
		if delay > 0 {
			time.Sleep(delay)
		}
	}

	result.State = state.State
	result.Revealed = state.RevealedCount
	return result, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	logger.Init(cmd.String("log-level"), false)

	client := NewClient(cmd.String("url"))
	solver := NewSolver(uint64(cmd.Int("seed")))
	games := int(cmd.Int("games"))
	delay := time.Duration(cmd.Int("delay")) * time.Millisecond

	logger.Info("Connecting to game server", "url", cmd.String("url"), "config", cmd.String("config"), "games", games)

	wins := 0
	for i := 1; i <= games; i++ {
		result, err := playGame(ctx, client, solver, cmd.String("config"), int(cmd.Int("max-moves")), delay)
		if err != nil {
			return fmt.Errorf("game %d: %w", i, err)
		}
		if result.State == engine.Won {
			wins++
		}
		logger.Info("Game finished",
			"game", i,
			"session_id", result.SessionID,
			"state", result.State,
			"moves", result.Moves,
			"guesses", result.Guesses,
			"revealed", result.Revealed)

		if !cmd.Bool("keep") {
			if err := client.Delete(ctx); err != nil {
				logger.Warn("Failed to delete session", "session_id", result.SessionID, "error", err)
			}
		}
	}

	fmt.Printf("Won %d/%d games (%.1f%%)\n", wins, games, 100*float64(wins)/float64(games))
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "Play Minesweeper games against a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "config", Usage: "Board preset id (server default when empty)"},
			&cli.IntFlag{Name: "games", Value: 10, Usage: "Number of games to play"},
			&cli.IntFlag{Name: "max-moves", Value: 5000, Usage: "Maximum moves per game"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "Seed for guesses"},
			&cli.IntFlag{Name: "delay", Usage: "Delay between moves in milliseconds"},
			&cli.BoolFlag{Name: "keep", Usage: "Keep finished sessions on the server"},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "Log level"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Fatal("Autoplay failed", "error", err)
	}
}
