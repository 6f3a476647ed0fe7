package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/mcp-training/minesweeper/game/engine"
	"github.com/wricardo/mcp-training/minesweeper/game/service"
)

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "State: %s | Board: %dx%d | Mines: %d | Marked: %d | Remaining: %d | Revealed: %d/%d | Moves: %d\n\n",
		state.State, state.Width, state.Height, state.MineCount,
		state.MarkedCount, state.RemainingMines,
		state.RevealedCount, state.Width*state.Height-state.MineCount,
		state.TotalMoves)

	b.WriteString(engine.RenderBoard(state, false))

	switch state.State {
	case engine.Won:
		b.WriteString("\n🎉 VICTORY!")
	case engine.Dead:
		b.WriteString("\n💀 GAME OVER")
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}
	return b.String()
}

func formatEvents(b *strings.Builder, events []service.GameEvent) {
	for _, e := range events {
		fmt.Fprintf(b, "  [%s] %s\n", e.Type, e.Message)
	}
}

func formatActionResult(result *service.ActionResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Action successful\n")
	} else {
		b.WriteString("✗ Action failed\n")
	}

	formatEvents(&b, result.Events)
	if n := len(result.Revealed); n > 0 {
		fmt.Fprintf(&b, "Revealed %d tile(s)\n", n)
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkResult(result *service.BulkActionResult) string {
	var b strings.Builder

	requested := result.RequestedActions
	fmt.Fprintf(&b, "Executed %d/%d action(s), revealed %d tile(s)\n",
		result.ActionsExecuted, requested, result.RevealedTotal)
	if result.Truncated {
		fmt.Fprintf(&b, "Request truncated to %d actions\n", result.Limit)
	}
	if result.StopReasonCode != "" {
		fmt.Fprintf(&b, "Stopped: %s", result.StopReasonCode)
		if result.StoppedOnAction > 0 {
			fmt.Fprintf(&b, " at action %d", result.StoppedOnAction)
		}
		if result.StoppedReason != "" {
			fmt.Fprintf(&b, " (%s)", result.StoppedReason)
		}
		b.WriteString("\n")
	}

	for _, s := range result.Steps {
		status := "✓"
		if !s.Success {
			status = "✗"
		}
		line := fmt.Sprintf("%d. %s", s.Idx, s.Action)
		if s.Action != engine.ActionStart {
			line += fmt.Sprintf(" (%d,%d)", s.X, s.Y)
		}
		fmt.Fprintf(&b, "%s %s", line, status)
		if s.Revealed > 0 {
			fmt.Fprintf(&b, " +%d", s.Revealed)
		}
		if s.Error != "" {
			fmt.Fprintf(&b, " %s", s.Error)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d), total commands: %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		status := "✓"
		if !move.Success {
			status = "✗"
		}
		fmt.Fprintf(&b, "%d. %s", move.MoveNumber, move.Action)
		if move.Action != engine.ActionStart {
			fmt.Fprintf(&b, " (%d,%d)", move.X, move.Y)
		}
		fmt.Fprintf(&b, " %s [state: %s", status, move.State)
		if move.Revealed > 0 {
			fmt.Fprintf(&b, ", revealed: %d", move.Revealed)
		}
		b.WriteString("]\n")
	}
	return b.String()
}

// describeTile explains one tile of a redacted state and its neighbourhood
func describeTile(state *engine.GameState, x, y int) (string, error) {
	tile, ok := state.TileAt(x, y)
	if !ok {
		return "", fmt.Errorf("coordinates (%d, %d) are out of bounds, board is %dx%d (x 0-%d, y 0-%d)",
			x, y, state.Width, state.Height, state.Width-1, state.Height-1)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tile (%d, %d): '%c'\n", x, y, engine.TileChar(tile, false))

	switch {
	case tile.Revealed && tile.Mine:
		b.WriteString("Revealed mine\n")
	case tile.Revealed:
		fmt.Fprintf(&b, "Revealed, %d neighbouring mine(s)\n", tile.AdjacentMines)
	case tile.Marked:
		b.WriteString("Hidden, marked as a mine\n")
	default:
		b.WriteString("Hidden\n")
	}

	hidden, marked := 0, 0
	var neighbours []string
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			n, ok := state.TileAt(x+dx, y+dy)
			if !ok {
				continue
			}
			if !n.Revealed {
				hidden++
				if n.Marked {
					marked++
				}
			}
			neighbours = append(neighbours, fmt.Sprintf("(%d,%d)=%c", x+dx, y+dy, engine.TileChar(n, false)))
		}
	}
	fmt.Fprintf(&b, "Neighbours: %d, hidden: %d, marked: %d\n", len(neighbours), hidden, marked)
	b.WriteString(strings.Join(neighbours, " "))
	b.WriteString("\n")

	if tile.Revealed && !tile.Mine && tile.AdjacentMines > 0 {
		switch {
		case marked == tile.AdjacentMines && hidden > marked:
			b.WriteString("Marks satisfy this number: revealing it again opens the other hidden neighbours\n")
		case hidden == tile.AdjacentMines && hidden > marked:
			b.WriteString("Every hidden neighbour is a mine\n")
		}
	}
	return b.String(), nil
}
