package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/wricardo/mcp-training/minesweeper/game/engine"
)

// Model is a bubbletea model playing a single board in the terminal
type Model struct {
	engine   *engine.GameEngine
	title    string
	keys     KeyMap
	cursorX  int
	cursorY  int
	width    int
	height   int
	status   string
	err      error
	showHelp bool
}

// NewModel wraps eng; title is shown above the board
func NewModel(eng *engine.GameEngine, title string) Model {
	return Model{
		engine: eng,
		title:  title,
		keys:   Keys,
		status: eng.GetState().Message,
	}
}

// Run plays eng in the alternate screen until the user quits
func Run(eng *engine.GameEngine, title string) error {
	_, err := tea.NewProgram(NewModel(eng, title), tea.WithAltScreen()).Run()
	return err
}

// Cursor returns the highlighted tile
func (m Model) Cursor() (int, int) {
	return m.cursorX, m.cursorY
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		board := m.engine.GetBoard()
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up):
			m.cursorY = (m.cursorY - 1 + board.Height()) % board.Height()
		case key.Matches(msg, m.keys.Down):
			m.cursorY = (m.cursorY + 1) % board.Height()
		case key.Matches(msg, m.keys.Left):
			m.cursorX = (m.cursorX - 1 + board.Width()) % board.Width()
		case key.Matches(msg, m.keys.Right):
			m.cursorX = (m.cursorX + 1) % board.Width()

		case key.Matches(msg, m.keys.Start):
			m.apply(m.engine.Start())
		case key.Matches(msg, m.keys.Reveal):
			_, err := m.engine.Reveal(m.cursorX, m.cursorY)
			m.apply(err)
		case key.Matches(msg, m.keys.Mark):
			_, err := m.engine.Mark(m.cursorX, m.cursorY)
			m.apply(err)
		case key.Matches(msg, m.keys.Reset):
			m.engine.Reset()
			m.apply(nil)

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
		}
	}
	return m, nil
}

// apply records the outcome of a command for the status line
func (m *Model) apply(err error) {
	m.err = err
	m.status = m.engine.GetState().Message
}

func (m Model) View() string {
	state := m.engine.GetState()

	sections := []string{
		titleStyle.Render(m.title),
		boardStyle.Render(m.renderBoard(state)),
		infoStyle.Render(fmt.Sprintf("Mines: %d  Marked: %d  Remaining: %d  Revealed: %d/%d",
			state.MineCount, state.MarkedCount, state.RemainingMines,
			state.RevealedCount, state.Width*state.Height-state.MineCount)),
		m.renderStatus(state),
	}
	if m.showHelp {
		sections = append(sections, m.renderHelp())
	} else {
		sections = append(sections, infoStyle.Render("? help • q quit"))
	}

	view := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, view)
	}
	return view
}

func (m Model) renderBoard(state *engine.GameState) string {
	// mines are only drawn once the game is over
	revealAll := state.State.IsTerminal()

	var b strings.Builder
	for y := 0; y < state.Height; y++ {
		for x := 0; x < state.Width; x++ {
			tile := state.Tiles[y*state.Width+x]
			ch := string(engine.TileChar(tile, revealAll && tile.Mine))
			cell := tileStyle(tile, revealAll).Render(ch)
			if x == m.cursorX && y == m.cursorY {
				cell = cursorStyle.Render(ch)
			}
			b.WriteString(cell)
		}
		if y < state.Height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func tileStyle(tile engine.Tile, revealAll bool) lipgloss.Style {
	switch {
	case tile.Mine && (tile.Revealed || revealAll):
		return mineStyle
	case tile.Revealed:
		return numberStyles[tile.AdjacentMines]
	case tile.Marked:
		return markStyle
	default:
		return hiddenStyle
	}
}

func (m Model) renderStatus(state *engine.GameState) string {
	switch {
	case state.State == engine.Won:
		return wonStyle.Render("You win! " + m.status + " (r for a new board)")
	case state.State == engine.Dead:
		return deadStyle.Render("Boom. " + m.status + " (r for a new board)")
	case m.err != nil && !errors.Is(m.err, engine.ErrGameOver):
		return errorStyle.Render(m.status)
	default:
		return m.status
	}
}

func (m Model) renderHelp() string {
	var lines []string
	for _, b := range m.keys.bindings() {
		h := b.Help()
		lines = append(lines, fmt.Sprintf("%-12s %s", h.Key, h.Desc))
	}
	return infoStyle.Render(strings.Join(lines, "\n"))
}
