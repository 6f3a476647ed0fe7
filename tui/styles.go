package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF4500"))

	boardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5F87AF")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8A8A8"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))

	wonStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FF00"))

	deadStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF0000"))

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.Color("#FFD700")).
			Foreground(lipgloss.Color("#000000"))

	hiddenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C"))
	markStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF8700"))
	mineStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000"))
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3A3A3A"))

	// indexed by adjacent mine count
	numberStyles = [9]lipgloss.Style{
		emptyStyle,
		lipgloss.NewStyle().Foreground(lipgloss.Color("#5F87FF")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAF5F")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#5F00AF")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#AF5F00")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#00AFAF")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#D0D0D0")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#808080")),
	}
)
