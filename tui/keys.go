package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the bindings the board view reacts to
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Reveal key.Binding
	Mark   key.Binding
	Start  key.Binding
	Reset  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// Keys is the default key map
var Keys = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "right"),
	),
	Reveal: key.NewBinding(
		key.WithKeys(" ", "enter"),
		key.WithHelp("space/enter", "reveal"),
	),
	Mark: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "mark"),
	),
	Start: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "start"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "new board"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "quit"),
	),
}

func (k KeyMap) bindings() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Reveal, k.Mark, k.Start, k.Reset, k.Help, k.Quit}
}
