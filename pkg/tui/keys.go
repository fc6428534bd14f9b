package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keybindings for the browser
type KeyMap struct {
	Submit      key.Binding
	Refresh     key.Binding
	Focus       key.Binding
	Up          key.Binding
	Down        key.Binding
	Toggle      key.Binding
	CollapseAll key.Binding
	Theme       key.Binding
	Quit        key.Binding
	ForceQuit   key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "parse"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refresh"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "switch focus"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "space", "enter"),
			key.WithHelp("space", "expand/collapse"),
		),
		CollapseAll: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "collapse all"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle theme"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

func (k KeyMap) inputHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Refresh, k.Focus, k.ForceQuit}
}

func (k KeyMap) treeHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.CollapseAll, k.Theme, k.Refresh, k.Focus, k.Quit}
}
