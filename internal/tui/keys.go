package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Playback
	Next key.Binding
	Prev key.Binding

	// Display
	ToggleAnsi  key.Binding
	ToggleCover key.Binding
	Refresh     key.Binding

	// Actions
	Quit   key.Binding
	Help   key.Binding
	Escape key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Playback
		Next: key.NewBinding(
			key.WithKeys("n", "right"),
			key.WithHelp("n/→", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("p", "left"),
			key.WithHelp("p/←", "previous"),
		),

		// Display
		ToggleAnsi: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "ansi art"),
		),
		ToggleCover: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cover"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "redraw"),
		),

		// Actions
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev},
		{k.ToggleAnsi, k.ToggleCover, k.Refresh},
		{k.Help, k.Escape, k.Quit},
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()
