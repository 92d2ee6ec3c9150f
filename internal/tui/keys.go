package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines key bindings used across the TUI.
type KeyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Quit     key.Binding
	Refresh  key.Binding

	// Chat preference toggle
	TogglePreference key.Binding

	// Whale list threshold cycle
	CycleThreshold key.Binding
}

// DefaultKeyMap provides the default key bindings for the TUI.
var DefaultKeyMap = KeyMap{
	Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
	ShiftTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Refresh:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),

	TogglePreference: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "toggle channel preference")),

	CycleThreshold: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "cycle threshold")),
}
