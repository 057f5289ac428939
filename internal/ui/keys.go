package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the monitor bindings. Row navigation is left to the
// bubbles table key map.
type keyMap struct {
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Refresh    key.Binding
	StopTask   key.Binding
	StartTask  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload snapshot"),
		),
		StopTask: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Stop selected task"),
		),
		StartTask: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Start selected task"),
		),
	}
}

func (k keyMap) helpBindings() []key.Binding {
	return []key.Binding{k.StopTask, k.StartTask, k.Refresh, k.CycleTheme, k.Help, k.Quit}
}
