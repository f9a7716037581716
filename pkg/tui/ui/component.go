package ui

import tea "github.com/charmbracelet/bubbletea/v2"

// Component is one screen the app shell can route to.
type Component interface {
	Init() tea.Cmd
	Update(tea.Msg) (Component, tea.Cmd)
	View() string
	SetSize(width, height int)
	// Help is the key hint line shown under the view.
	Help() string
	// Capturing reports whether the view is taking text input, in which case
	// the shell must not act on single-letter shortcuts.
	Capturing() bool
}
