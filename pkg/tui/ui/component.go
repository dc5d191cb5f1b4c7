// Package ui holds the contracts shared by the terminal UI widgets.
package ui

import tea "github.com/charmbracelet/bubbletea/v2"

// Component defines the contract for reusable Bubble Tea widgets.
type Component interface {
	Init() tea.Cmd
	Update(tea.Msg) (Component, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// Hit maps terminal coordinates relative to a component's origin onto the
// index of the item drawn there.
type Hit interface {
	IndexAt(x, y int) (int, bool)
}
