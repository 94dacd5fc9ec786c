// Package filter provides the event filter input component for the TUI.
package filter

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/teatrofeed/teatrofeed/internal/adapters/driving/tui/styles"
)

// Input wraps a bubbles textinput with filter-specific styling.
type Input struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// New creates a new filter input component.
func New(s *styles.Styles) *Input {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "title, venue or town..."
	ti.CharLimit = 128
	ti.Width = 40

	return &Input{
		textinput: ti,
		styles:    s,
		width:     40,
	}
}

// Init initialises the filter input.
func (i *Input) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (i *Input) Update(msg tea.Msg) (*Input, tea.Cmd) {
	var cmd tea.Cmd
	i.textinput, cmd = i.textinput.Update(msg)
	return i, cmd
}

// View renders the filter input.
func (i *Input) View() string {
	label := i.styles.Subtitle.Render("Filter: ")
	input := i.styles.InputField.Render(i.textinput.View())
	return lipgloss.JoinHorizontal(lipgloss.Center, label, input)
}

// Value returns the current filter text.
func (i *Input) Value() string {
	return i.textinput.Value()
}

// SetValue sets the filter text.
func (i *Input) SetValue(value string) {
	i.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (i *Input) Focus() tea.Cmd {
	return i.textinput.Focus()
}

// Blur removes focus from the input.
func (i *Input) Blur() {
	i.textinput.Blur()
}

// Focused returns whether the input is focused.
func (i *Input) Focused() bool {
	return i.textinput.Focused()
}

// SetWidth sets the width of the input.
func (i *Input) SetWidth(width int) {
	i.width = width
	inputWidth := width - 12
	if inputWidth < 20 {
		inputWidth = 20
	}
	i.textinput.Width = inputWidth
}

// Width returns the current width.
func (i *Input) Width() int {
	return i.width
}

// Reset clears the filter.
func (i *Input) Reset() {
	i.textinput.Reset()
}
