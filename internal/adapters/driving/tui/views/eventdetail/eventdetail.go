// Package eventdetail provides the single-event detail view for the TUI.
package eventdetail

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/teatrofeed/teatrofeed/internal/adapters/driving/tui/messages"
	"github.com/teatrofeed/teatrofeed/internal/adapters/driving/tui/styles"
	"github.com/teatrofeed/teatrofeed/internal/core/domain"
)

// View is the event detail view.
type View struct {
	styles *styles.Styles

	event        *domain.CanonicalEvent
	scrollOffset int
	width        int
	height       int
	ready        bool
}

// NewView creates a new event detail view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
	}
}

// SetEvent sets the event to display.
func (v *View) SetEvent(event domain.CanonicalEvent) {
	v.event = &event
	v.scrollOffset = 0
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the event detail view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "esc", "q":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewEvents}
		}
	}

	return v, nil
}

// visibleLines returns the number of lines that can be displayed.
func (v *View) visibleLines() int {
	// Reserve lines for the title, separator and help footer.
	reserved := 7
	available := v.height - reserved
	if available < 1 {
		available = 1
	}
	return available
}

// maxScrollOffset returns the maximum scroll offset.
func (v *View) maxScrollOffset() int {
	lines := v.buildContent()
	maxOffset := len(lines) - v.visibleLines()
	if maxOffset < 0 {
		maxOffset = 0
	}
	return maxOffset
}

// buildContent builds the content lines for display.
func (v *View) buildContent() []string {
	if v.event == nil {
		return nil
	}
	ev := v.event

	when := ev.Date
	if ev.Time != nil {
		when += " at " + *ev.Time
	}

	lines := []string{
		v.formatField("When", when),
		v.formatField("Venue", ev.Venue),
	}
	if ev.Location != "" {
		lines = append(lines, v.formatField("Town", ev.Location))
	}
	if ev.IsPast {
		lines = append(lines, v.formatField("Status", "already happened"))
	}

	if ev.Description != nil && *ev.Description != "" {
		lines = append(lines, "", "Description:")
		lines = append(lines, v.wrap(*ev.Description)...)
	}

	if ev.ImageURL != nil && *ev.ImageURL != "" {
		lines = append(lines, "", v.formatField("Image", *ev.ImageURL))
	}

	if len(ev.SourceNames) > 0 {
		lines = append(lines, "", "Listed by:")
		for _, name := range ev.SourceNames {
			lines = append(lines, "  "+name)
		}
	}
	if len(ev.SourceURLs) > 0 {
		lines = append(lines, "", "Links:")
		for _, u := range ev.SourceURLs {
			lines = append(lines, "  "+u)
		}
	}

	return lines
}

// wrap breaks free text into indented lines that fit the view.
func (v *View) wrap(text string) []string {
	width := v.width - 6
	if width < 20 {
		width = 20
	}
	wrapped := lipgloss.NewStyle().Width(width).Render(text)
	lines := strings.Split(wrapped, "\n")
	for i := range lines {
		lines[i] = "  " + lines[i]
	}
	return lines
}

// formatField formats a field for display.
func (v *View) formatField(label, value string) string {
	return fmt.Sprintf("%-8s %s", label+":", value)
}

// View renders the event detail view.
func (v *View) View() string {
	var b strings.Builder

	title := "Event"
	if v.event != nil {
		title = v.event.Title
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 1), 60)))
	b.WriteString("\n\n")

	if v.event == nil {
		b.WriteString(v.styles.Muted.Render("No event selected"))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	lines := v.buildContent()
	visibleLines := v.visibleLines()
	for i := v.scrollOffset; i < len(lines) && i < v.scrollOffset+visibleLines; i++ {
		b.WriteString(v.renderLine(lines[i]))
		b.WriteString("\n")
	}

	if len(lines) > visibleLines {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [Line %d-%d of %d]",
			v.scrollOffset+1,
			min(v.scrollOffset+visibleLines, len(lines)),
			len(lines))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderLine styles one content line by its shape.
func (v *View) renderLine(line string) string {
	switch {
	case strings.HasPrefix(line, "  "):
		return v.styles.Muted.Render(line)
	case strings.HasSuffix(line, ":"):
		return v.styles.Subtitle.Render(line)
	case strings.Contains(line, ": "):
		parts := strings.SplitN(line, ": ", 2)
		return v.styles.Subtitle.Render(parts[0]+":") + " " + v.styles.Normal.Render(parts[1])
	default:
		return v.styles.Normal.Render(line)
	}
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] scroll  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Event returns the event being displayed.
func (v *View) Event() *domain.CanonicalEvent {
	return v.event
}
