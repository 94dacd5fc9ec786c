// Package events provides the event list view component for the TUI.
package events

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/teatrofeed/teatrofeed/internal/adapters/driving/tui/components/filter"
	"github.com/teatrofeed/teatrofeed/internal/adapters/driving/tui/keymap"
	"github.com/teatrofeed/teatrofeed/internal/adapters/driving/tui/messages"
	"github.com/teatrofeed/teatrofeed/internal/adapters/driving/tui/styles"
	"github.com/teatrofeed/teatrofeed/internal/core/domain"
)

// View is the event list view. It shows the feed in its published
// order with an optional text filter and a past-events toggle.
type View struct {
	styles *styles.Styles
	keys   *keymap.KeyMap
	filter *filter.Input

	events      []domain.CanonicalEvent
	visible     []domain.CanonicalEvent
	lastUpdated string

	showPast  bool
	filtering bool

	selected     int
	scrollOffset int
	width        int
	height       int
	ready        bool
	loading      bool
	err          error
}

// NewView creates a new event list view.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:  s,
		keys:    km,
		filter:  filter.New(s),
		loading: true,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the event list view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.filter.SetWidth(msg.Width)
		v.ready = true
		return v, nil

	case tea.KeyMsg:
		if v.filtering {
			return v.handleFilterKeyMsg(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.FeedLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.events = msg.Doc.Events
		v.lastUpdated = msg.Doc.LastUpdated
		v.recompute()
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses in list mode.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keys.Up):
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}

	case keymap.Matches(keyStr, v.keys.Down):
		if v.selected < len(v.visible)-1 {
			v.selected++
			v.adjustScroll()
		}

	case keymap.Matches(keyStr, v.keys.Select):
		if v.selected < len(v.visible) {
			ev := v.visible[v.selected]
			return v, func() tea.Msg {
				return messages.EventSelected{Event: ev}
			}
		}

	case keymap.Matches(keyStr, v.keys.TogglePast):
		v.showPast = !v.showPast
		v.recompute()

	case keymap.Matches(keyStr, v.keys.Filter):
		v.filtering = true
		return v, v.filter.Focus()

	case keymap.Matches(keyStr, v.keys.Reload):
		v.loading = true
		return v, func() tea.Msg {
			return messages.ReloadRequested{}
		}

	case keymap.Matches(keyStr, v.keys.Back):
		if v.filter.Value() != "" {
			v.filter.Reset()
			v.recompute()
		}

	case keymap.Matches(keyStr, v.keys.Help):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewHelp}
		}

	case keymap.Matches(keyStr, v.keys.Quit):
		return v, func() tea.Msg {
			return messages.Quit{}
		}
	}

	return v, nil
}

// handleFilterKeyMsg handles key presses while the filter input has focus.
func (v *View) handleFilterKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "enter":
		v.filtering = false
		v.filter.Blur()
		return v, nil

	case "esc":
		v.filtering = false
		v.filter.Reset()
		v.filter.Blur()
		v.recompute()
		return v, nil

	default:
		var cmd tea.Cmd
		v.filter, cmd = v.filter.Update(msg)
		v.recompute()
		return v, cmd
	}
}

// recompute rebuilds the visible slice from the feed, the past toggle
// and the filter text, then clamps the selection.
func (v *View) recompute() {
	query := domain.Normalise(v.filter.Value())

	v.visible = v.visible[:0]
	for _, ev := range v.events {
		if ev.IsPast && !v.showPast {
			continue
		}
		if query != "" && !matches(ev, query) {
			continue
		}
		v.visible = append(v.visible, ev)
	}

	if v.selected >= len(v.visible) {
		v.selected = len(v.visible) - 1
	}
	if v.selected < 0 {
		v.selected = 0
	}
	v.adjustScroll()
}

// matches reports whether the normalised query occurs in the event's
// title, venue or location.
func matches(ev domain.CanonicalEvent, query string) bool {
	return strings.Contains(domain.Normalise(ev.Title), query) ||
		strings.Contains(domain.Normalise(ev.Venue), query) ||
		strings.Contains(domain.Normalise(ev.Location), query)
}

// adjustScroll keeps the selected item inside the visible window.
func (v *View) adjustScroll() {
	visibleItems := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visibleItems {
		v.scrollOffset = v.selected - visibleItems + 1
	}
}

// visibleItemCount returns the number of list rows that fit on screen.
func (v *View) visibleItemCount() int {
	// Reserve lines for the title, the scroll indicator and the
	// app-level status bar.
	reserved := 6
	if v.filtering {
		reserved += 4
	}
	available := v.height - reserved
	if available < 1 {
		available = 1
	}
	return available
}

// View renders the event list.
func (v *View) View() string {
	var b strings.Builder

	title := "Upcoming events"
	if v.showPast {
		title = "All events"
	}
	if q := v.filter.Value(); q != "" {
		title += fmt.Sprintf(" matching %q", q)
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")

	if v.filtering {
		b.WriteString(v.filter.View())
		b.WriteString("\n\n")
	}

	if v.loading {
		b.WriteString(v.styles.Muted.Render("Loading feed..."))
		return b.String()
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		if errors.Is(v.err, domain.ErrFeedNotFound) {
			b.WriteString("\n\n")
			b.WriteString(v.styles.Muted.Render("Run 'teatrofeed run' to build the feed first."))
		}
		return b.String()
	}

	if len(v.visible) == 0 {
		b.WriteString(v.styles.Muted.Render(v.emptyMessage()))
		return b.String()
	}

	visibleItems := v.visibleItemCount()
	for i := v.scrollOffset; i < len(v.visible) && i < v.scrollOffset+visibleItems; i++ {
		b.WriteString(v.renderEvent(i, &v.visible[i]))
		b.WriteString("\n")
	}

	if len(v.visible) > visibleItems {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
			v.scrollOffset+1,
			min(v.scrollOffset+visibleItems, len(v.visible)),
			len(v.visible))))
	}

	return b.String()
}

func (v *View) emptyMessage() string {
	if v.filter.Value() != "" {
		return "No events match the filter."
	}
	if !v.showPast && len(v.events) > 0 {
		return "No upcoming events. Press p to include past ones."
	}
	return "The feed is empty."
}

// renderEvent renders a single event line.
func (v *View) renderEvent(index int, ev *domain.CanonicalEvent) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	timeStr := "     "
	if ev.Time != nil {
		timeStr = *ev.Time
	}

	titleWidth := v.width/2 - 4
	if titleWidth < 16 {
		titleWidth = 16
	}
	title := truncate(ev.Title, titleWidth)

	venue := ev.Venue
	if ev.Location != "" {
		venue += ", " + ev.Location
	}

	line := fmt.Sprintf("%s%s %s  %s", indicator, ev.Date, timeStr, padRight(title, titleWidth))

	if index == v.selected {
		return v.styles.Selected.Render(line + "  " + venue)
	}
	if ev.IsPast {
		return v.styles.Past.Render(line + "  " + venue)
	}
	return v.styles.Normal.Render(line) + "  " + v.styles.Muted.Render(venue)
}

// truncate shortens a string to the given display width, rune-safe.
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

// padRight pads a string with spaces to the given display width.
func padRight(s string, width int) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.filter.SetWidth(width)
	v.ready = true
}

// Events returns the full event list from the feed.
func (v *View) Events() []domain.CanonicalEvent {
	return v.events
}

// Visible returns the events currently shown.
func (v *View) Visible() []domain.CanonicalEvent {
	return v.visible
}

// SelectedIndex returns the currently selected index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedEvent returns the currently selected event.
func (v *View) SelectedEvent() *domain.CanonicalEvent {
	if v.selected < len(v.visible) {
		return &v.visible[v.selected]
	}
	return nil
}

// ShowPast reports whether past events are included.
func (v *View) ShowPast() bool {
	return v.showPast
}

// Filtering reports whether the filter input has focus.
func (v *View) Filtering() bool {
	return v.filtering
}

// FilterValue returns the current filter text.
func (v *View) FilterValue() string {
	return v.filter.Value()
}

// LastUpdated returns the feed generation timestamp.
func (v *View) LastUpdated() string {
	return v.lastUpdated
}

// Loading reports whether the first feed load is still in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
