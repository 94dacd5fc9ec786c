package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"github.com/teatrofeed/teatrofeed/internal/adapters/driving/tui/components/status"
	"github.com/teatrofeed/teatrofeed/internal/adapters/driving/tui/keymap"
	"github.com/teatrofeed/teatrofeed/internal/adapters/driving/tui/messages"
	"github.com/teatrofeed/teatrofeed/internal/adapters/driving/tui/styles"
	"github.com/teatrofeed/teatrofeed/internal/adapters/driving/tui/views/eventdetail"
	"github.com/teatrofeed/teatrofeed/internal/adapters/driving/tui/views/events"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// keys holds the keybindings.
	keys *keymap.KeyMap

	// eventsView is the event list view component.
	eventsView *events.View

	// detailView is the single-event detail view component.
	detailView *eventdetail.View

	// statusBar is the footer showing feed freshness and key hints.
	statusBar *status.Bar

	// watcher reloads the feed when its file changes on disk.
	// Nil when watching is not enabled.
	watcher  *fsnotify.Watcher
	feedPath string

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keys:        km,
		eventsView:  events.NewView(s, km),
		detailView:  eventdetail.NewView(s),
		statusBar:   status.NewBar(s, km),
		currentView: messages.ViewEvents,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Watch reloads the feed whenever the file at path changes. It must
// be called before Run. The aggregator replaces the feed file by
// rename, which kills a watch on the file itself, so the watch goes
// on the parent directory and events are filtered by name.
func (a *App) Watch(path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	a.watcher = w
	a.feedPath = filepath.Clean(path)
	return nil
}

// Watching reports whether a file watch is active.
func (a *App) Watching() bool {
	return a.watcher != nil
}

// Close releases the file watcher, if any.
func (a *App) Close() error {
	if a.watcher == nil {
		return nil
	}
	return a.watcher.Close()
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tea.SetWindowTitle("teatrofeed"),
		a.loadFeed(),
	}
	if a.watcher != nil {
		cmds = append(cmds, a.waitForChange())
	}
	return tea.Batch(cmds...)
}

// loadFeed returns a command that reads the feed document.
func (a *App) loadFeed() tea.Cmd {
	return func() tea.Msg {
		doc, err := a.ports.Reader.Current(a.ctx)
		return messages.FeedLoaded{Doc: doc, Err: err}
	}
}

// waitForChange returns a command that blocks until the feed file
// changes on disk. It is re-armed after every reported change.
func (a *App) waitForChange() tea.Cmd {
	if a.watcher == nil {
		return nil
	}
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-a.watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(ev.Name) != a.feedPath {
					continue
				}
				if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename) {
					return messages.FeedChanged{}
				}
			case err, ok := <-a.watcher.Errors:
				if !ok {
					return nil
				}
				return messages.ErrorOccurred{Err: err}
			}
		}
	}
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.eventsView.SetDimensions(msg.Width, msg.Height)
		a.detailView.SetDimensions(msg.Width, msg.Height)
		a.statusBar.SetWidth(msg.Width)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewEvents:
			a.eventsView, cmd = a.eventsView.Update(msg)
			return a, cmd

		case messages.ViewDetail:
			a.detailView, cmd = a.detailView.Update(msg)
			return a, cmd

		case messages.ViewHelp:
			if msg.String() == "esc" || msg.String() == "q" {
				a.currentView = messages.ViewEvents
			}
			return a, nil
		}
		return a, nil

	case messages.FeedLoaded:
		a.err = msg.Err
		a.eventsView, cmd = a.eventsView.Update(msg)
		return a, cmd

	case messages.FeedChanged:
		// Reload, then re-arm the watch.
		return a, tea.Batch(a.loadFeed(), a.waitForChange())

	case messages.ReloadRequested:
		return a, a.loadFeed()

	case messages.EventSelected:
		a.detailView.SetEvent(msg.Event)
		a.currentView = messages.ViewDetail
		return a, nil

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.eventsView, cmd = a.eventsView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages to the active view.
	switch a.currentView {
	case messages.ViewEvents:
		a.eventsView, cmd = a.eventsView.Update(msg)
	case messages.ViewDetail:
		a.detailView, cmd = a.detailView.Update(msg)
	case messages.ViewHelp:
		// Help view is static.
	}

	return a, cmd
}

// View implements tea.Model.
// It renders the current view with the status bar pinned below.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var content string
	switch a.currentView {
	case messages.ViewEvents:
		content = a.eventsView.View()
	case messages.ViewDetail:
		content = a.detailView.View()
	case messages.ViewHelp:
		content = a.viewHelp()
	default:
		content = a.eventsView.View()
	}

	bar := a.renderStatusBar()
	gap := a.height - lipgloss.Height(content) - lipgloss.Height(bar)
	if gap < 1 {
		gap = 1
	}

	return content + strings.Repeat("\n", gap) + bar
}

// renderStatusBar syncs the bar with the model and renders it.
func (a *App) renderStatusBar() string {
	switch {
	case a.eventsView.Loading():
		a.statusBar.SetState(status.StateLoading)
	case a.err != nil:
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage(a.err.Error())
	default:
		a.statusBar.SetState(status.StateReady)
	}

	a.statusBar.SetCounts(len(a.eventsView.Visible()), len(a.eventsView.Events()))
	a.statusBar.SetLastUpdated(formatTimestamp(a.eventsView.LastUpdated()))
	a.statusBar.SetWatching(a.watcher != nil)

	return a.statusBar.View()
}

// formatTimestamp renders an RFC 3339 timestamp for the status bar.
func formatTimestamp(ts string) string {
	if ts == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04")
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")

	groups := a.keys.FullHelp()
	for _, group := range groups {
		for _, binding := range group {
			b.WriteString(fmt.Sprintf("  %-12s %s\n",
				a.styles.Subtitle.Render(binding.Help().Key),
				binding.Help().Desc))
		}
		b.WriteString("\n")
	}

	b.WriteString(a.styles.Help.Render("[esc] back"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// EventsView returns the event list view.
func (a *App) EventsView() *events.View {
	return a.eventsView
}

// DetailView returns the event detail view.
func (a *App) DetailView() *eventdetail.View {
	return a.detailView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.eventsView.SetDimensions(width, height)
	a.detailView.SetDimensions(width, height)
	a.statusBar.SetWidth(width)
}
