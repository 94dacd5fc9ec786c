// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/teatrofeed/teatrofeed/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewEvents is the event list view.
	ViewEvents ViewType = iota
	// ViewDetail shows one event in full.
	ViewDetail
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewEvents:
		return "events"
	case ViewDetail:
		return "detail"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// FeedLoaded carries the feed document from the reader.
type FeedLoaded struct {
	Doc *domain.FeedDocument
	Err error
}

// FeedChanged signals that the feed file changed on disk.
type FeedChanged struct{}

// ReloadRequested asks the app to reload the feed from the reader.
type ReloadRequested struct{}

// EventSelected signals an event was selected for the detail view.
type EventSelected struct {
	Event domain.CanonicalEvent
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
