package tui

import "errors"

// ErrMissingFeedReader is returned when the feed reader is not provided.
var ErrMissingFeedReader = errors.New("tui: feed reader is required")
