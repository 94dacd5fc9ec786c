// Package mcp provides an MCP (Model Context Protocol) server adapter
// for teatrofeed. It lets AI assistants query the aggregated theatre
// feed through read-only tools and resources.
package mcp

import "errors"

// ErrMissingFeedReader is returned when the feed reader is not provided.
var ErrMissingFeedReader = errors.New("mcp: feed reader is required")
