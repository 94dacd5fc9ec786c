package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for teatrofeed resources.
	uriScheme = "teatrofeed://"

	// FeedURI is the URI of the full feed document resource.
	FeedURI = uriScheme + "feed"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         FeedURI,
		Name:        "feed",
		Description: "The aggregated theatre event feed document",
		MIMEType:    "application/json",
	}, s.handleFeedResource)
}

// handleFeedResource returns the current feed document as JSON, the
// same shape the feed file carries on disk.
func (s *Server) handleFeedResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	doc, err := s.ports.Reader.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading feed: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling feed: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
