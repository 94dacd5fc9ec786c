package driven

import "context"

// Publisher pushes the finished feed artifact to its hosting location
// (for teatrofeed deployments, a static-site repository). Publishing
// happens strictly after a successful run; the publisher never feeds
// data back into the pipeline.
type Publisher interface {
	// Publish uploads content to the configured destination path,
	// creating or replacing it, and returns a URL or reference of the
	// published revision.
	Publish(ctx context.Context, content []byte, message string) (string, error)
}
