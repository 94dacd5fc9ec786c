// Package feedfile persists the feed document as a JSON file on disk.
package feedfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/teatrofeed/teatrofeed/internal/clock"
	"github.com/teatrofeed/teatrofeed/internal/core/domain"
	"github.com/teatrofeed/teatrofeed/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.FeedStore = (*Store)(nil)

// Store writes the feed document to a JSON file. The file is the
// published artifact, so writes replace it atomically and never leave
// a half-written document behind.
type Store struct {
	path   string
	pretty bool
	clk    clock.Clock
}

// New creates a feed store writing to path. Pretty indents the JSON
// for human diffing. A nil clock falls back to the system clock.
func New(path string, pretty bool, clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Store{path: path, pretty: pretty, clk: clk}
}

// Write stores the document. The bytes go to a temporary file in the
// target directory first and move into place with a rename, so a
// consumer reading the feed never observes a partial document.
func (s *Store) Write(ctx context.Context, doc *domain.FeedDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := s.encode(doc)
	if err != nil {
		return fmt.Errorf("encoding feed: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing feed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temporary file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing feed: %w", err)
	}
	return nil
}

// encode marshals the document without escaping HTML characters, so
// ampersands and accented titles stay readable in the output.
func (s *Store) encode(doc *domain.FeedDocument) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if s.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load reads the document back, recomputing the past flags against
// the present day since the file may predate midnight.
func (s *Store) Load(ctx context.Context) (*domain.FeedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrFeedNotFound
		}
		return nil, fmt.Errorf("reading feed: %w", err)
	}

	var doc domain.FeedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding feed %s: %w", s.path, err)
	}

	doc.RefreshPast(s.clk.Now())
	return &doc, nil
}

// Path returns the feed file location.
func (s *Store) Path() string {
	return s.path
}
