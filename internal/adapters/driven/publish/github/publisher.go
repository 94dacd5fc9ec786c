// Package github publishes the feed document to a GitHub repository
// through the contents API. The target is the static-site repository
// that serves the listing page, so a publish is one commit replacing
// the events file.
package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/teatrofeed/teatrofeed/internal/core/ports/driven"
)

// DefaultTimeout bounds each GitHub API request.
const DefaultTimeout = 30 * time.Second

const (
	// TokenEnv is the environment variable consulted for the publish
	// token before the settings store.
	TokenEnv = "TEATROFEED_GITHUB_TOKEN"

	// SettingsToken is the settings key holding the publish token.
	SettingsToken = "github.token"
)

// Ensure Publisher implements the interface.
var _ driven.Publisher = (*Publisher)(nil)

// Config locates the file the publisher maintains.
type Config struct {
	Owner  string
	Repo   string
	Branch string
	Path   string
}

// Publisher commits the feed to a repository.
type Publisher struct {
	cfg Config
	gh  *gh.Client
}

// New creates a publisher authenticated with token.
func New(cfg Config, token string) *Publisher {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = DefaultTimeout

	return &Publisher{cfg: cfg, gh: gh.NewClient(tc)}
}

// Publish uploads content to the configured path, creating the file
// on the first publish and updating it afterwards. It returns the URL
// of the commit that carried the change.
func (p *Publisher) Publish(ctx context.Context, content []byte, message string) (string, error) {
	opts := &gh.RepositoryContentFileOptions{
		Message: gh.Ptr(message),
		Content: content,
		Branch:  gh.Ptr(p.cfg.Branch),
	}

	sha, err := p.currentSHA(ctx)
	if err != nil {
		return "", err
	}

	var resp *gh.RepositoryContentResponse
	if sha == "" {
		resp, _, err = p.gh.Repositories.CreateFile(ctx, p.cfg.Owner, p.cfg.Repo, p.cfg.Path, opts)
	} else {
		opts.SHA = gh.Ptr(sha)
		resp, _, err = p.gh.Repositories.UpdateFile(ctx, p.cfg.Owner, p.cfg.Repo, p.cfg.Path, opts)
	}
	if err != nil {
		return "", fmt.Errorf("publishing %s: %w", p.cfg.Path, err)
	}

	return resp.Commit.GetHTMLURL(), nil
}

// currentSHA looks up the blob SHA the contents API requires for an
// update. Empty means the file does not exist yet.
func (p *Publisher) currentSHA(ctx context.Context) (string, error) {
	getOpts := &gh.RepositoryContentGetOptions{Ref: p.cfg.Branch}
	fc, _, resp, err := p.gh.Repositories.GetContents(ctx, p.cfg.Owner, p.cfg.Repo, p.cfg.Path, getOpts)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", nil
		}
		return "", fmt.Errorf("checking existing %s: %w", p.cfg.Path, err)
	}
	if fc == nil {
		return "", fmt.Errorf("%s is a directory in %s/%s", p.cfg.Path, p.cfg.Owner, p.cfg.Repo)
	}
	return fc.GetSHA(), nil
}
