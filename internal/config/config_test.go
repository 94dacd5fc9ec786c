package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTempConfig writes content to a throwaway YAML file.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "teatrofeed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// validYAML is a minimal valid configuration.
const validYAML = `
feed:
  output: ./out/events.json
  pretty: true
history:
  keep: 30
fetch:
  timeout_sec: 20
  retries: 2
  backoff_ms: 250
  max_backoff_sec: 10
  rate_per_second: 1.5
sources:
  - name: cultura.trentino.it
    type: culturatrentino
    enabled: true
  - name: teatrodivillazzano.it
    type: tribe
    enabled: true
    url: https://www.teatrodivillazzano.it/wp-json/tribe/events/v1/events
  - name: crushsite.it
    type: jsonld
    enabled: false
    url: https://www.crushsite.it/it/teatro
priority:
  - cultura.trentino.it
  - teatrodivillazzano.it
publish:
  owner: teatrofeed
  repo: feed
  path: events.json
`

func TestLoad_Valid(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, validYAML))

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "./out/events.json", cfg.Feed.Output)
	assert.Equal(t, 30, cfg.History.Keep)
	assert.Equal(t, 20*time.Second, cfg.Fetch.Timeout())
	assert.Equal(t, 250*time.Millisecond, cfg.Fetch.Backoff())
	assert.Equal(t, 10*time.Second, cfg.Fetch.MaxBackoff())
	assert.InDelta(t, 1.5, cfg.Fetch.RatePerSecond, 1e-9)
	require.Len(t, cfg.Sources, 3)
	assert.Equal(t, []string{"cultura.trentino.it", "teatrodivillazzano.it"}, cfg.Priority)
	assert.Equal(t, "teatrofeed", cfg.Publish.Owner)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, `
sources:
  - name: cultura.trentino.it
    type: culturatrentino
    enabled: true
`))

	require.NoError(t, err)
	assert.Equal(t, "events.json", cfg.Feed.Output)
	assert.True(t, cfg.Feed.Pretty)
	assert.Equal(t, 50, cfg.History.Keep)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout())
	assert.Equal(t, 3, cfg.Fetch.Retries)
	assert.Equal(t, "main", cfg.Publish.Branch)
	assert.Equal(t, "Update events feed", cfg.Publish.CommitMessage)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeTempConfig(t, "sources: [unbalanced"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")
}

func TestLoad_ResolvesListingFilesAgainstConfigDir(t *testing.T) {
	path := writeTempConfig(t, `
sources:
  - name: curated
    type: local
    enabled: true
    file: listings/extra.json
  - name: assoluto
    type: local
    enabled: true
    file: /srv/teatrofeed/fixed.json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "listings/extra.json"), cfg.Sources[0].File)
	assert.Equal(t, "/srv/teatrofeed/fixed.json", cfg.Sources[1].File)
}

func TestValidate_NoSources(t *testing.T) {
	cfg := Default()
	assert.ErrorIs(t, cfg.Validate(), ErrNoSources)
}

func TestValidate_NoEnabledSources(t *testing.T) {
	cfg := Default()
	cfg.Sources = []Source{{Name: "a", Type: TypeCulturaTrentino, Enabled: false}}
	assert.ErrorIs(t, cfg.Validate(), ErrNoEnabledSources)
}

func TestValidate_DuplicateSourceNames(t *testing.T) {
	cfg := Default()
	cfg.Sources = []Source{
		{Name: "a", Type: TypeCulturaTrentino, Enabled: true},
		{Name: "a", Type: TypeCulturaTrentino, Enabled: true},
	}
	err := cfg.Validate()
	require.ErrorIs(t, err, ErrDuplicateSource)
	assert.Contains(t, err.Error(), `"a"`)
}

func TestValidate_MissingSourceName(t *testing.T) {
	cfg := Default()
	cfg.Sources = []Source{{Type: TypeCulturaTrentino, Enabled: true}}
	err := cfg.Validate()
	require.ErrorIs(t, err, ErrSourceMissingName)
	assert.Contains(t, err.Error(), "sources[0]")
}

func TestValidate_UnknownSourceType(t *testing.T) {
	cfg := Default()
	cfg.Sources = []Source{{Name: "x", Type: "rss", Enabled: true}}
	err := cfg.Validate()
	require.ErrorIs(t, err, ErrUnknownSourceType)
	assert.Contains(t, err.Error(), `source "x"`)
}

func TestValidate_PerTypeRequirements(t *testing.T) {
	tests := []struct {
		name    string
		source  Source
		wantErr error
	}{
		{"wordpress needs url", Source{Name: "w", Type: TypeWordPress, Enabled: true}, ErrSourceMissingURL},
		{"tribe needs url", Source{Name: "t", Type: TypeTribe, Enabled: true}, ErrSourceMissingURL},
		{"jsonld needs a url", Source{Name: "j", Type: TypeJSONLD, Enabled: true}, ErrSourceMissingURL},
		{"gcal needs calendar id", Source{Name: "g", Type: TypeGoogleCalendar, Enabled: true}, ErrSourceMissingCalID},
		{"local needs file", Source{Name: "l", Type: TypeLocal, Enabled: true}, ErrSourceMissingFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Sources = []Source{tt.source}
			assert.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestValidate_JSONLDAcceptsURLList(t *testing.T) {
	cfg := Default()
	cfg.Sources = []Source{{
		Name:    "j",
		Type:    TypeJSONLD,
		Enabled: true,
		URLs:    []string{"https://example.it/teatro", "https://example.it/danza"},
	}}
	assert.NoError(t, cfg.Validate())
}

func TestValidate_PriorityMustReferenceSources(t *testing.T) {
	cfg := Default()
	cfg.Sources = []Source{{Name: "a", Type: TypeCulturaTrentino, Enabled: true}}
	cfg.Priority = []string{"a", "phantom"}
	err := cfg.Validate()
	require.ErrorIs(t, err, ErrUnknownPriority)
	assert.Contains(t, err.Error(), `"phantom"`)
}

func TestValidate_FeedOutputRequired(t *testing.T) {
	cfg := Default()
	cfg.Feed.Output = ""
	cfg.Sources = []Source{{Name: "a", Type: TypeCulturaTrentino, Enabled: true}}
	assert.ErrorIs(t, cfg.Validate(), ErrMissingFeedOutput)
}

func TestValidate_FetchBounds(t *testing.T) {
	cfg := Default()
	cfg.Sources = []Source{{Name: "a", Type: TypeCulturaTrentino, Enabled: true}}

	cfg.Fetch.Retries = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidRetries)

	cfg.Fetch.Retries = 3
	cfg.Fetch.RatePerSecond = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidRate)
}

func TestValidate_PublishNeedsOwnerAndRepo(t *testing.T) {
	cfg := Default()
	cfg.Sources = []Source{{Name: "a", Type: TypeCulturaTrentino, Enabled: true}}

	cfg.Publish.Owner = "teatrofeed"
	assert.ErrorIs(t, cfg.Validate(), ErrPublishIncomplete)

	cfg.Publish.Repo = "site"
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.Publish.Configured())
}

func TestPublishConfig_Configured(t *testing.T) {
	assert.False(t, PublishConfig{}.Configured())
	assert.False(t, PublishConfig{Owner: "teatrofeed"}.Configured())
	assert.True(t, PublishConfig{Owner: "teatrofeed", Repo: "site"}.Configured())
}

func TestEnabled_FiltersAndKeepsOrder(t *testing.T) {
	cfg := Default()
	cfg.Sources = []Source{
		{Name: "a", Type: TypeCulturaTrentino, Enabled: true},
		{Name: "b", Type: TypeJSONLD, URL: "https://b.example", Enabled: false},
		{Name: "c", Type: TypeJSONLD, URL: "https://c.example", Enabled: true},
	}

	enabled := cfg.Enabled()

	require.Len(t, enabled, 2)
	assert.Equal(t, "a", enabled[0].Name)
	assert.Equal(t, "c", enabled[1].Name)
}

func TestHistoryDBPath_Explicit(t *testing.T) {
	cfg := Default()
	cfg.History.Dir = "/var/lib/teatrofeed"

	path, err := cfg.HistoryDBPath()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/var/lib/teatrofeed", "history.db"), path)
}

func TestHistoryDBPath_DefaultsUnderHome(t *testing.T) {
	cfg := Default()

	path, err := cfg.HistoryDBPath()

	require.NoError(t, err)
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".teatrofeed", "history.db"), path)
}
