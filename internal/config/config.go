// Package config loads and validates the run configuration for the
// teatrofeed pipeline from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Source types the factory can build a fetcher for.
const (
	TypeCulturaTrentino = "culturatrentino"
	TypeWordPress       = "wordpress"
	TypeTribe           = "tribe"
	TypeJSONLD          = "jsonld"
	TypeGoogleCalendar  = "gcal"
	TypeLocal           = "local"
)

// Configuration validation errors.
var (
	ErrNoSources          = errors.New("at least one source is required")
	ErrNoEnabledSources   = errors.New("at least one source must be enabled")
	ErrSourceMissingName  = errors.New("source name is required")
	ErrDuplicateSource    = errors.New("source names must be unique")
	ErrUnknownSourceType  = errors.New("unknown source type")
	ErrSourceMissingURL   = errors.New("source url is required")
	ErrSourceMissingFile  = errors.New("source file is required")
	ErrSourceMissingCalID = errors.New("source calendar_id is required")
	ErrUnknownPriority    = errors.New("priority names an undeclared source")
	ErrMissingFeedOutput  = errors.New("feed.output is required")
	ErrInvalidKeep        = errors.New("history.keep must be non-negative")
	ErrInvalidRetries     = errors.New("fetch.retries must be at least 1")
	ErrInvalidRate        = errors.New("fetch.rate_per_second must be positive")
	ErrPublishIncomplete  = errors.New("publish needs both owner and repo")
)

// Config is the complete run configuration.
type Config struct {
	Feed     FeedConfig    `yaml:"feed"`
	History  HistoryConfig `yaml:"history"`
	Fetch    FetchConfig   `yaml:"fetch"`
	Sources  []Source      `yaml:"sources"`
	Priority []string      `yaml:"priority"`
	Publish  PublishConfig `yaml:"publish"`
}

// FeedConfig controls the output document.
type FeedConfig struct {
	// Output is the path of the canonical events.json.
	Output string `yaml:"output"`

	// Pretty indents the JSON output.
	Pretty bool `yaml:"pretty"`

	// MetricsFile, when set, receives run metrics in the Prometheus
	// textfile format.
	MetricsFile string `yaml:"metrics_file"`
}

// HistoryConfig controls the run-history database.
type HistoryConfig struct {
	// Dir holds the SQLite database. Empty means ~/.teatrofeed.
	Dir string `yaml:"dir"`

	// Keep is how many runs to retain, 0 keeps everything.
	Keep int `yaml:"keep"`
}

// FetchConfig tunes the shared HTTP client.
type FetchConfig struct {
	TimeoutSec    int     `yaml:"timeout_sec"`
	Retries       int     `yaml:"retries"`
	BackoffMs     int     `yaml:"backoff_ms"`
	MaxBackoffSec int     `yaml:"max_backoff_sec"`
	RatePerSecond float64 `yaml:"rate_per_second"`
}

// Timeout returns the per-attempt timeout.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSec) * time.Second
}

// Backoff returns the initial retry delay.
func (f FetchConfig) Backoff() time.Duration {
	return time.Duration(f.BackoffMs) * time.Millisecond
}

// MaxBackoff returns the retry delay cap.
func (f FetchConfig) MaxBackoff() time.Duration {
	return time.Duration(f.MaxBackoffSec) * time.Second
}

// Source declares one upstream listing source. Which fields apply
// depends on Type; Validate enforces the per-type subset.
type Source struct {
	// Name is the source identity used in attribution and priority,
	// normally the site's domain.
	Name string `yaml:"name"`

	// Type selects the fetcher implementation.
	Type string `yaml:"type"`

	// Enabled sources take part in runs. Disabled ones stay configured
	// but are skipped.
	Enabled bool `yaml:"enabled"`

	// URL is the endpoint or page to fetch (wordpress, tribe, jsonld).
	URL string `yaml:"url"`

	// URLs lists additional pages for jsonld sources that spread
	// listings over several URLs.
	URLs []string `yaml:"urls"`

	// CalendarID and APIKeyEnv configure gcal sources. The API key is
	// never stored in the file, only the environment variable name.
	CalendarID string `yaml:"calendar_id"`
	APIKeyEnv  string `yaml:"api_key_env"`

	// File is the path of a local JSON listing (local sources).
	File string `yaml:"file"`

	// Resource overrides the REST resource a wordpress source tries
	// first (default "eventi", with plain posts as the fallback).
	Resource string `yaml:"resource"`

	// Venue and Location fill records from sources that do not carry
	// venue data on every record.
	Venue    string `yaml:"venue"`
	Location string `yaml:"location"`

	// WeeksAhead bounds how far into the future paged calendars are
	// walked. Zero means the fetcher's default.
	WeeksAhead int `yaml:"weeks_ahead"`

	// PerPage and MaxPages bound REST pagination. Zero means the
	// fetcher's default.
	PerPage  int `yaml:"per_page"`
	MaxPages int `yaml:"max_pages"`
}

// PublishConfig targets the GitHub publisher.
type PublishConfig struct {
	Owner         string `yaml:"owner"`
	Repo          string `yaml:"repo"`
	Branch        string `yaml:"branch"`
	Path          string `yaml:"path"`
	CommitMessage string `yaml:"commit_message"`
}

// Configured reports whether a publish target has been set up.
func (p PublishConfig) Configured() bool {
	return p.Owner != "" && p.Repo != ""
}

// Load reads and validates the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	// Listing files travel with the config that names them.
	base := filepath.Dir(path)
	for i := range cfg.Sources {
		if f := cfg.Sources[i].File; f != "" && !filepath.IsAbs(f) {
			cfg.Sources[i].File = filepath.Join(base, f)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}

	return cfg, nil
}

// Default returns the configuration baseline that a loaded file
// overrides.
func Default() *Config {
	return &Config{
		Feed: FeedConfig{
			Output: "events.json",
			Pretty: true,
		},
		History: HistoryConfig{
			Keep: 50,
		},
		Fetch: FetchConfig{
			TimeoutSec:    30,
			Retries:       3,
			BackoffMs:     500,
			MaxBackoffSec: 30,
			RatePerSecond: 2.0,
		},
		Publish: PublishConfig{
			Branch:        "main",
			Path:          "events.json",
			CommitMessage: "Update events feed",
		},
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Feed.Output == "" {
		return ErrMissingFeedOutput
	}
	if c.History.Keep < 0 {
		return ErrInvalidKeep
	}
	if c.Fetch.Retries < 1 {
		return ErrInvalidRetries
	}
	if c.Fetch.RatePerSecond <= 0 {
		return ErrInvalidRate
	}

	if len(c.Sources) == 0 {
		return ErrNoSources
	}

	seen := make(map[string]bool, len(c.Sources))
	enabled := 0
	for i, src := range c.Sources {
		if src.Name == "" {
			return fmt.Errorf("%w: sources[%d]", ErrSourceMissingName, i)
		}
		if seen[src.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateSource, src.Name)
		}
		seen[src.Name] = true

		if err := src.validate(); err != nil {
			return fmt.Errorf("source %q: %w", src.Name, err)
		}
		if src.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return ErrNoEnabledSources
	}

	for _, name := range c.Priority {
		if !seen[name] {
			return fmt.Errorf("%w: %q", ErrUnknownPriority, name)
		}
	}

	// Half a publish target is a typo, not a choice.
	if (c.Publish.Owner == "") != (c.Publish.Repo == "") {
		return ErrPublishIncomplete
	}

	return nil
}

// validate enforces the per-type field subset of one source.
func (s *Source) validate() error {
	switch s.Type {
	case TypeCulturaTrentino:
		// The endpoint is fixed upstream; nothing mandatory beyond the name.
		return nil
	case TypeWordPress, TypeTribe:
		if s.URL == "" {
			return ErrSourceMissingURL
		}
	case TypeJSONLD:
		if s.URL == "" && len(s.URLs) == 0 {
			return ErrSourceMissingURL
		}
	case TypeGoogleCalendar:
		if s.CalendarID == "" {
			return ErrSourceMissingCalID
		}
	case TypeLocal:
		if s.File == "" {
			return ErrSourceMissingFile
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSourceType, s.Type)
	}
	return nil
}

// Enabled returns the sources that take part in a run, in file order.
func (c *Config) Enabled() []Source {
	var enabled []Source
	for _, src := range c.Sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}
	return enabled
}

// HistoryDBPath resolves the SQLite database location.
func (c *Config) HistoryDBPath() (string, error) {
	dir := c.History.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		dir = filepath.Join(home, ".teatrofeed")
	}
	return filepath.Join(dir, "history.db"), nil
}
