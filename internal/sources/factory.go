// Package sources builds the configured fetchers. It owns the mapping
// from a source's declared type to the package implementing it, and
// the shared HTTP client they throttle on.
package sources

import (
	"fmt"
	"os"

	"github.com/teatrofeed/teatrofeed/internal/clock"
	"github.com/teatrofeed/teatrofeed/internal/config"
	"github.com/teatrofeed/teatrofeed/internal/core/ports/driven"
	"github.com/teatrofeed/teatrofeed/internal/httpx"
	"github.com/teatrofeed/teatrofeed/internal/sources/culturatrentino"
	"github.com/teatrofeed/teatrofeed/internal/sources/gcal"
	"github.com/teatrofeed/teatrofeed/internal/sources/jsonld"
	"github.com/teatrofeed/teatrofeed/internal/sources/local"
	"github.com/teatrofeed/teatrofeed/internal/sources/tribe"
	"github.com/teatrofeed/teatrofeed/internal/sources/wordpress"
)

const (
	// DefaultAPIKeyEnv is the environment variable consulted for the
	// Google Calendar API key when a source does not name its own.
	DefaultAPIKeyEnv = "TEATROFEED_GCAL_API_KEY"

	// SettingsAPIKey is the settings key consulted when no environment
	// variable is set.
	SettingsAPIKey = "gcal.api_key"
)

// Build creates a fetcher for every enabled source, sharing one
// throttled HTTP client across them. The settings store may be nil;
// it is only consulted for credentials the environment does not carry.
func Build(cfg *config.Config, settings driven.SettingsStore, clk clock.Clock) ([]driven.Fetcher, error) {
	client := httpx.New(httpx.Options{
		Timeout:           cfg.Fetch.Timeout(),
		MaxAttempts:       cfg.Fetch.Retries,
		RequestsPerSecond: cfg.Fetch.RatePerSecond,
		InitialBackoff:    cfg.Fetch.Backoff(),
		MaxBackoff:        cfg.Fetch.MaxBackoff(),
	})

	enabled := cfg.Enabled()
	fetchers := make([]driven.Fetcher, 0, len(enabled))
	for _, src := range enabled {
		f, err := build(src, client, settings, clk)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", src.Name, err)
		}
		fetchers = append(fetchers, f)
	}
	return fetchers, nil
}

func build(src config.Source, client *httpx.Client, settings driven.SettingsStore, clk clock.Clock) (driven.Fetcher, error) {
	switch src.Type {
	case config.TypeCulturaTrentino:
		return culturatrentino.New(culturatrentino.Config{
			Name:       src.Name,
			WeeksAhead: src.WeeksAhead,
		}, client, clk), nil

	case config.TypeTribe:
		return tribe.New(tribe.Config{
			Name:     src.Name,
			URL:      src.URL,
			Venue:    src.Venue,
			Location: src.Location,
			PerPage:  src.PerPage,
			MaxPages: src.MaxPages,
		}, client, clk), nil

	case config.TypeWordPress:
		return wordpress.New(wordpress.Config{
			Name:     src.Name,
			URL:      src.URL,
			Resource: src.Resource,
			Venue:    src.Venue,
			Location: src.Location,
			PerPage:  src.PerPage,
			MaxPages: src.MaxPages,
		}, client, clk), nil

	case config.TypeJSONLD:
		return jsonld.New(jsonld.Config{
			Name:     src.Name,
			URL:      src.URL,
			URLs:     src.URLs,
			Venue:    src.Venue,
			Location: src.Location,
		}, client, clk), nil

	case config.TypeGoogleCalendar:
		key := apiKey(src, settings)
		if key == "" {
			return nil, fmt.Errorf("no API key: set %s or the %s setting",
				envName(src), SettingsAPIKey)
		}
		return gcal.New(gcal.Config{
			Name:       src.Name,
			CalendarID: src.CalendarID,
			APIKey:     key,
			Venue:      src.Venue,
			Location:   src.Location,
			MaxPages:   src.MaxPages,
		}, clk), nil

	case config.TypeLocal:
		return local.New(local.Config{
			Name:     src.Name,
			File:     src.File,
			Venue:    src.Venue,
			Location: src.Location,
		}), nil

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownSourceType, src.Type)
	}
}

// apiKey resolves a calendar credential, preferring the environment
// over stored settings.
func apiKey(src config.Source, settings driven.SettingsStore) string {
	if key := os.Getenv(envName(src)); key != "" {
		return key
	}
	if settings != nil {
		return settings.GetString(SettingsAPIKey)
	}
	return ""
}

func envName(src config.Source) string {
	if src.APIKeyEnv != "" {
		return src.APIKeyEnv
	}
	return DefaultAPIKeyEnv
}
