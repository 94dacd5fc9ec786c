package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	publish "github.com/teatrofeed/teatrofeed/internal/adapters/driven/publish/github"
	"github.com/teatrofeed/teatrofeed/internal/config"
	"github.com/teatrofeed/teatrofeed/internal/core/ports/driven"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Push the current feed to the configured repository",
	Long: `Publishes the most recently written feed file to the GitHub
repository configured under publish in the configuration file.

The token is read from the ` + publish.TokenEnv + ` environment
variable, falling back to the ` + publish.SettingsToken + ` settings key.`,
	Args: cobra.NoArgs,
	RunE: runPublishCmd,
}

func init() {
	rootCmd.AddCommand(publishCmd)
}

func runPublishCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	settings, err := openSettings()
	if err != nil {
		return err
	}

	ref, err := publishFeed(cmd.Context(), cfg, settings)
	if err != nil {
		return err
	}

	cmd.Printf("Published: %s\n", ref)
	return nil
}

// publishFeed pushes the written feed file to the configured
// repository and returns the commit reference.
func publishFeed(ctx context.Context, cfg *config.Config, settings driven.SettingsStore) (string, error) {
	if !cfg.Publish.Configured() {
		return "", errors.New("publish.owner and publish.repo are not configured")
	}

	token := publishToken(settings)
	if token == "" {
		return "", fmt.Errorf("no GitHub token: set %s or run `teatrofeed settings set %s`",
			publish.TokenEnv, publish.SettingsToken)
	}

	content, err := os.ReadFile(cfg.Feed.Output)
	if err != nil {
		return "", fmt.Errorf("reading feed for publish: %w", err)
	}

	p := publish.New(publish.Config{
		Owner:  cfg.Publish.Owner,
		Repo:   cfg.Publish.Repo,
		Branch: cfg.Publish.Branch,
		Path:   cfg.Publish.Path,
	}, token)

	return p.Publish(ctx, content, cfg.Publish.CommitMessage)
}

// publishToken resolves the publish token, environment first so CI
// can override whatever the operator saved locally.
func publishToken(settings driven.SettingsStore) string {
	if token := os.Getenv(publish.TokenEnv); token != "" {
		return token
	}
	if settings == nil {
		return ""
	}
	return settings.GetString(publish.SettingsToken)
}
