package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/teatrofeed/teatrofeed/internal/adapters/driven/feedfile"
	"github.com/teatrofeed/teatrofeed/internal/adapters/driving/tui"
	"github.com/teatrofeed/teatrofeed/internal/clock"
	"github.com/teatrofeed/teatrofeed/internal/core/services"
	"github.com/teatrofeed/teatrofeed/internal/logger"
)

// browseCmd represents the browse command.
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the aggregated feed in an interactive terminal UI",
	Long: `Browse the aggregated theatre feed in an interactive terminal UI.

The browser reads the feed file produced by 'teatrofeed run' and keeps
watching it, so a run finishing in another terminal refreshes the list.

Controls:
  ↑/k, ↓/j - Move selection
  Enter    - Show event details
  /        - Filter by title, venue or town
  p        - Show or hide past events
  Esc      - Back / Clear filter
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	// Panic recovery keeps a stack trace visible after the alt
	// screen is torn down.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in browser: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := feedfile.New(cfg.Feed.Output, cfg.Feed.Pretty, clock.NewSystem())
	ports := tui.NewPorts(services.NewReader(store))

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("creating browser: %w", err)
	}
	app.WithContext(cmd.Context())

	// A missing watch is not fatal. The browser still works, it
	// just will not pick up runs finished while it is open.
	if err := app.Watch(cfg.Feed.Output); err != nil {
		logger.Warn("feed watch disabled: %v", err)
	}
	defer app.Close()

	if err := app.Run(); err != nil {
		return fmt.Errorf("browser error: %w", err)
	}

	return nil
}
