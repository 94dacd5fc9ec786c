// Package cli implements the teatrofeed command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/teatrofeed/teatrofeed/internal/adapters/driven/config/file"
	"github.com/teatrofeed/teatrofeed/internal/config"
	"github.com/teatrofeed/teatrofeed/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	cfgFile     string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "teatrofeed",
	Short: "Aggregate theatre listings into one canonical feed",
	Long: `teatrofeed collects theatre and performing-arts listings from several
upstream sources, deduplicates the events that more than one source
lists and writes a single canonical JSON feed for the listing page.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "teatrofeed.yaml", "path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose pipeline logging")
}

// loadConfig reads the configuration file named by --config.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// openSettings opens the operator settings store in its default
// location.
func openSettings() (*file.SettingsStore, error) {
	return file.NewSettingsStore("")
}
