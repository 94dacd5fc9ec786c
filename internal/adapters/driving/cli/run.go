package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/teatrofeed/teatrofeed/internal/adapters/driven/feedfile"
	"github.com/teatrofeed/teatrofeed/internal/adapters/driven/storage/sqlite"
	"github.com/teatrofeed/teatrofeed/internal/clock"
	"github.com/teatrofeed/teatrofeed/internal/core/domain"
	"github.com/teatrofeed/teatrofeed/internal/core/ports/driven"
	"github.com/teatrofeed/teatrofeed/internal/core/services"
	"github.com/teatrofeed/teatrofeed/internal/logger"
	"github.com/teatrofeed/teatrofeed/internal/metrics"
	"github.com/teatrofeed/teatrofeed/internal/sources"
)

var (
	runPublish bool
	runDryRun  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch all sources and write the feed",
	Long: `Runs the aggregation pipeline once: fetches every enabled source
concurrently, validates and deduplicates the listings, merges the
duplicates and writes the canonical feed document.

A source failing is routine and only reduces coverage; the run fails
when every source fails.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runPublish, "publish", false, "push the feed to the configured repository after writing")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "run the pipeline without writing the feed or recording the run")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	settings, err := openSettings()
	if err != nil {
		return err
	}

	clk := clock.NewSystem()
	fetchers, err := sources.Build(cfg, settings, clk)
	if err != nil {
		return err
	}

	// A dry run leaves no trace, so it skips the history database too.
	var runStore driven.RunStore
	if !runDryRun {
		dbPath, err := cfg.HistoryDBPath()
		if err != nil {
			return err
		}
		store, err := sqlite.NewStore(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		runStore = store.RunStore()
	}

	agg := services.NewAggregator(fetchers, services.NewMatcher(), services.NewMerger(cfg.Priority), runStore, clk)
	doc, run, runErr := agg.Run(cmd.Context())

	if runStore != nil && cfg.History.Keep > 0 {
		if err := runStore.Prune(cmd.Context(), cfg.History.Keep); err != nil {
			logger.Warn("pruning history: %v", err)
		}
	}

	// Failed runs leave metrics too, that is when they matter most.
	if !runDryRun && cfg.Feed.MetricsFile != "" && run != nil {
		if err := metrics.NewWriter(cfg.Feed.MetricsFile).Write(*run); err != nil {
			logger.Warn("writing metrics: %v", err)
		}
	}

	if runErr != nil {
		return runErr
	}

	printRunSummary(cmd, run)

	if runDryRun {
		cmd.Printf("Dry run: %d events not written\n", doc.Count)
		return nil
	}

	feed := feedfile.New(cfg.Feed.Output, cfg.Feed.Pretty, clk)
	if err := feed.Write(cmd.Context(), doc); err != nil {
		return err
	}
	cmd.Printf("Wrote %d events to %s\n", doc.Count, feed.Path())

	if runPublish {
		ref, err := publishFeed(cmd.Context(), cfg, settings)
		if err != nil {
			return err
		}
		cmd.Printf("Published: %s\n", ref)
	}

	return nil
}

// printRunSummary reports the per-source outcomes of a finished run.
func printRunSummary(cmd *cobra.Command, run *domain.RunRecord) {
	for _, src := range run.Sources {
		if src.OK() {
			cmd.Printf("  %-24s %3d records, %d invalid (%s)\n",
				src.Source, src.Fetched, src.Invalid, src.Duration.Round(time.Millisecond))
		} else {
			cmd.Printf("  %-24s failed: %s\n", src.Source, src.Err)
		}
	}
	cmd.Printf("%d raw records merged into %d events (%d sources ok, %d failed)\n",
		run.RawCount, run.EventCount, run.SourcesOK(), run.SourcesFailed())
}
