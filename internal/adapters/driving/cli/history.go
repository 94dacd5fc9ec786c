package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/teatrofeed/teatrofeed/internal/adapters/driven/storage/sqlite"
	"github.com/teatrofeed/teatrofeed/internal/core/domain"
	"github.com/teatrofeed/teatrofeed/internal/core/services"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past aggregation runs",
	Long: `Lists the runs recorded in the history database, newest first.

Use 'history show <id>' for the per-source breakdown of one run.`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one run in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.PersistentFlags().IntVar(&historyLimit, "limit", 10, "maximum runs to list")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

// openHistory opens the run-history database at the configured
// location. The caller must Close the returned store.
func openHistory() (*sqlite.Store, *services.History, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	dbPath, err := cfg.HistoryDBPath()
	if err != nil {
		return nil, nil, err
	}

	store, err := sqlite.NewStore(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening history database: %w", err)
	}

	return store, services.NewHistory(store.RunStore()), nil
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	store, history, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := history.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		cmd.Println("No runs recorded yet. Run 'teatrofeed run' first.")
		return nil
	}

	rows := make([][]string, 0, len(runs)+1)
	rows = append(rows, []string{"ID", "STARTED", "DURATION", "EVENTS", "SOURCES", "STATUS"})
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String(),
			strconv.Itoa(run.EventCount),
			fmt.Sprintf("%d/%d", run.SourcesOK(), len(run.Sources)),
			runStatus(run),
		})
	}

	widths := columnWidths(rows)
	for _, row := range rows {
		cmd.Println(formatRow(row, widths))
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, history, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := history.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	cmd.Printf("Run %s\n", run.ID)
	cmd.Printf("  Started:  %s\n", run.StartedAt.Local().Format(time.RFC3339))
	cmd.Printf("  Finished: %s (%s)\n",
		run.FinishedAt.Local().Format(time.RFC3339),
		run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	cmd.Printf("  Status:   %s\n", runStatus(*run))
	if run.Err != "" {
		cmd.Printf("  Error:    %s\n", run.Err)
	}
	cmd.Printf("  Events:   %d merged from %d raw records (%d invalid)\n",
		run.EventCount, run.RawCount, run.InvalidCount)
	cmd.Println()

	printRunSummary(cmd, run)
	return nil
}

func runStatus(run domain.RunRecord) string {
	switch {
	case run.Err != "":
		return "failed"
	case run.SourcesFailed() > 0:
		return "partial"
	default:
		return "ok"
	}
}
