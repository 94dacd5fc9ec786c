package cli

import (
	"strings"

	runewidth "github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/teatrofeed/teatrofeed/internal/config"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the sources declared in the configuration file",
	Args:  cobra.NoArgs,
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(cfg.Sources)+1)
	rows = append(rows, []string{"NAME", "TYPE", "STATUS", "TARGET"})
	for _, src := range cfg.Sources {
		status := "enabled"
		if !src.Enabled {
			status = "disabled"
		}
		rows = append(rows, []string{src.Name, src.Type, status, sourceTarget(src)})
	}

	widths := columnWidths(rows)
	for _, row := range rows {
		cmd.Println(formatRow(row, widths))
	}

	enabled := cfg.Enabled()
	cmd.Printf("\n%d sources, %d enabled\n", len(cfg.Sources), len(enabled))
	return nil
}

// sourceTarget picks the one field that tells an operator where a
// source actually points.
func sourceTarget(src config.Source) string {
	switch {
	case src.URL != "":
		return src.URL
	case len(src.URLs) > 0:
		return src.URLs[0]
	case src.CalendarID != "":
		return src.CalendarID
	case src.File != "":
		return src.File
	default:
		return "-"
	}
}

// columnWidths measures every cell with runewidth so accented venue
// names in URLs do not skew the columns.
func columnWidths(rows [][]string) []int {
	if len(rows) == 0 {
		return nil
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func formatRow(row []string, widths []int) string {
	var b strings.Builder
	for i, cell := range row {
		b.WriteString(cell)
		if i < len(row)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell)+2))
		}
	}
	return b.String()
}
