package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		RunE:  runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := openSQLite()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	w := cmd.OutOrStdout()
	if jsonOutput() {
		return printJSON(w, stats)
	}

	fmt.Fprintf(w, "db:     %s (%s)\n", stats.DBPath, humanize.Bytes(uint64(stats.DBSizeBytes)))
	fmt.Fprintf(w, "bots:   %d\n", stats.Bots)
	fmt.Fprintf(w, "turns:  %s\n", humanize.Comma(int64(stats.TotalTurns)))
	for _, b := range stats.PerBot {
		last := b.UpdatedAt
		if t, err := time.Parse(time.RFC3339Nano, b.UpdatedAt); err == nil {
			last = humanize.Time(t)
		}
		fmt.Fprintf(w, "  %-20s %8s turns  last %s\n", b.BotID, humanize.Comma(int64(b.Turns)), last)
	}
	return nil
}
