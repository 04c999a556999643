package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent collection runs",
	Long:  "Prints the most recent runs with per-source counts, newest first.",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	history, err := openHistory(cfg.HistoryDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open history: %v\n", err)
		os.Exit(1)
	}
	defer history.Close()

	runs, err := history.RecentRuns(context.Background(), historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read history: %v\n", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("%-20s %-9s %-7s %-9s %s\n", "Started", "Duration", "Total", "Snapshot", "Per source")
	fmt.Println(strings.Repeat("─", 90))
	for _, r := range runs {
		var parts []string
		for _, s := range r.Sources {
			parts = append(parts, fmt.Sprintf("%s=%d", s.Source, s.Count))
		}
		written := "no"
		if r.SnapshotWritten {
			written = "yes"
		}
		fmt.Printf("%-20s %-9s %-7d %-9s %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String(),
			r.Total,
			written,
			strings.Join(parts, " "),
		)
	}
	return nil
}
