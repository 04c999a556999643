package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/amishk599/jobtrend/internal/model"
	"github.com/amishk599/jobtrend/internal/snapshot"
	"github.com/amishk599/jobtrend/internal/store"
	"github.com/spf13/cobra"
)

var dryRun bool

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect once, write the snapshot, exit",
	Long:  "One-shot collection from every enabled source. With --dry-run the records are printed and neither the snapshot nor the run history is written.",
	RunE:  runCollect,
}

func init() {
	collectCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print records instead of writing the snapshot and run history")
	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var (
		snap     model.SnapshotWriter
		recorder model.RunRecorder
	)
	if dryRun {
		logger.Info("dry-run mode enabled, snapshot and history will not be written")
		recorder = store.NewNopStore()
	} else {
		snap = snapshot.NewCSVWriter(cfg.SnapshotPath, logger)
		history, err := openHistory(cfg.HistoryDB)
		if err != nil {
			logger.Error("failed to open history", "error", err)
			os.Exit(1)
		}
		defer history.Close()
		recorder = history
	}

	coord, err := buildCoordinator(cfg, snap, recorder, logger)
	if err != nil {
		logger.Error("failed to register sources", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	records := coord.RunAll(ctx)

	if dryRun {
		printRecords(records)
	}
	printSummary(records, coord.Sources())
	return nil
}

func printRecords(records []model.JobRecord) {
	fmt.Printf("%-45s %-25s %s\n", "Title", "Company", "Source")
	fmt.Println(strings.Repeat("─", 90))
	for _, r := range records {
		fmt.Printf("%-45s %-25s %s\n", truncate(r.Title, 44), truncate(r.Company, 24), r.Source)
	}
	fmt.Println()
}

func printSummary(records []model.JobRecord, sources []string) {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Source]++
	}
	for _, s := range sources {
		fmt.Printf("%-20s %d\n", s, counts[s])
	}
	fmt.Printf("\nTotal: %d jobs from %d sources\n", len(records), len(sources))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
