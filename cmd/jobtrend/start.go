package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amishk599/jobtrend/internal/model"
	"github.com/amishk599/jobtrend/internal/scheduler"
	"github.com/amishk599/jobtrend/internal/snapshot"
	"github.com/spf13/cobra"
)

// historyRetention bounds how long run history rows are kept by the daemon.
const historyRetention = 90 * 24 * time.Hour

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the collection daemon",
	Long:  "Collect immediately, then again every collect_interval; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"interval", cfg.CollectInterval.String(),
		"sources", len(cfg.EnabledSources()),
		"snapshot", cfg.SnapshotPath,
	)

	history, err := openHistory(cfg.HistoryDB)
	if err != nil {
		logger.Error("failed to open history", "error", err)
		os.Exit(1)
	}
	defer history.Close()

	coord, err := buildCoordinator(cfg, snapshot.NewCSVWriter(cfg.SnapshotPath, logger), history, logger)
	if err != nil {
		logger.Error("failed to register sources", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(coord, cfg.CollectInterval, logger)
	sched.OnRun(func(_ []model.JobRecord) {
		if err := history.Cleanup(ctx, historyRetention); err != nil {
			logger.Warn("history cleanup failed", "error", err)
		}
	})
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
