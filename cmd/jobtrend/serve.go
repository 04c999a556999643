package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/amishk599/jobtrend/internal/api"
	"github.com/amishk599/jobtrend/internal/collector"
	"github.com/amishk599/jobtrend/internal/snapshot"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the aggregate as a JSON feed",
	Long:  "Starts the feed API. The last snapshot is served until cache_ttl passes, then the next request triggers a fresh collection.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: serve.addr from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	addr := cfg.Serve.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

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

	cached := collector.NewCached(coord, cfg.CacheTTL)
	seedFromSnapshot(cached, cfg.SnapshotPath, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(cached, coord.Sources(), logger)
	if err := server.Run(ctx, addr); err != nil {
		logger.Error("feed api error", "error", err)
		os.Exit(1)
	}
	return nil
}

// seedFromSnapshot primes the cache with the snapshot on disk, timestamped by
// its modification time.
func seedFromSnapshot(cached *collector.Cached, path string, logger *slog.Logger) {
	records, err := snapshot.Read(path)
	if errors.Is(err, snapshot.ErrNoSnapshot) {
		logger.Info("no snapshot yet, first request will collect", "path", path)
		return
	}
	if err != nil {
		logger.Warn("failed to read snapshot", "path", path, "error", err)
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		logger.Warn("failed to stat snapshot", "path", path, "error", err)
		return
	}
	cached.Seed(records, info.ModTime())
	logger.Info("seeded feed from snapshot", "path", path, "count", len(records))
}
