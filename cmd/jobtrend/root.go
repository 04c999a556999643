package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/amishk599/jobtrend/internal/adapter"
	"github.com/amishk599/jobtrend/internal/collector"
	"github.com/amishk599/jobtrend/internal/config"
	"github.com/amishk599/jobtrend/internal/model"
	"github.com/amishk599/jobtrend/internal/ratelimit"
	"github.com/amishk599/jobtrend/internal/store"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobtrend",
	Short: "Remote job board aggregator",
	Long:  "jobtrend collects remote job postings from public boards into one CSV snapshot.",
	// Bare `jobtrend` runs a single collection.
	RunE: runCollect,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBTREND_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBTREND_CONFIG env var > "./config.yaml".
// Only the implicit default may be missing, in which case built-in defaults apply.
func loadConfig(path string) (*config.Config, error) {
	explicit := path != ""
	if !explicit {
		if env := os.Getenv("JOBTREND_CONFIG"); env != "" {
			path = env
			explicit = true
		} else {
			path = "config.yaml"
		}
	}
	return config.LoadOrDefault(path, explicit)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// silentLogger is used while a TUI owns the terminal; any log output before
// the alt-screen starts corrupts the display.
func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// openHistory opens the run history database, creating its directory.
func openHistory(path string) (*store.SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	return store.NewSQLiteStore(path)
}

// buildCoordinator registers every enabled source behind one shared per-host
// limiter. snap and recorder may be nil.
func buildCoordinator(cfg *config.Config, snap model.SnapshotWriter, recorder model.RunRecorder, logger *slog.Logger) (*collector.Coordinator, error) {
	limiter := ratelimit.NewHostLimiter(cfg.RateLimit.MinDelay)
	logger.Debug("rate limiter configured", "min_delay", cfg.RateLimit.MinDelay.String())

	specs := cfg.SourceSpecs()
	collectors, err := adapter.Build(specs, limiter, logger)
	if err != nil {
		return nil, err
	}
	for i, c := range collectors {
		logger.Debug("registered source",
			"source", c.Name(),
			"attempts", specs[i].Policy.Attempts,
			"politeness", specs[i].Policy.Politeness.String(),
		)
	}
	return collector.NewCoordinator(collectors, snap, recorder, logger), nil
}

// enabledTags returns the record tags of the enabled sources in order.
func enabledTags(cfg *config.Config) []string {
	var tags []string
	for _, s := range cfg.EnabledSources() {
		if tag, ok := adapter.SourceTag(s.Name); ok {
			tags = append(tags, tag)
		}
	}
	return tags
}
