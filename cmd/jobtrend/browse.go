package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/amishk599/jobtrend/internal/browse"
	"github.com/amishk599/jobtrend/internal/config"
	"github.com/amishk599/jobtrend/internal/model"
	"github.com/amishk599/jobtrend/internal/snapshot"
	"github.com/spf13/cobra"
)

var browseLive bool

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse jobs interactively (TUI)",
	Long:  "Shows the source picker, then the job list for the chosen source. Reads the snapshot unless --live is given.",
	RunE:  runBrowseCmd,
}

func init() {
	browseCmd.Flags().BoolVar(&browseLive, "live", false, "collect fresh records before browsing (also replaces the snapshot)")
	rootCmd.AddCommand(browseCmd)
}

func runBrowseCmd(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	records, err := browseRecords(cfg)
	if err != nil {
		fmt.Printf("Error loading jobs: %v\n", err)
		return nil
	}
	if len(records) == 0 {
		fmt.Println("No jobs to browse.")
		return nil
	}

	runBrowse(records, enabledTags(cfg))
	return nil
}

func browseRecords(cfg *config.Config) ([]model.JobRecord, error) {
	if !browseLive {
		records, err := snapshot.Read(cfg.SnapshotPath)
		if errors.Is(err, snapshot.ErrNoSnapshot) {
			return nil, fmt.Errorf("no snapshot at %s; run `jobtrend collect` or use --live", cfg.SnapshotPath)
		}
		return records, err
	}

	logger := silentLogger()
	history, err := openHistory(cfg.HistoryDB)
	if err != nil {
		return nil, err
	}
	defer history.Close()

	coord, err := buildCoordinator(cfg, snapshot.NewCSVWriter(cfg.SnapshotPath, logger), history, logger)
	if err != nil {
		return nil, err
	}
	label := fmt.Sprintf("%d sources", len(coord.Sources()))
	return browse.RunLoader(label, coord.RunAll)
}

func runBrowse(records []model.JobRecord, sources []string) {
	options := browse.SourceOptions(records, sources)
	for {
		choice, err := browse.RunSourcePicker(options)
		if err != nil {
			fmt.Printf("Picker error: %v\n", err)
			return
		}
		if choice < 0 {
			return
		}
		opt := options[choice]

		wantQuit, err := browse.RunBrowser(opt.Name, browse.BySource(records, opt))
		if err != nil {
			fmt.Printf("TUI error: %v\n", err)
		}
		if wantQuit {
			return
		}
		// else: loop → back to picker
	}
}
