package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/amishk599/jobtrend/internal/adapter"
	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List all configured sources",
	Long:  "Reads the config and prints a table of all configured sources with their effective endpoint and retry policy.",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-18s %-10s %-9s %-11s %s\n", "Source", "Status", "Attempts", "Politeness", "URL")
	fmt.Println(strings.Repeat("─", 100))

	enabled, disabled := 0, 0
	for _, s := range cfg.Sources {
		status := "enabled"
		if !s.Enabled {
			status = "disabled"
			disabled++
		} else {
			enabled++
		}

		tag, _ := adapter.SourceTag(s.Name)
		attempts := cfg.Retry.Attempts
		if s.Attempts > 0 {
			attempts = s.Attempts
		}
		politeness := adapter.DefaultPoliteness(s.Name)
		if s.Politeness > 0 {
			politeness = s.Politeness
		}
		url := s.URL
		if url == "" {
			url = adapter.DefaultURL(s.Name)
		}
		fmt.Printf("%-18s %-10s %-9d %-11s %s\n", tag, status, attempts, politeness, url)
	}

	fmt.Printf("\nTotal: %d sources (%d enabled, %d disabled)\n", len(cfg.Sources), enabled, disabled)
	return nil
}
