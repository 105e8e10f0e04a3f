package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobsentry/jobsentry/internal/adapter"
	"github.com/jobsentry/jobsentry/internal/audit"
	"github.com/jobsentry/jobsentry/internal/config"
	"github.com/jobsentry/jobsentry/internal/store"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Browse a source's listings interactively (TUI)",
	Long:  "Shows the source picker TUI, then a split-pane view of what the source lists versus what would actually be posted.",
	RunE:  runAuditCmd,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func runAuditCmd(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	chain, err := buildFilterChain(cfg)
	if err != nil {
		logger.Error("failed to build filter chain", "error", err)
		os.Exit(1)
	}

	var enabled []config.SourceConfig
	for _, s := range cfg.Sources {
		if s.Enabled && s.URL != "" {
			enabled = append(enabled, s)
		}
	}
	if len(enabled) == 0 {
		fmt.Println("No enabled sources in config.")
		return nil
	}

	// The ledger may not exist yet; audit against an empty one is fine.
	var posted []store.PostedJob
	dbPath := filepath.Join(cfg.DataDir, "posted.db")
	if _, err := os.Stat(dbPath); err == nil {
		sqlStore, err := store.NewSQLiteStore(dbPath)
		if err != nil {
			fmt.Printf("Error opening ledger: %v\n", err)
			os.Exit(1)
		}
		posted, err = sqlStore.All(context.Background())
		sqlStore.Close()
		if err != nil {
			fmt.Printf("Error reading ledger: %v\n", err)
			os.Exit(1)
		}
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	for {
		choice, err := audit.RunSourcePicker(enabled)
		if err != nil {
			fmt.Printf("Picker error: %v\n", err)
			return nil
		}
		if choice < 0 {
			return nil
		}
		src := enabled[choice]

		// No keyword gate in audit mode: the full list should be visible,
		// with gate rejections shown as filter verdicts would be.
		fetcher := adapter.NewListSource(src.Label, src.URL, src.ParsedCategory(), src.OffSeason, nil, httpClient)

		records, err := audit.RunLoader(src.Label, fetcher.FetchRecords)
		if err != nil {
			fmt.Printf("Error fetching listings: %v\n", err)
			continue
		}

		entries := audit.Classify(records, chain, posted)

		wantQuit, err := audit.RunAuditTUI(entries)
		if err != nil {
			fmt.Printf("TUI error: %v\n", err)
		}
		if wantQuit {
			return nil
		}
		// else: loop → back to picker
	}
}
