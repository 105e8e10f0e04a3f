package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobsentry/jobsentry/internal/notifier"
	"github.com/jobsentry/jobsentry/internal/store"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Poll once, print matches, exit",
	Long:  "One-shot poll: fetches every source, logs what would be posted, exits. Nothing is delivered or written to the ledger.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("check mode: nothing will be delivered or marked as posted")

	chain, err := buildFilterChain(cfg)
	if err != nil {
		logger.Error("failed to build filter chain", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	// Log-only notifier and a store that remembers nothing.
	n := notifier.NewLogNotifier(logger)
	pollers, err := buildPollers(cfg, chain, store.NewNopStore(), n, httpClient, logger)
	if err != nil {
		logger.Error("failed to build pollers", "error", err)
		os.Exit(1)
	}
	if len(pollers) == 0 {
		logger.Error("no sources to poll")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, p := range pollers {
		if _, err := p.Poll(ctx); err != nil {
			logger.Error("poll failed", "source", p.Name, "error", err)
		}
	}

	logger.Info("check complete")
	return nil
}
