package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/jobsentry/jobsentry/internal/scheduler"
	"github.com/jobsentry/jobsentry/internal/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the polling daemon",
	Long:  "Start the scheduler daemon; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	return runDaemon(false)
}

// runDaemon is the shared body of `start` and `run`. forceOnce overrides the
// config's run_once setting for a single immediate cycle.
func runDaemon(forceOnce bool) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if forceOnce {
		cfg.RunOnce = true
	}

	// Real delivery needs at least one webhook. The log-notifier fallback
	// is for check and notify test, not the daemon.
	if len(cfg.Channels) == 0 {
		logger.Error("no delivery channels configured")
		os.Exit(1)
	}

	logger.Info("config loaded",
		"interval", cfg.Interval.String(),
		"sources", len(cfg.Sources),
		"search", cfg.Search.Enabled,
		"channels", len(cfg.Channels),
	)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error("failed to create data dir", "error", err)
		os.Exit(1)
	}

	// One daemon per data dir. A second instance racing the same ledger
	// would double-post inside the delivery-then-admit window.
	lock := flock.New(filepath.Join(cfg.DataDir, "jobsentry.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		logger.Error("failed to acquire lock", "error", err)
		os.Exit(1)
	}
	if !locked {
		logger.Error("another instance is already running", "data_dir", cfg.DataDir)
		os.Exit(1)
	}
	defer lock.Unlock()

	sqlStore, err := store.NewSQLiteStore(filepath.Join(cfg.DataDir, "posted.db"))
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	chain, err := buildFilterChain(cfg)
	if err != nil {
		logger.Error("failed to build filter chain", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	n := setupNotifier(cfg, httpClient, logger)

	pollers, err := buildPollers(cfg, chain, sqlStore, n, httpClient, logger)
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

	sched := scheduler.NewScheduler(pollers, cfg.Interval, cfg.RunOnce, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
