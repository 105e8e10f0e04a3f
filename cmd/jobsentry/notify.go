package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobsentry/jobsentry/internal/model"
	"github.com/jobsentry/jobsentry/internal/notifier"
)

var notifyCategory string

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification",
	Long:  "Sends a test record to the configured channel for the given category.",
	RunE:  runNotifyTest,
}

func init() {
	notifyTestCmd.Flags().StringVar(&notifyCategory, "category", "intern", "channel to test (intern, newgrad, fulltime)")
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var cat model.Category
	switch notifyCategory {
	case "intern":
		cat = model.CategoryIntern
	case "newgrad":
		cat = model.CategoryNewGrad
	case "fulltime":
		cat = model.CategoryFullTime
	default:
		return fmt.Errorf("unknown category %q", notifyCategory)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	n := setupNotifier(cfg, httpClient, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := notifier.SendTestMessage(ctx, n, cat); err != nil {
		logger.Error("test notification failed", "error", err)
		os.Exit(1)
	}
	logger.Info("test notification sent successfully", "category", cat)
	return nil
}
