package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List all configured sources",
	Long:  "Reads the config and prints a table of all configured sources and search buckets.",
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

	fmt.Printf("%-12s %-10s %-10s %-20s %s\n", "Key", "Label", "Category", "Flags", "Status")
	fmt.Println(strings.Repeat("─", 62))

	enabled, disabled := 0, 0
	for _, s := range cfg.Sources {
		status := "enabled"
		if !s.Enabled {
			status = "disabled"
			disabled++
		} else {
			enabled++
		}

		var flags []string
		if s.OffSeason {
			flags = append(flags, "off-season")
		}
		if s.KeywordGated {
			flags = append(flags, "gated")
		}
		if s.DedupByLink {
			flags = append(flags, "link-dedup")
		}
		fmt.Printf("%-12s %-10s %-10s %-20s %s\n",
			s.Key, s.Label, s.Category, strings.Join(flags, ","), status)
	}

	searchStatus := "disabled"
	if cfg.Search.Enabled {
		searchStatus = "enabled"
	}
	fmt.Printf("%-12s %-10s %-10s %-20s %s\n", "search", "JS", "both", "link-dedup", searchStatus)

	fmt.Printf("\nTotal: %d sources (%d enabled, %d disabled), search %s\n",
		len(cfg.Sources), enabled, disabled, searchStatus)
	return nil
}
