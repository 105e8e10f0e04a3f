package main

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one full cycle and exit",
	Long:  "Runs a single poll cycle with real delivery and ledger writes, then exits. Equivalent to start with run_once: true.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon(true)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
