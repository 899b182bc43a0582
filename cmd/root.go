// Package cmd defines and implements the CLI commands for the pagewatch executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pagewatch",
		Short: "A polling change detector for a fixed set of public pages.",
		Long: `pagewatch fetches a small configured set of public web pages, detects
content changes by fingerprint, archives raw snapshots and human-readable
diffs, and regenerates a static landing page listing recent changes.

It runs one pass per invocation; scheduling is left to cron or CI.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml if present)")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose progress logging")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
