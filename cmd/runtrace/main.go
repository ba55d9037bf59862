package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "runtrace",
		Short:         "Runtime observability for multi-phase batch processes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a sample multi-area workload and generate reports",
		RunE:  runDemo,
	}
	root.AddCommand(demoCmd)

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Regenerate reports from events a crashed run left in the store",
		RunE:  runReport,
	}
	reportCmd.Flags().Bool("purge", false, "purge the run's events after reporting")
	root.AddCommand(reportCmd)

	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove all events for one run from the store",
		RunE:  runPurge,
	}
	purgeCmd.Flags().Int64("run", 0, "run id to purge (required)")
	_ = purgeCmd.MarkFlagRequired("run")
	root.AddCommand(purgeCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
