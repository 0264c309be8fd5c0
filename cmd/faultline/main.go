package main

import (
	"os"

	"github.com/spf13/cobra"

	"faultline/internal/version"
)

// newRootCmd builds the command tree with fresh flag state.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "faultline",
		Short:         "Error snapshots and readable failure reports",
		Long:          `faultline serializes thrown values into transportable snapshots and renders them as reports with stack listings and code frames`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newFrameCmd())
	rootCmd.AddCommand(newSnapshotCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Глобальные флаги
	rootCmd.PersistentFlags().String("config", "", "path to faultline.toml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().String("color", "", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug|info|warn|error|disabled)")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit logs as JSON")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	return rootCmd
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("faultline:", err)
		os.Exit(1)
	}
}
