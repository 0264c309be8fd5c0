package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"faultline/internal/driver"
	"faultline/internal/report"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <snapshot.mp|snapshot.json|dir>...",
		Short: "Render readable reports for error snapshots",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runReport,
	}
	cmd.Flags().String("type", "", "banner label printed above each report, e.g. \"Unhandled Rejection\"")
	cmd.Flags().Bool("no-code-frame", false, "do not print source excerpts")
	cmd.Flags().Bool("full-stack", false, "keep runtime and reporter frames")
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := setupApp(cmd)
	if err != nil {
		return err
	}
	defer a.finish(cmd)

	label, err := cmd.Flags().GetString("type")
	if err != nil {
		return fmt.Errorf("failed to get type flag: %w", err)
	}
	noCodeFrame, err := cmd.Flags().GetBool("no-code-frame")
	if err != nil {
		return fmt.Errorf("failed to get no-code-frame flag: %w", err)
	}
	fullStack, err := cmd.Flags().GetBool("full-stack")
	if err != nil {
		return fmt.Errorf("failed to get full-stack flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	opts := a.reportOptions()
	opts.Type = label
	opts.ShowCodeFrame = !noCodeFrame
	opts.FullStack = opts.FullStack || fullStack

	files, err := driver.ExpandPaths(appFs, args)
	if err != nil {
		return err
	}
	batch := &driver.Batch{
		FS:       appFs,
		Composer: a.composer(),
		Options:  opts,
		Jobs:     jobs,
		Timer:    a.timer,
	}
	results, err := batch.Run(cmd.Context(), files)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var errs []error
	for i, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
			continue
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, report.Text(r.Lines))
	}
	return errors.Join(errs...)
}
