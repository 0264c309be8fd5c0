package main

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"faultline/internal/driver"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot <input.json|->",
		Short: "Serialize a JSON error document into a transportable snapshot",
		Long: `Import a JSON document describing a thrown value, serialize it and write it
as msgpack (lossless, keeps array holes), ordered JSON or an indented text dump.
Without --format the format follows the -o extension; stdout defaults to text.`,
		Args: cobra.ExactArgs(1),
		RunE: runSnapshot,
	}
	cmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	cmd.Flags().String("format", "", "output format (mp|json|text)")
	return cmd
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	a, err := setupApp(cmd)
	if err != nil {
		return err
	}
	defer a.finish(cmd)

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format == "" {
		format = driver.FormatText
		if output != "" {
			format = driver.FormatFor(output)
		}
	}

	done := a.timer.Track("import")
	var data []byte
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = afero.ReadFile(appFs, args[0])
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	v, err := driver.ImportJSON(data)
	done("")
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	done = a.timer.Track("encode " + format)
	out, err := driver.Encode(v, format)
	done("")
	if err != nil {
		return err
	}

	if output == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := afero.WriteFile(appFs, output, out, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	a.log.Info("snapshot written", "path", output, "format", format, "bytes", len(out))
	return nil
}
