package main

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"faultline/internal/codeframe"
	"faultline/internal/source"
)

var errNothingRendered = errors.New("nothing to render")

func newFrameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frame <file|-> (--line L [--column C] | --offset N)",
		Short: "Print a code frame for a position in a source file",
		Args:  cobra.ExactArgs(1),
		RunE:  runFrame,
	}
	cmd.Flags().Int("line", 0, "1-based line number")
	cmd.Flags().Int("column", 1, "1-based column number")
	cmd.Flags().Int("range", 0, "lines shown around the target (default from config)")
	cmd.Flags().Int("indent", 0, "indentation of every row")
	cmd.Flags().Int("span", 0, "number of characters to underline")
	cmd.Flags().Int("offset", -1, "0-based byte offset in the normalized text, instead of --line/--column")
	cmd.MarkFlagsMutuallyExclusive("line", "offset")
	cmd.MarkFlagsOneRequired("line", "offset")
	return cmd
}

func runFrame(cmd *cobra.Command, args []string) error {
	a, err := setupApp(cmd)
	if err != nil {
		return err
	}
	defer a.finish(cmd)

	line, err := cmd.Flags().GetInt("line")
	if err != nil {
		return fmt.Errorf("failed to get line flag: %w", err)
	}
	column, err := cmd.Flags().GetInt("column")
	if err != nil {
		return fmt.Errorf("failed to get column flag: %w", err)
	}
	span, err := cmd.Flags().GetInt("span")
	if err != nil {
		return fmt.Errorf("failed to get span flag: %w", err)
	}
	rng := a.cfg.CodeFrame.Range
	if cmd.Flags().Changed("range") {
		if rng, err = cmd.Flags().GetInt("range"); err != nil {
			return fmt.Errorf("failed to get range flag: %w", err)
		}
	}
	indent, err := cmd.Flags().GetInt("indent")
	if err != nil {
		return fmt.Errorf("failed to get indent flag: %w", err)
	}

	done := a.timer.Track("read " + args[0])
	file, err := loadFrameSource(a.cache, args[0], cmd.InOrStdin())
	done("")
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("offset") {
		offset, err := cmd.Flags().GetInt("offset")
		if err != nil {
			return fmt.Errorf("failed to get offset flag: %w", err)
		}
		if offset < 0 || offset > len(file.Content) {
			return fmt.Errorf("%s: offset %d: %w", args[0], offset, source.ErrPosition)
		}
		pos := file.Position(uint32(offset)) // #nosec G115 -- bounded by len(file.Content)
		line = int(pos.Line)
		// Position считает байты, code frame ждёт колонку в рунах
		prefix := file.Line(line)[:int(pos.Col)-1]
		column = utf8.RuneCountInString(prefix) + 1
	}
	if line < 1 || line > file.LineCount() {
		return fmt.Errorf("%s:%d: %w (%d lines)", args[0], line, source.ErrPosition, file.LineCount())
	}
	text := string(file.Content)

	done = a.timer.Track("render")
	frame := codeframe.RenderWith(text, indent, line, column, codeframe.Options{
		Range:         rng,
		Columns:       a.columns,
		MaxLineLength: a.cfg.CodeFrame.MaxLineLength,
		Span:          span,
		Gutter:        a.style.Muted,
		Marker:        a.style.Error,
	})
	done("")
	if frame == "" {
		return fmt.Errorf("%s:%d:%d: %w", args[0], line, column, errNothingRendered)
	}
	fmt.Fprintln(cmd.OutOrStdout(), frame)
	return nil
}

// loadFrameSource reads path through the cache; "-" registers stdin as a
// virtual file.
func loadFrameSource(cache *source.Cache, path string, stdin io.Reader) (*source.File, error) {
	if path != "-" {
		return cache.Load(path)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return cache.AddVirtual("<stdin>", data)
}
