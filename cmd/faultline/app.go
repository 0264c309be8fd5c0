package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"faultline/internal/codeframe"
	"faultline/internal/config"
	"faultline/internal/logger"
	"faultline/internal/observ"
	"faultline/internal/report"
	"faultline/internal/source"
	"faultline/internal/style"
)

// appFs backs every file the commands read or write.
var appFs afero.Fs = afero.NewOsFs()

// app is the per-invocation state shared by the commands.
type app struct {
	cfg     config.Config
	log     logger.Logger
	style   style.Styler
	timer   *observ.Timer
	cache   *source.Cache
	columns int
	timings bool
	logJSON bool
}

func setupApp(cmd *cobra.Command) (*app, error) {
	flags := cmd.Root().PersistentFlags()

	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	logJSON, err := flags.GetBool("log-json")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-json flag: %w", err)
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	colorFlag, err := flags.GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}

	a := &app{
		log: logger.NewLogger(&logger.Config{
			Level:      logger.ParseLevel(logLevel),
			Output:     cmd.ErrOrStderr(),
			JSON:       logJSON,
			TimeFormat: "15:04:05",
		}),
		timer:   observ.NewTimer(),
		cache:   source.NewCache(appFs),
		timings: timings,
		logJSON: logJSON,
	}
	cmd.SetContext(logger.ContextWithLogger(cmd.Context(), a.log))

	done := a.timer.Track("config")
	a.cfg, err = loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	done(a.cfg.Path)
	if colorFlag != "" {
		a.cfg.Color = colorFlag
		if err := a.cfg.Validate(); err != nil {
			return nil, err
		}
	}
	a.log.Debug("configuration loaded", "path", a.cfg.Path, "root", a.cfg.Root)

	out := cmd.OutOrStdout()
	a.style = pickStyler(a.cfg.Color, out)
	a.columns = a.cfg.Columns
	if a.columns <= 0 {
		a.columns = terminalWidth(out)
	}
	return a, nil
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	return config.Discover(wd)
}

func pickStyler(mode string, out io.Writer) style.Styler {
	switch mode {
	case config.ColorOn:
		return style.NewColor()
	case config.ColorOff:
		return style.Plain{}
	}
	if os.Getenv("NO_COLOR") != "" || color.NoColor {
		return style.Plain{}
	}
	if f, ok := out.(*os.File); ok && isTerminal(f) {
		return style.NewColor()
	}
	return style.Plain{}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func terminalWidth(out io.Writer) int {
	if f, ok := out.(*os.File); ok && isTerminal(f) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return codeframe.DefaultColumns
}

// reportOptions maps configuration onto composer options.
func (a *app) reportOptions() report.Options {
	opts := report.DefaultOptions()
	opts.Root = a.cfg.Root
	opts.Columns = a.columns
	opts.Range = a.cfg.CodeFrame.Range
	opts.Indent = a.cfg.CodeFrame.Indent
	opts.MaxLineLength = a.cfg.CodeFrame.MaxLineLength
	opts.Ignore = a.cfg.Stack.Ignore
	opts.FullStack = a.cfg.Stack.Full
	return opts
}

func (a *app) composer() *report.Composer {
	return report.NewComposer(a.style, a.cache, a.cfg.KnownProject, a.log)
}

// finish prints timings when requested; with --log-json they are written
// as a JSON document.
func (a *app) finish(cmd *cobra.Command) {
	if !a.timings {
		return
	}
	if a.logJSON {
		enc := json.NewEncoder(cmd.ErrOrStderr())
		if err := enc.Encode(a.timer.Report()); err != nil {
			a.log.Warn("timings not written", "error", err)
		}
		return
	}
	fmt.Fprint(cmd.ErrOrStderr(), a.timer.Summary())
}
