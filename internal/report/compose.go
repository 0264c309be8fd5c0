package report

import (
	"fmt"
	"strings"

	"faultline/internal/codeframe"
	"faultline/internal/logger"
	"faultline/internal/serialize"
	"faultline/internal/source"
	"faultline/internal/stack"
	"faultline/internal/style"
)

// Pointer prefixes every stack listing line.
const Pointer = "❯"

// Options controls one Compose call.
type Options struct {
	// Type is the banner label, e.g. "Unhandled Rejection". Empty skips the
	// banner.
	Type          string
	ShowCodeFrame bool
	// FullStack keeps frames that Ignore would drop.
	FullStack bool
	Ignore    []string
	// Root is the base for relative paths in the stack listing.
	Root          string
	Columns       int
	Range         int
	Indent        int
	MaxLineLength int
}

// DefaultOptions returns the options of a top-level report.
func DefaultOptions() Options {
	return Options{
		ShowCodeFrame: true,
		Ignore:        stack.DefaultIgnore,
		Columns:       codeframe.DefaultColumns,
		Range:         codeframe.DefaultRange,
		Indent:        4,
		MaxLineLength: codeframe.MaxLineLength,
	}
}

func (o Options) width() int {
	if o.Columns <= 0 {
		return codeframe.DefaultColumns
	}
	return o.Columns
}

// Composer builds reports. It is safe for concurrent use when its source
// cache is.
type Composer struct {
	style  style.Styler
	source *source.Cache
	known  stack.Predicate
	log    logger.Logger
}

// NewComposer wires a composer. known decides whether a file belongs to a
// project worth a code frame; nil accepts every file. Nil styler, cache and
// logger get plain, OS-backed and discarding defaults.
func NewComposer(st style.Styler, cache *source.Cache, known stack.Predicate, log logger.Logger) *Composer {
	if st == nil {
		st = style.Plain{}
	}
	if cache == nil {
		cache = source.NewCache(nil)
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Composer{style: st, source: cache, known: known, log: log}
}

// Frames returns the stack frames of rec and the index of the frame that
// gets a code frame, -1 for none.
func (c *Composer) Frames(rec Record, opts Options) ([]stack.Frame, int) {
	frames := rec.Stacks
	if len(frames) == 0 {
		frames = stack.Parse(rec.Stack, stack.ParseOptions{Ignore: opts.Ignore, Full: opts.FullStack})
	}
	if rec.TypeCheck() {
		return frames, stack.SelectTypeCheck(frames)
	}
	return frames, stack.Select(frames, c.known, c.source.Exists)
}

// Compose renders the full report for rec as lines.
func (c *Composer) Compose(rec Record, opts Options) []string {
	frames, selected := c.Frames(rec, opts)
	return c.ComposeSelected(rec, frames, selected, opts)
}

// ComposeSelected renders rec with an explicit frame list and selection.
// Sections that cannot be produced are skipped; the rest is always emitted.
func (c *Composer) ComposeSelected(rec Record, frames []stack.Frame, selected int, opts Options) []string {
	st := c.style
	var lines []string

	if opts.Type != "" {
		lines = append(lines, "", st.Rule(style.Label(opts.Type), opts.width()))
	}
	lines = append(lines, st.Error(st.Bold(rec.DisplayName())+": "+rec.Message))

	if rec.Frame != "" {
		lines = appendText(lines, rec.Frame, st.Warn)
	} else {
		for i, f := range frames {
			lines = append(lines, c.frameLine(f, i == selected, opts))
			if i == selected && opts.ShowCodeFrame {
				lines = append(lines, c.codeFrame(f, opts)...)
			}
		}
		if len(frames) > 0 {
			lines = append(lines, "")
		}
	}

	lines = append(lines, attributionLines(rec, st)...)

	if rec.Cause != nil {
		cause := *rec.Cause
		cause.Name = "Caused by: " + cause.DisplayName()
		nested := opts
		nested.Type = ""
		nested.ShowCodeFrame = false
		lines = append(lines, c.Compose(cause, nested)...)
	}

	if hint, ok := DetectESM(rec.Stack); ok {
		lines = append(lines, esmLines(hint, st)...)
	}

	if len(rec.Properties.Fields()) > 0 {
		lines = append(lines, st.Error(st.Dim(st.Rule("", opts.width()))))
		dump := serialize.Stringify(rec.Properties, serialize.DefaultStringifyDepth)
		head, rest, _ := strings.Cut(dump, "\n")
		lines = append(lines, st.Error(st.Bold("Serialized Error:"))+" "+st.Muted(head))
		if rest != "" {
			lines = appendText(lines, rest, st.Muted)
		}
	}

	if rec.Diff != "" {
		lines = append(lines, strings.Split(rec.Diff, "\n")...)
	}
	return lines
}

func (c *Composer) frameLine(f stack.Frame, highlight bool, opts Options) string {
	paint := c.style.Muted
	if highlight {
		paint = c.style.Warn
	}
	loc := fmt.Sprintf("%s:%d:%d", source.DisplayPath(f.File, opts.Root), f.Line, f.Column)
	parts := []string{" " + c.style.Dim(Pointer)}
	if f.Method != "" {
		parts = append(parts, f.Method)
	}
	parts = append(parts, c.style.Dim(loc))
	return paint(strings.Join(parts, " "))
}

func (c *Composer) codeFrame(f stack.Frame, opts Options) []string {
	text, err := c.source.Text(f.File)
	if err != nil {
		if source.IsNotExist(err) {
			c.log.Debug("code frame skipped", "file", f.File, "error", err)
		} else {
			c.log.Warn("code frame skipped", "file", f.File, "error", err)
		}
		return nil
	}
	frame := codeframe.RenderWith(text, opts.Indent, f.Line, f.Column, codeframe.Options{
		Range:         opts.Range,
		Columns:       opts.width(),
		MaxLineLength: opts.MaxLineLength,
		Gutter:        c.style.Muted,
		Marker:        c.style.Error,
	})
	if frame == "" {
		c.log.Debug("code frame empty", "file", f.File, "line", f.Line, "column", f.Column)
		return nil
	}
	return strings.Split(frame, "\n")
}

func appendText(lines []string, text string, paint func(string) string) []string {
	for _, l := range strings.Split(text, "\n") {
		lines = append(lines, paint(l))
	}
	return lines
}

// Text joins report lines for printing.
func Text(lines []string) string {
	return strings.Join(lines, "\n")
}
