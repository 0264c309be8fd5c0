// Package codeframe renders a windowed, line-numbered excerpt of source text
// with the failing position underlined:
//
//	  3| const a = 1
//	  4| throw new Error('boom')
//	   |       ^
//	  5| export {}
//
// Rendering is pure: the same inputs always produce the same text.
package codeframe

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

const (
	// DefaultRange is the number of lines shown above and below the target.
	DefaultRange = 2
	// DefaultColumns is used when the terminal width is unknown.
	DefaultColumns = 80
	// MaxLineLength rejects minified or generated sources.
	MaxLineLength = 200

	gutterWidth = 5 // "123| "
	ellipsis    = "…"
)

// Options tunes RenderWith. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	Range         int
	Columns       int
	MaxLineLength int
	// Span is the highlighted length in characters; 0 renders a single caret.
	Span int
	// Gutter and Marker style the line numbers and the carets. nil leaves
	// text unstyled.
	Gutter func(string) string
	Marker func(string) string
}

// DefaultOptions returns the options used by Render.
func DefaultOptions() Options {
	return Options{
		Range:         DefaultRange,
		Columns:       DefaultColumns,
		MaxLineLength: MaxLineLength,
	}
}

// Render excerpts source around the 1-based line and column. An empty result
// means nothing should be shown.
func Render(source string, indent, line, column int) string {
	return RenderWith(source, indent, line, column, DefaultOptions())
}

// RenderWith is Render with explicit options.
func RenderWith(source string, indent, line, column int, opts Options) string {
	lines := splitLines(source)
	if line < 1 || line > len(lines) {
		return ""
	}
	lengths := make([]int, len(lines))
	for i, l := range lines {
		lengths[i] = utf8.RuneCountInString(l)
	}
	// позиция сразу за последним символом строки допустима
	if column < 1 || column > lengths[line-1]+1 {
		return ""
	}

	start := column
	for i := 0; i < line-1; i++ {
		start += lengths[i] + 1
	}
	end := start + max(opts.Span, 0)

	maxLen := opts.MaxLineLength
	if maxLen <= 0 {
		maxLen = MaxLineLength
	}
	columns := opts.Columns
	if columns <= 0 {
		columns = DefaultColumns
	}
	width := max(columns-gutterWidth-indent, 1)
	gutter := styler(opts.Gutter)
	marker := styler(opts.Marker)
	lineNo := func(no int) string {
		label := ""
		if no > 0 {
			label = fmt.Sprint(no)
		}
		return gutter(fmt.Sprintf("%3s| ", label))
	}

	var res []string
	count := 0
	for i := range lines {
		count += lengths[i] + 1
		if count < start {
			continue
		}
		for j := i - max(opts.Range, 0); j <= i+max(opts.Range, 0) || end > count; j++ {
			if j < 0 {
				continue
			}
			if j >= len(lines) {
				break
			}
			n := lengths[j]
			if n > maxLen {
				return ""
			}
			res = append(res, lineNo(j+1)+truncate(strings.ReplaceAll(lines[j], "\t", " "), width))

			switch {
			case j == i:
				pad := start - (count - n)
				length := end - start
				if end > count {
					length = n - pad
				}
				res = append(res, lineNo(0)+strings.Repeat(" ", pad)+marker(strings.Repeat("^", max(1, length))))
			case j > i:
				if end > count {
					length := max(1, min(end-count, n))
					res = append(res, lineNo(0)+marker(strings.Repeat("^", length)))
				}
				count += n + 1
			}
		}
		break
	}

	if indent > 0 {
		prefix := strings.Repeat(" ", indent)
		for k := range res {
			res[k] = prefix + res[k]
		}
	}
	return strings.Join(res, "\n")
}

// splitLines splits on \r\n, \n and lone \r; every break counts as one
// character in offset math.
func splitLines(source string) []string {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	source = strings.ReplaceAll(source, "\r", "\n")
	return strings.Split(source, "\n")
}

func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, ellipsis)
}

func styler(fn func(string) string) func(string) string {
	if fn == nil {
		return func(s string) string { return s }
	}
	return fn
}
