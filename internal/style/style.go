// Package style keeps colour and width policy away from the report
// composer. Everything the composer prints goes through a Styler.
package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Dash is the divider glyph.
const Dash = "⎯"

// Styler paints report fragments.
type Styler interface {
	Error(s string) string
	Warn(s string) string
	Muted(s string) string
	Dim(s string) string
	Bold(s string) string
	Success(s string) string
	// Rule draws a divider of the given width with label centred in it.
	// An empty label gives a plain divider.
	Rule(label string, width int) string
}

var titleCaser = cases.Title(language.English)

// Label normalises a banner label: surrounding space trimmed, runs of
// separators collapsed and every word capitalised.
func Label(s string) string {
	s = strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-' || r == '\t'
	}), " ")
	return titleCaser.String(s)
}

// divider lays out left dashes, label, right dashes. Widths are measured
// without ANSI sequences.
func divider(label string, width int, dash func(string) string) string {
	if label == "" {
		return dash(strings.Repeat(Dash, max(width, 0)))
	}
	text := lipgloss.Width(label)
	left := max((width-text)/2, 0)
	right := max(width-text-left, 0)
	return dash(strings.Repeat(Dash, left)) + label + dash(strings.Repeat(Dash, right))
}
