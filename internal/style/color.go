package style

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/muesli/termenv"
)

// Color paints with ANSI escapes regardless of the global colour
// detection; pick Plain when colours are off.
type Color struct {
	red, yellow, gray, dim, bold, green *color.Color
	banner                              lipgloss.Style
}

var _ Styler = (*Color)(nil)

// NewColor creates an ANSI Styler.
func NewColor() *Color {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		c.EnableColor()
		return c
	}
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.ANSI)
	return &Color{
		red:    mk(color.FgRed),
		yellow: mk(color.FgYellow),
		gray:   mk(color.FgHiBlack),
		dim:    mk(color.Faint),
		bold:   mk(color.Bold),
		green:  mk(color.FgGreen),
		banner: r.NewStyle().
			Bold(true).
			Reverse(true).
			Foreground(lipgloss.Color("1")).
			Padding(0, 1),
	}
}

func (c *Color) Error(s string) string   { return c.red.Sprint(s) }
func (c *Color) Warn(s string) string    { return c.yellow.Sprint(s) }
func (c *Color) Muted(s string) string   { return c.gray.Sprint(s) }
func (c *Color) Dim(s string) string     { return c.dim.Sprint(s) }
func (c *Color) Bold(s string) string    { return c.bold.Sprint(s) }
func (c *Color) Success(s string) string { return c.green.Sprint(s) }

func (c *Color) Rule(label string, width int) string {
	if label != "" {
		label = c.banner.Render(label)
	}
	return divider(label, width, c.Error)
}
