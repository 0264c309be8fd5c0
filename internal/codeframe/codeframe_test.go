package codeframe

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tenLines() string {
	var b strings.Builder
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func gutterRows(frame string) (numbered, underline int) {
	for _, row := range strings.Split(frame, "\n") {
		switch {
		case strings.HasPrefix(strings.TrimLeft(row, " "), "|"):
			underline++
		case strings.Contains(row, "| "):
			numbered++
		}
	}
	return numbered, underline
}

func TestRenderWindow(t *testing.T) {
	cases := []struct {
		name     string
		line     int
		numbered int
	}{
		{"middle", 5, 5},
		{"first line clamps above", 1, 3},
		{"second line", 2, 4},
		{"last line clamps below", 10, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			frame := Render(tenLines(), 0, tc.line, 3)
			numbered, underline := gutterRows(frame)
			assert.Equal(t, tc.numbered, numbered)
			assert.Equal(t, 1, underline)
		})
	}
}

func TestRenderLayout(t *testing.T) {
	t.Run("Should underline the target column directly below the line", func(t *testing.T) {
		src := "a\nbb\nccc\ndddd\neeeee"
		want := strings.Join([]string{
			"  1| a",
			"  2| bb",
			"  3| ccc",
			"   |  ^",
			"  4| dddd",
			"  5| eeeee",
		}, "\n")
		assert.Equal(t, want, Render(src, 0, 3, 2))
	})

	t.Run("Should indent every row", func(t *testing.T) {
		frame := Render("x = 1", 4, 1, 1)
		assert.Equal(t, "      1| x = 1\n       | ^", frame)
	})

	t.Run("Should extend carets over a span that continues on the next line", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Span = 5
		want := strings.Join([]string{
			"  1| abc",
			"   |  ^^",
			"  2| def",
			"   | ^^^",
		}, "\n")
		assert.Equal(t, want, RenderWith("abc\ndef", 0, 1, 2, opts))
	})

	t.Run("Should render tabs as single spaces", func(t *testing.T) {
		frame := Render("\tfoo()", 0, 1, 2)
		assert.Equal(t, "  1|  foo()\n   |  ^", frame)
	})

	t.Run("Should treat CRLF and lone CR as line breaks", func(t *testing.T) {
		frame := Render("a\r\nb\rc", 0, 3, 1)
		assert.Equal(t, "  1| a\n  2| b\n  3| c\n   | ^", frame)
	})

	t.Run("Should apply styling hooks", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Marker = func(s string) string { return "<" + s + ">" }
		frame := RenderWith("ab", 0, 1, 2, opts)
		assert.Equal(t, "  1| ab\n   |  <^>", frame)
	})
}

func TestRenderTruncation(t *testing.T) {
	opts := DefaultOptions()
	opts.Columns = 20
	long := strings.Repeat("x", 40)
	frame := RenderWith(long, 0, 1, 1, opts)
	rows := strings.Split(frame, "\n")
	require.Len(t, rows, 2)
	assert.True(t, strings.HasSuffix(rows[0], "…"))
	assert.LessOrEqual(t, runewidth.StringWidth(rows[0]), 20)
}

func TestRenderDegrades(t *testing.T) {
	t.Run("Should skip minified sources", func(t *testing.T) {
		src := "ok\n" + strings.Repeat("m", 201) + "\nok"
		assert.Equal(t, "", Render(src, 0, 1, 1))
	})

	t.Run("Should accept lines at the length limit", func(t *testing.T) {
		src := strings.Repeat("m", 200)
		assert.NotEmpty(t, Render(src, 0, 1, 1))
	})

	t.Run("Should return nothing for positions outside the source", func(t *testing.T) {
		assert.Equal(t, "", Render("a\nb", 0, 0, 1))
		assert.Equal(t, "", Render("a\nb", 0, 3, 1))
	})

	t.Run("Should return nothing for columns outside the line", func(t *testing.T) {
		assert.Equal(t, "", Render("ab", 0, 1, 99))
		assert.Equal(t, "", Render("ab\ncdef", 0, 1, 4))
		assert.Equal(t, "", Render("ab", 0, 1, 0))
	})

	t.Run("Should accept the position just past the line end", func(t *testing.T) {
		assert.Equal(t, "  1| ab\n   |   ^", Render("ab", 0, 1, 3))
	})

	t.Run("Should be repeatable", func(t *testing.T) {
		src := tenLines()
		assert.Equal(t, Render(src, 2, 4, 2), Render(src, 2, 4, 2))
	})
}
