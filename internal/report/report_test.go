package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faultline/internal/logger"
	"faultline/internal/serialize"
	"faultline/internal/source"
	"faultline/internal/stack"
	"faultline/internal/style"
	"faultline/internal/value"
)

const appSource = `const a = 1
function boom() {
  throw new Error('boom')
}
boom()`

const appStack = `Error: boom
    at boom (/proj/src/app.ts:3:9)
    at /proj/src/app.ts:5:1
    at run (/proj/node_modules/lib/index.js:1:1)
    at node:internal/main/run_main_module:23:47`

func newComposer(t *testing.T, log logger.Logger) *Composer {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/src/app.ts", []byte(appSource), 0o644))
	known := func(file string) bool { return strings.HasPrefix(file, "/proj/src/") }
	return NewComposer(style.Plain{}, source.NewCache(fs), known, log)
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Root = "/proj"
	return opts
}

func errorValue(name, message, stackText string) serialize.Value {
	v := serialize.NewRecord()
	v.Set("name", serialize.Str(name))
	v.Set("message", serialize.Str(message))
	if stackText != "" {
		v.Set("stack", serialize.Str(stackText))
	}
	return v
}

func indexOf(lines []string, pred func(string) bool) int {
	for i, l := range lines {
		if pred(l) {
			return i
		}
	}
	return -1
}

func TestCompose(t *testing.T) {
	t.Run("Should list frames with a code frame under the selected one", func(t *testing.T) {
		c := newComposer(t, nil)
		rec := FromValue(errorValue("Error", "boom", appStack))
		want := strings.Join([]string{
			"Error: boom",
			" ❯ boom src/app.ts:3:9",
			"      1| const a = 1",
			"      2| function boom() {",
			"      3|   throw new Error('boom')",
			"       |         ^",
			"      4| }",
			"      5| boom()",
			" ❯ src/app.ts:5:1",
			" ❯ run node_modules/lib/index.js:1:1",
			"",
		}, "\n")
		assert.Equal(t, want, Text(c.Compose(rec, testOptions())))
	})

	t.Run("Should keep runtime frames in full stack mode", func(t *testing.T) {
		c := newComposer(t, nil)
		opts := testOptions()
		opts.FullStack = true
		opts.ShowCodeFrame = false
		out := Text(c.Compose(FromValue(errorValue("Error", "boom", appStack)), opts))
		assert.Contains(t, out, "node:internal/main/run_main_module:23:47")
	})

	t.Run("Should fall back to the unknown error name", func(t *testing.T) {
		c := newComposer(t, nil)
		rec := FromValue(errorValue("", "boom", ""))
		assert.Equal(t, []string{"Unknown Error: boom"}, c.Compose(rec, testOptions()))

		v := errorValue("", "boom", "")
		v.Set("nameStr", serialize.Str("CustomError"))
		assert.Equal(t, "CustomError: boom", c.Compose(FromValue(v), testOptions())[0])
	})

	t.Run("Should print a banner for a type label", func(t *testing.T) {
		c := newComposer(t, nil)
		opts := testOptions()
		opts.Type = "unhandled rejection"
		opts.Columns = 40
		lines := c.Compose(FromValue(errorValue("Error", "boom", "")), opts)
		require.GreaterOrEqual(t, len(lines), 3)
		assert.Equal(t, "", lines[0])
		assert.Contains(t, lines[1], " Unhandled Rejection ")
		assert.True(t, strings.HasPrefix(lines[1], style.Dash))
		assert.Equal(t, "Error: boom", lines[2])
	})

	t.Run("Should print a supplied frame instead of the stack", func(t *testing.T) {
		c := newComposer(t, nil)
		v := errorValue("Error", "boom", appStack)
		v.Set("frame", serialize.Str("custom\nframe"))
		lines := c.Compose(FromValue(v), testOptions())
		assert.Equal(t, []string{"Error: boom", "custom", "frame"}, lines)
	})

	t.Run("Should skip the code frame when the file cannot be read", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.NewLogger(&logger.Config{Level: logger.DebugLevel, Output: &buf})
		c := newComposer(t, log)
		rec := Record{Name: "Error", Message: "gone", Diff: "- a\n+ b"}
		frames := []stack.Frame{{File: "/proj/src/gone.ts", Line: 1, Column: 1}}

		lines := c.ComposeSelected(rec, frames, 0, testOptions())
		assert.Equal(t, []string{"Error: gone", " ❯ src/gone.ts:1:1", "", "- a", "+ b"}, lines)
		assert.Contains(t, buf.String(), "code frame skipped")
	})

	t.Run("Should not select frames outside known projects", func(t *testing.T) {
		c := newComposer(t, nil)
		stackText := "Error: x\n    at run (/proj/node_modules/lib/index.js:1:1)"
		out := Text(c.Compose(FromValue(errorValue("Error", "x", stackText)), testOptions()))
		assert.NotContains(t, out, "|")
	})

	t.Run("Should render type-check locations without checking them", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/proj/src/app.ts", []byte(appSource), 0o644))
		never := func(string) bool { return false }
		c := NewComposer(style.Plain{}, source.NewCache(fs), never, nil)
		rec := Record{
			Name:    TypeCheckErrorName,
			Message: "Type 'string' is not assignable to type 'number'.",
			Stacks:  []stack.Frame{{File: "/proj/src/app.ts", Line: 1, Column: 7}},
		}
		out := Text(c.Compose(rec, testOptions()))
		assert.Contains(t, out, "      1| const a = 1\n       |       ^")
	})
}

func TestComposeCauses(t *testing.T) {
	c := newComposer(t, nil)
	root := errorValue("Error", "outer", appStack)
	third := errorValue("ThirdError", "inner", appStack)
	second := errorValue("SecondError", "inner", appStack)
	second.Set("cause", third)
	first := errorValue("FirstError", "inner", appStack)
	first.Set("cause", second)
	root.Set("cause", first)

	lines := c.Compose(FromValue(root), testOptions())

	var causes []string
	underlines := 0
	for _, l := range lines {
		if strings.HasPrefix(l, "Caused by: ") {
			causes = append(causes, l)
		}
		if strings.Contains(l, "   | ") {
			underlines++
		}
	}
	assert.Equal(t, []string{
		"Caused by: FirstError: inner",
		"Caused by: SecondError: inner",
		"Caused by: ThirdError: inner",
	}, causes)
	assert.Equal(t, 1, underlines)
}

func TestComposeSections(t *testing.T) {
	t.Run("Should emit sections in order", func(t *testing.T) {
		c := newComposer(t, nil)
		v := errorValue("SyntaxError", "Unexpected token 'export'",
			"/proj/node_modules/@scope/pkg/index.js:1\nSyntaxError: Unexpected token 'export'")
		v.Set(serialize.FieldTestPath, serialize.Str("/proj/test/a.test.ts"))
		v.Set(serialize.FieldTestName, serialize.Str("a > works"))
		v.Set(serialize.FieldAfterEnvTeardown, serialize.Bool(true))
		v.Set("cause", errorValue("RangeError", "deep", ""))
		v.Set("code", serialize.Str("ERR_BOOM"))
		v.Set("diff", serialize.Str("- Expected\n+ Received"))

		lines := c.Compose(FromValue(v), testOptions())
		idx := func(sub string) int {
			return indexOf(lines, func(l string) bool { return strings.Contains(l, sub) })
		}
		order := []int{
			idx(`originated in "/proj/test/a.test.ts"`),
			idx(`The latest test that might've caused the error is "a > works"`),
			idx("torn down"),
			idx("Caused by: RangeError: deep"),
			idx(`"@scope/pkg"`),
			idx("Serialized Error: {"),
			idx("- Expected"),
		}
		for i, n := range order {
			require.GreaterOrEqual(t, n, 0, "section %d missing", i)
			if i > 0 {
				assert.Greater(t, n, order[i-1], "section %d out of order", i)
			}
		}
		assert.Equal(t, "+ Received", lines[len(lines)-1])
		assert.Equal(t, strings.Repeat(style.Dash, 80), lines[idx("Serialized Error:")-1])
		assert.Contains(t, lines, `  "code": "ERR_BOOM",`)
	})

	t.Run("Should not dump assertion error properties", func(t *testing.T) {
		c := newComposer(t, nil)
		v := errorValue(serialize.AssertionErrorName, "expected 1 to be 2", "")
		v.Set("operator", serialize.Str("strictEqual"))
		out := Text(c.Compose(FromValue(v), testOptions()))
		assert.NotContains(t, out, "Serialized Error")
	})

	t.Run("Should not dump native error internals", func(t *testing.T) {
		c := newComposer(t, nil)
		rec := FromValue(serialize.Serialize(value.NewError("boom")))
		assert.Equal(t, "Error", rec.Name)
		assert.True(t, strings.HasPrefix(rec.Stack, "Error: boom"))
		out := Text(c.Compose(rec, testOptions()))
		assert.NotContains(t, out, "Serialized Error")
	})

	t.Run("Should dump huge sparse arrays by their present elements", func(t *testing.T) {
		c := newComposer(t, nil)
		v := errorValue("Error", "boom", "")
		v.Set("big", serialize.NewArray(serialize.MaxArrayLength))
		data, err := serialize.Marshal(v)
		require.NoError(t, err)
		decoded, err := serialize.Unmarshal(data)
		require.NoError(t, err)

		lines := c.Compose(FromValue(decoded), testOptions())
		assert.Less(t, len(lines), 20)
		assert.Contains(t, Text(lines), `"big": [`+"\n"+`    <4294967295 empty items>,`)
	})
}

func TestDetectESM(t *testing.T) {
	cases := []struct {
		name  string
		stack string
		pkg   string
		path  string
	}{
		{
			name:  "scoped package",
			stack: "/proj/node_modules/@scope/pkg/index.js:1\nSyntaxError: Cannot use import statement outside a module",
			pkg:   "@scope/pkg",
			path:  "/proj/node_modules/@scope/pkg/index.js:1",
		},
		{
			name:  "plain package",
			stack: "  /proj/node_modules/pkg/dist/index.js:3\nSyntaxError: Unexpected token 'export'",
			pkg:   "pkg",
			path:  "/proj/node_modules/pkg/dist/index.js:3",
		},
		{
			name:  "nested node_modules uses the last one",
			stack: "/proj/node_modules/a/node_modules/b/x.js\nUnexpected token 'export'",
			pkg:   "b",
			path:  "/proj/node_modules/a/node_modules/b/x.js",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hint, ok := DetectESM(tc.stack)
			require.True(t, ok)
			assert.Equal(t, tc.pkg, hint.Package)
			assert.Equal(t, tc.path, hint.Path)
		})
	}

	_, ok := DetectESM("Error: boom\n    at x (/a.js:1:1)")
	assert.False(t, ok)
}

func TestFromValue(t *testing.T) {
	t.Run("Should normalise primitives from their string form", func(t *testing.T) {
		rec := FromValue(serialize.Str("boom\nsecond line"))
		assert.Equal(t, "boom", rec.Message)
		assert.Equal(t, "boom\nsecond line", rec.Stack)
		assert.Equal(t, UnknownErrorName, rec.DisplayName())

		rec = FromValue(serialize.Int(42))
		assert.Equal(t, "42", rec.Message)
	})

	t.Run("Should turn nullish values into an unknown error", func(t *testing.T) {
		for _, v := range []serialize.Value{serialize.Null(), serialize.Undefined()} {
			rec := FromValue(v)
			assert.Equal(t, "unknown error", rec.Message)
			assert.Equal(t, "Error: unknown error", rec.Stack)
		}
	})

	t.Run("Should read bookkeeping fields", func(t *testing.T) {
		v := errorValue("TypeCheckError", "bad", "")
		v.Set("stackStr", serialize.Str("TypeCheckError: bad"))
		frames := serialize.NewArray(0)
		frame := serialize.NewRecord()
		frame.Set("file", serialize.Str("/proj/a.ts"))
		frame.Set("line", serialize.Int(4))
		frame.Set("column", serialize.Float(2))
		frames.Put(0, frame)
		frames.Put(1, serialize.Str("junk"))
		v.Set("stacks", frames)
		v.Set(serialize.FieldAfterEnvTeardown, serialize.Int(1))

		rec := FromValue(v)
		assert.True(t, rec.TypeCheck())
		assert.Equal(t, "TypeCheckError: bad", rec.Stack)
		assert.Equal(t, []stack.Frame{{File: "/proj/a.ts", Line: 4, Column: 2}}, rec.Stacks)
		assert.True(t, rec.AfterEnvTeardown)
		assert.Empty(t, rec.Properties.Fields())
	})

	t.Run("Should ignore causes without a name", func(t *testing.T) {
		v := errorValue("Error", "x", "")
		cause := serialize.NewRecord()
		cause.Set("message", serialize.Str("anonymous"))
		v.Set("cause", cause)
		assert.Nil(t, FromValue(v).Cause)

		v.Set("cause", serialize.Str("text cause"))
		assert.Nil(t, FromValue(v).Cause)
	})
}
