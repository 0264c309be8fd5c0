package report

import (
	"fmt"
	"path"
	"strings"

	"faultline/internal/style"
)

var esmPatterns = []string{
	"Cannot use import statement outside a module",
	"Unexpected token 'export'",
}

// ESMHint describes an ES module that was loaded as CommonJS.
type ESMHint struct {
	Path    string
	Package string
}

// DetectESM scans stack text for ES-module-in-CommonJS failures. Node puts
// the offending file on the first stack line.
func DetectESM(stackText string) (ESMHint, bool) {
	matched := false
	for _, p := range esmPatterns {
		if strings.Contains(stackText, p) {
			matched = true
			break
		}
	}
	if !matched {
		return ESMHint{}, false
	}
	first, _, _ := strings.Cut(stackText, "\n")
	p := normalizeSlashes(strings.TrimSpace(first))
	return ESMHint{Path: p, Package: packageName(p)}, true
}

// packageName returns the dependency that owns p: "@scope/pkg" for scoped
// packages, the first segment otherwise.
func packageName(p string) string {
	name := p
	if i := strings.LastIndex(p, "/node_modules/"); i >= 0 {
		name = p[i+len("/node_modules/"):]
	}
	parts := strings.Split(name, "/")
	if strings.HasPrefix(name, "@") && len(parts) > 1 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

func normalizeSlashes(p string) string {
	if p == "" {
		return ""
	}
	return path.Clean(strings.ReplaceAll(p, `\`, "/"))
}

func esmLines(h ESMHint, st style.Styler) []string {
	quoted := st.Bold(fmt.Sprintf("%q", h.Package))
	lines := []string{
		st.Warn(fmt.Sprintf("Module %s seems to be an ES Module but shipped in a CommonJS package. "+
			"You might want to create an issue to the package %s asking them to ship the file in .mjs extension "+
			`or add "type": "module" in their package.json.`, h.Path, quoted)),
		"",
		st.Warn("As a temporary workaround you can try to inline the package by updating your test runner config:"),
		"",
		st.Muted(st.Dim("// runner config")),
	}
	snippet := []string{
		"export default {",
		"  test: {",
		"    deps: {",
		"      inline: [",
		"        " + st.Warn(quoted),
		"      ]",
		"    }",
		"  }",
		"}",
	}
	for _, l := range snippet {
		lines = append(lines, st.Success(l))
	}
	return lines
}

func attributionLines(r Record, st style.Styler) []string {
	var lines []string
	if r.TestPath != "" {
		lines = append(lines, st.Error(fmt.Sprintf(
			`This error originated in "%s" test file. It doesn't mean the error was thrown inside the file itself, but while it was running.`,
			st.Bold(r.TestPath))))
	}
	if r.TestName != "" {
		lines = append(lines,
			st.Error(fmt.Sprintf(`The latest test that might've caused the error is "%s". It might mean one of the following:`, st.Bold(r.TestName))),
			st.Error("- The error was thrown, while the runner was executing this test."),
			st.Error("- This was the last recorded test before the error was thrown, if error originated after test finished its execution."),
		)
	}
	if r.AfterEnvTeardown {
		lines = append(lines,
			st.Error("This error was caught after test environment was torn down. Make sure to cancel any running tasks before test finishes:"),
			st.Error("- cancel timeouts using clearTimeout and clearInterval"),
			st.Error("- wait for promises to resolve using the await keyword"),
		)
	}
	return lines
}
