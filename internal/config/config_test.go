package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestFind(t *testing.T) {
	t.Run("Should find the file in a parent directory", func(t *testing.T) {
		root := t.TempDir()
		nested := filepath.Join(root, "a", "b")
		require.NoError(t, os.MkdirAll(nested, 0o755))
		want := writeConfig(t, root, "")

		got, err := Find(nested)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestLoad(t *testing.T) {
	t.Run("Should keep defaults for unset keys", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir, "color = \"off\"\n[codeframe]\nrange = 3\n")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ColorOff, cfg.Color)
		assert.Equal(t, 3, cfg.CodeFrame.Range)
		assert.Equal(t, 4, cfg.CodeFrame.Indent)
		assert.Equal(t, 200, cfg.CodeFrame.MaxLineLength)
		assert.Equal(t, Default().Stack.Ignore, cfg.Stack.Ignore)
		assert.Equal(t, dir, cfg.Root)
		assert.Equal(t, path, cfg.Path)
	})

	t.Run("Should resolve root against the file directory", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := Load(writeConfig(t, dir, "root = \"web\"\n"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "web"), cfg.Root)
	})

	t.Run("Should reject invalid values", func(t *testing.T) {
		dir := t.TempDir()
		_, err := Load(writeConfig(t, dir, "color = \"rainbow\"\n"))
		assert.ErrorContains(t, err, "invalid color")

		_, err = Load(writeConfig(t, dir, "[codeframe]\nmax_line_length = 0\n"))
		assert.ErrorContains(t, err, "max_line_length")
	})

	t.Run("Should reject unknown keys", func(t *testing.T) {
		dir := t.TempDir()
		_, err := Load(writeConfig(t, dir, "[stack]\nfull = true\ndepth = 3\n"))
		assert.ErrorContains(t, err, "stack.depth")
	})

	t.Run("Should report broken TOML", func(t *testing.T) {
		dir := t.TempDir()
		_, err := Load(writeConfig(t, dir, "color = \n"))
		assert.ErrorContains(t, err, "failed to parse TOML")
	})
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Discover(dir)
	if err != nil {
		t.Skip("a faultline.toml exists above the temp directory")
	}
	if cfg.Path != "" {
		t.Skip("a faultline.toml exists above the temp directory")
	}
	assert.Equal(t, Default().CodeFrame, cfg.CodeFrame)
	assert.Equal(t, dir, cfg.Root)
}

func TestKnownProject(t *testing.T) {
	cfg := Default()
	cfg.Root = "/proj"

	assert.True(t, cfg.KnownProject("/proj/src/app.ts"))
	assert.False(t, cfg.KnownProject("/other/app.ts"))
	assert.False(t, cfg.KnownProject("/proj/node_modules/lib/index.js"))
	assert.False(t, cfg.KnownProject("node:internal/process"))

	cfg.Projects.Roots = []string{"src", "/shared"}
	assert.True(t, cfg.KnownProject("/proj/src/app.ts"))
	assert.True(t, cfg.KnownProject("/shared/util.ts"))
	assert.False(t, cfg.KnownProject("/proj/test/app.test.ts"))
}
