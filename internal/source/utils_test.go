package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelativePath(t *testing.T) {
	tmp := t.TempDir()
	baseDir := filepath.Join(tmp, "base")
	require.NoError(t, os.MkdirAll(filepath.Join(baseDir, "nested"), 0o755))

	t.Run("Should stay relative inside the base", func(t *testing.T) {
		got, err := RelativePath(filepath.Join(baseDir, "nested", "file.ts"), baseDir)
		require.NoError(t, err)
		assert.Equal(t, "nested/file.ts", got)
	})

	t.Run("Should fall back to the absolute path outside the base", func(t *testing.T) {
		target := filepath.Join(tmp, "other", "file.ts")
		got, err := RelativePath(target, baseDir)
		require.NoError(t, err)
		assert.Equal(t, normalizePath(target), got)
	})
}

func TestDisplayPath(t *testing.T) {
	assert.Equal(t, "node:internal/x", DisplayPath("node:internal/x", "/proj"))
	assert.Equal(t, "/proj/a.ts", DisplayPath("/proj/a.ts", ""))
	assert.Equal(t, "src/a.ts", DisplayPath("/proj/src/a.ts", "/proj"))
}

func TestNormalizeCRLF(t *testing.T) {
	out, changed := normalizeCRLF([]byte("a\r\nb\rc\r\n"))
	assert.True(t, changed)
	assert.Equal(t, "a\nb\rc\n", string(out))

	out, changed = normalizeCRLF([]byte("plain"))
	assert.False(t, changed)
	assert.Equal(t, "plain", string(out))
}

func TestToLineCol(t *testing.T) {
	idx, err := buildLineIndex([]byte("ab\ncd\n\nef"))
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 5, 6}, idx)

	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}},
		{3, LineCol{2, 1}},
		{6, LineCol{3, 1}},
		{8, LineCol{4, 2}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, toLineCol(idx, tc.off), "offset %d", tc.off)
	}
	assert.Equal(t, LineCol{1, 5}, toLineCol(nil, 4))
}
