package source

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"fortio.org/safecast"
	"github.com/spf13/afero"
)

// ErrPosition is returned for line/column pairs outside a file.
var ErrPosition = errors.New("position out of range")

// Cache loads source files through an afero filesystem and keeps them for
// the lifetime of a run. It is safe for concurrent use.
type Cache struct {
	fs    afero.Fs
	mu    sync.Mutex
	files map[string]*File
}

// NewCache creates a cache over fs; nil means the OS filesystem.
func NewCache(fs afero.Fs) *Cache {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Cache{fs: fs, files: make(map[string]*File)}
}

// Exists reports whether path names a regular file.
func (c *Cache) Exists(path string) bool {
	if path == "" {
		return false
	}
	if c.cached(path) != nil {
		return true
	}
	info, err := c.fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Load reads path, strips a BOM, normalizes CRLF and indexes lines. Files
// are read once.
func (c *Cache) Load(path string) (*File, error) {
	if f := c.cached(path); f != nil {
		return f, nil
	}
	content, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return c.add(path, content, 0)
}

// AddVirtual registers in-memory text under name. The text is normalized
// the same way as files read from disk.
func (c *Cache) AddVirtual(name string, content []byte) (*File, error) {
	return c.add(name, content, FileVirtual)
}

// Text returns the normalized content of path.
func (c *Cache) Text(path string) (string, error) {
	f, err := c.Load(path)
	if err != nil {
		return "", err
	}
	return string(f.Content), nil
}

func (c *Cache) add(path string, content []byte, flags FileFlags) (*File, error) {
	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		return nil, fmt.Errorf("%s: file too large: %w", path, err)
	}
	lineIdx, err := buildLineIndex(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f := &File{
		Path:    normalizePath(path),
		Content: content,
		LineIdx: lineIdx,
		Flags:   flags,
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[f.Path] = f
	return f, nil
}

func (c *Cache) cached(path string) *File {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.files[normalizePath(path)]
}

// IsNotExist reports whether err came from a missing file.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

// Line returns the 1-based line without its terminator, or "" when the
// line does not exist.
func (f *File) Line(n int) string {
	if n < 1 || n > len(f.LineIdx)+1 {
		return ""
	}
	start := 0
	if n > 1 {
		start = int(f.LineIdx[n-2]) + 1
	}
	end := len(f.Content)
	if n-1 < len(f.LineIdx) {
		end = int(f.LineIdx[n-1])
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}

// LineCount is the number of lines, counting a trailing partial line.
func (f *File) LineCount() int {
	return len(f.LineIdx) + 1
}

// Position resolves a byte offset to a line and column.
func (f *File) Position(off uint32) LineCol {
	return toLineCol(f.LineIdx, off)
}

// Offset converts a 1-based line and column back to a byte offset.
func (f *File) Offset(pos LineCol) (uint32, error) {
	if pos.Line < 1 || int(pos.Line) > f.LineCount() || pos.Col < 1 {
		return 0, fmt.Errorf("%d:%d: %w", pos.Line, pos.Col, ErrPosition)
	}
	line := f.Line(int(pos.Line))
	lineLen, err := safecast.Conv[uint32](len(line))
	if err != nil {
		return 0, err
	}
	if pos.Col > lineLen+1 {
		return 0, fmt.Errorf("%d:%d: %w", pos.Line, pos.Col, ErrPosition)
	}
	var start uint32
	if pos.Line > 1 {
		start = f.LineIdx[pos.Line-2] + 1
	}
	return start + pos.Col - 1, nil
}
