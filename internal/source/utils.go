package source

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"fortio.org/safecast"
)

// normalizeCRLF заменяет все \r\n на \n, не трогая одиночные \r.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false
	for i := 0; i < len(content); i++ {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			changed = true
			continue
		}
		out = append(out, content[i])
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}
	return content, false
}

func buildLineIndex(content []byte) ([]uint32, error) {
	var out []uint32
	for i, b := range content {
		if b != '\n' {
			continue
		}
		off, err := safecast.Conv[uint32](i)
		if err != nil {
			return nil, fmt.Errorf("line offset overflow: %w", err)
		}
		out = append(out, off)
	}
	return out, nil
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// бинпоиск: количество '\n' строго до off
	line, _ := slices.BinarySearch(lineIdx, off)
	var startOff uint32
	if line > 0 {
		startOff = lineIdx[line-1] + 1
	}
	// line не больше len(lineIdx), который уже прошёл safecast
	return LineCol{Line: uint32(line) + 1, Col: off - startOff + 1} // #nosec G115
}

func normalizePath(p string) string {
	// единый вид для ключей кэша и вывода
	return filepath.ToSlash(filepath.Clean(p))
}

// RelativePath returns target relative to base. Targets outside base keep
// their normalized absolute form.
func RelativePath(target, base string) (string, error) {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", target, err)
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", base, err)
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return normalizePath(absTarget), nil
	}
	return normalizePath(rel), nil
}

// DisplayPath is RelativePath for stack listings: paths that are not local
// files (node:, http:) and failures are returned unchanged.
func DisplayPath(target, base string) string {
	if base == "" || !filepath.IsAbs(target) {
		return target
	}
	rel, err := RelativePath(target, base)
	if err != nil {
		return target
	}
	return rel
}
