// Package config loads faultline.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up from the working directory
// upwards.
const FileName = "faultline.toml"

// ErrNotFound is returned by Find when no configuration file exists.
var ErrNotFound = errors.New("no " + FileName + " found")

const (
	ColorAuto = "auto"
	ColorOn   = "on"
	ColorOff  = "off"
)

type Config struct {
	// Root is the base for relative paths in stack listings.
	Root      string          `toml:"root"`
	Color     string          `toml:"color"`
	Columns   int             `toml:"columns"`
	CodeFrame CodeFrameConfig `toml:"codeframe"`
	Projects  ProjectsConfig  `toml:"projects"`
	Stack     StackConfig     `toml:"stack"`

	// Path is the file the configuration came from, empty for defaults.
	Path string `toml:"-"`
}

type CodeFrameConfig struct {
	Range         int `toml:"range"`
	Indent        int `toml:"indent"`
	MaxLineLength int `toml:"max_line_length"`
}

type ProjectsConfig struct {
	Roots []string `toml:"roots"`
}

type StackConfig struct {
	Full   bool     `toml:"full"`
	Ignore []string `toml:"ignore"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Root:  ".",
		Color: ColorAuto,
		CodeFrame: CodeFrameConfig{
			Range:         2,
			Indent:        4,
			MaxLineLength: 200,
		},
		Stack: StackConfig{
			Ignore: []string{"node:internal", "/node_modules/faultline/"},
		},
	}
}

// Find walks from startDir to the filesystem root looking for FileName.
func Find(startDir string) (string, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// Load decodes path over Default. Relative roots are resolved against the
// directory holding the file.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	cfg.Path = abs
	cfg.Root = resolve(filepath.Dir(abs), cfg.Root)
	return cfg, nil
}

// Discover finds and loads the configuration for startDir, falling back to
// Default when there is none.
func Discover(startDir string) (Config, error) {
	path, err := Find(startDir)
	if errors.Is(err, ErrNotFound) {
		cfg := Default()
		cfg.Root = resolve(startDir, cfg.Root)
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}
	return Load(path)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if !slices.Contains([]string{ColorAuto, ColorOn, ColorOff}, c.Color) {
		return fmt.Errorf("invalid color %q: want auto, on or off", c.Color)
	}
	if c.Columns < 0 {
		return fmt.Errorf("invalid columns %d: must not be negative", c.Columns)
	}
	if c.CodeFrame.Range < 0 || c.CodeFrame.Indent < 0 {
		return errors.New("invalid [codeframe]: range and indent must not be negative")
	}
	if c.CodeFrame.MaxLineLength <= 0 {
		return fmt.Errorf("invalid [codeframe].max_line_length %d: must be positive", c.CodeFrame.MaxLineLength)
	}
	return nil
}

// KnownProject reports whether file belongs to one of the project roots.
// Without roots every file under Root counts. Dependencies never do.
func (c Config) KnownProject(file string) bool {
	if !filepath.IsAbs(file) || strings.Contains(filepath.ToSlash(file), "/node_modules/") {
		return false
	}
	roots := c.Projects.Roots
	if len(roots) == 0 {
		roots = []string{"."}
	}
	for _, r := range roots {
		if within(resolve(c.Root, r), file) {
			return true
		}
	}
	return false
}

func resolve(base, p string) string {
	if p == "" {
		p = "."
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, p)
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func within(root, target string) bool {
	rel, err := filepath.Rel(root, filepath.Clean(target))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
