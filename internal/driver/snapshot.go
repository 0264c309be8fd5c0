package driver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"faultline/internal/serialize"
	"faultline/internal/value"
)

// Snapshot formats.
const (
	FormatMsgpack = "mp"
	FormatJSON    = "json"
	FormatText    = "text"
)

// ErrEmptySnapshot is returned for empty input files.
var ErrEmptySnapshot = errors.New("empty snapshot")

// FormatFor picks a snapshot format from a file extension.
func FormatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".txt", ".text":
		return FormatText
	}
	return FormatMsgpack
}

// ImportJSON serializes a JSON document of a thrown value.
func ImportJSON(data []byte) (serialize.Value, error) {
	doc, err := value.FromJSON(data)
	if err != nil {
		return serialize.Value{}, err
	}
	return serialize.Serialize(doc), nil
}

// Decode reads a snapshot. Valid JSON is imported as a thrown value,
// anything else is decoded as msgpack.
func Decode(data []byte) (serialize.Value, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return serialize.Value{}, ErrEmptySnapshot
	}
	if json.Valid(trimmed) {
		return ImportJSON(trimmed)
	}
	return serialize.Unmarshal(data)
}

// LoadSnapshot reads and decodes path.
func LoadSnapshot(fs afero.Fs, path string) (serialize.Value, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return serialize.Value{}, fmt.Errorf("read snapshot: %w", err)
	}
	v, err := Decode(data)
	if err != nil {
		return serialize.Value{}, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Encode writes v in the given format.
func Encode(v serialize.Value, format string) ([]byte, error) {
	switch format {
	case FormatMsgpack:
		return serialize.Marshal(v)
	case FormatJSON:
		raw, err := v.MarshalJSON()
		if err != nil {
			return nil, err
		}
		var out bytes.Buffer
		if err := json.Indent(&out, raw, "", "  "); err != nil {
			return nil, err
		}
		out.WriteByte('\n')
		return out.Bytes(), nil
	case FormatText:
		return []byte(serialize.Stringify(v, serialize.DefaultStringifyDepth) + "\n"), nil
	}
	return nil, fmt.Errorf("unsupported format %q (must be mp, json or text)", format)
}
