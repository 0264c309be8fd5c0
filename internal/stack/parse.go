package stack

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// DefaultIgnore lists frame substrings that belong to the runtime or to the
// reporter itself.
var DefaultIgnore = []string{
	"node:internal",
	"/node_modules/faultline/",
}

// ParseOptions tunes Parse.
type ParseOptions struct {
	// Ignore drops frames whose file contains any of the substrings.
	Ignore []string
	// Full keeps every frame regardless of Ignore.
	Full bool
}

var (
	// at fn (file:1:2), at async fn (file:1:2), at new Foo (file:1:2)
	v8Call = regexp.MustCompile(`^\s*at\s+(?:async\s+)?(.*?)\s+\((.+?):(\d+):(\d+)\)\s*$`)
	// at file:1:2
	v8Bare = regexp.MustCompile(`^\s*at\s+(?:async\s+)?(.+?):(\d+):(\d+)\s*$`)
	// fn@file:1:2, @file:1:2
	firefox = regexp.MustCompile(`^\s*(.*?)@(.+?):(\d+):(\d+)\s*$`)
)

// Parse extracts frames from raw stack text. Lines that are not frames
// (the "Name: message" header, notes) are skipped.
func Parse(text string, opts ParseOptions) []Frame {
	var frames []Frame
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		f, ok := parseLine(line)
		if !ok {
			continue
		}
		if !opts.Full && ignored(f.File, opts.Ignore) {
			continue
		}
		frames = append(frames, f)
	}
	return frames
}

func parseLine(line string) (Frame, bool) {
	var method, file, ln, col string
	if m := v8Call.FindStringSubmatch(line); m != nil {
		method, file, ln, col = m[1], m[2], m[3], m[4]
	} else if m := v8Bare.FindStringSubmatch(line); m != nil {
		file, ln, col = m[1], m[2], m[3]
	} else if m := firefox.FindStringSubmatch(line); m != nil {
		method, file, ln, col = m[1], m[2], m[3], m[4]
	} else {
		return Frame{}, false
	}
	l, err := strconv.Atoi(ln)
	if err != nil {
		return Frame{}, false
	}
	c, err := strconv.Atoi(col)
	if err != nil {
		return Frame{}, false
	}
	method = strings.TrimPrefix(method, "new ")
	if method == "<anonymous>" {
		method = ""
	}
	return Frame{
		File:   cleanFile(file),
		Line:   l,
		Column: c,
		Method: method,
		Raw:    strings.TrimSpace(line),
	}, true
}

func cleanFile(file string) string {
	if strings.HasPrefix(file, "file://") {
		if u, err := url.Parse(file); err == nil && u.Path != "" {
			file = u.Path
		} else {
			file = strings.TrimPrefix(file, "file://")
		}
	}
	// Windows drive paths come through as /C:/...
	if len(file) > 3 && file[0] == '/' && file[2] == ':' {
		file = file[1:]
	}
	return file
}

func ignored(file string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(file, p) {
			return true
		}
	}
	return false
}
