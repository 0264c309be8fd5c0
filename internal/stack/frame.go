// Package stack models parsed stack frames, picks the frame worth a code
// frame, and parses raw V8/Firefox stack text.
package stack

import (
	"fmt"
	"strings"
)

// Frame is one parsed stack frame. Line and Column are 1-based.
type Frame struct {
	File   string `json:"file" msgpack:"file"`
	Line   int    `json:"line" msgpack:"line"`
	Column int    `json:"column" msgpack:"column"`
	Method string `json:"method,omitempty" msgpack:"method,omitempty"`
	// Raw keeps the source line of the frame when it came from Parse.
	Raw string `json:"-" msgpack:"-"`
}

// Location formats the frame as file:line:column.
func (f Frame) Location() string {
	return fmt.Sprintf("%s:%d:%d", f.File, f.Line, f.Column)
}

func (f Frame) String() string {
	if f.Method == "" {
		return f.Location()
	}
	return f.Method + " " + f.Location()
}

// IsZero reports whether the frame carries no location.
func (f Frame) IsZero() bool {
	return strings.TrimSpace(f.File) == "" && f.Line == 0 && f.Column == 0
}
