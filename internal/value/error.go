package value

import (
	"fmt"
	"runtime"
	"strings"
)

// ErrorPrototype is the built-in error root.
var ErrorPrototype = newErrorPrototype()

func newErrorPrototype() *Object {
	proto := NewWithProto(ObjectPrototype)
	proto.Hide("constructor", NewFunction("Error"))
	proto.Hide("name", "Error")
	proto.Hide("message", "")
	proto.Hide("toString", NewFunction("toString"))
	return proto
}

// IsErrorRoot reports whether c is ErrorPrototype.
func IsErrorRoot(c Chain) bool {
	o, ok := c.(*Object)
	return ok && o == ErrorPrototype
}

// IsError reports whether ErrorPrototype appears on the chain of c.
func IsError(c Chain) bool {
	for cur := c; cur != nil; cur = cur.Parent() {
		if IsErrorRoot(cur) {
			return true
		}
	}
	return false
}

// NewErrorClass creates a prototype for a named error kind deriving from
// parent (ErrorPrototype when nil).
func NewErrorClass(name string, parent *Object) *Object {
	if parent == nil {
		parent = ErrorPrototype
	}
	proto := NewWithProto(parent)
	proto.Hide("constructor", NewFunction(name))
	proto.Hide("name", name)
	return proto
}

// NewError creates a plain error with a captured stack.
func NewError(message string) *Object {
	return NewErrorOf(ErrorPrototype, message)
}

// NewErrorOf creates an error inheriting from class. The stack text starts
// with "<name>: <message>" followed by the Go call sites of the caller.
func NewErrorOf(class *Object, message string) *Object {
	e := NewWithProto(class)
	name := "Error"
	if v, err := class.Lookup("name"); err == nil {
		if s, ok := v.(string); ok && s != "" {
			name = s
		}
	}
	e.Hide("stack", formatStack(name, message, 3))
	if message != "" {
		e.Hide("message", message)
	}
	return e
}

const maxStackDepth = 32

func formatStack(name, message string, skip int) string {
	var b strings.Builder
	b.WriteString(name)
	if message != "" {
		b.WriteString(": ")
		b.WriteString(message)
	}
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		fr, more := frames.Next()
		if fr.Function != "" {
			fmt.Fprintf(&b, "\n    at %s (%s:%d:1)", fr.Function, fr.File, fr.Line)
		}
		if !more {
			break
		}
	}
	return b.String()
}
