// Package report turns serialized errors into readable diagnostic reports.
package report

import (
	"strings"

	"faultline/internal/serialize"
	"faultline/internal/stack"
)

// TypeCheckErrorName marks failures raised by a static type-checking pass.
const TypeCheckErrorName = "TypeCheckError"

// UnknownErrorName is shown when an error carries no usable name.
const UnknownErrorName = "Unknown Error"

// Record is the error data the composer works from.
type Record struct {
	Name    string
	NameStr string
	Message string
	Stack   string
	// Frame is a pre-rendered context excerpt that replaces the stack listing.
	Frame string
	Diff  string
	// Stacks holds pre-resolved frames, usually from a type-check pass.
	Stacks []stack.Frame

	TestPath         string
	TestName         string
	AfterEnvTeardown bool

	Cause      *Record
	Properties serialize.Value
}

// DisplayName is the name printed in the headline.
func (r Record) DisplayName() string {
	switch {
	case r.Name != "":
		return r.Name
	case r.NameStr != "":
		return r.NameStr
	}
	return UnknownErrorName
}

// TypeCheck reports whether the failure came from a type-check pass.
func (r Record) TypeCheck() bool {
	return r.Name == TypeCheckErrorName
}

// FromValue extracts a Record from a serialized thrown value. Values that
// are not records are normalised from their string form; null and undefined
// become a generic unknown error.
func FromValue(v serialize.Value) Record {
	if v.IsNullish() {
		return Record{Message: "unknown error", Stack: "Error: unknown error", Properties: serialize.NewRecord()}
	}
	if !v.IsRecord() {
		text := v.String()
		message, _, _ := strings.Cut(text, "\n")
		return Record{Message: message, Stack: text, Properties: serialize.NewRecord()}
	}

	rec := Record{
		Name:             v.GetString("name"),
		NameStr:          v.GetString("nameStr"),
		Message:          messageOf(v),
		Stack:            v.GetString("stack"),
		Frame:            v.GetString("frame"),
		Diff:             v.GetString("diff"),
		Stacks:           framesOf(v),
		TestPath:         v.GetString(serialize.FieldTestPath),
		TestName:         v.GetString(serialize.FieldTestName),
		AfterEnvTeardown: truthy(v, serialize.FieldAfterEnvTeardown),
		Properties:       serialize.Properties(v),
	}
	if rec.Stack == "" {
		rec.Stack = v.GetString("stackStr")
	}
	if cause, ok := v.Get("cause"); ok && cause.IsRecord() {
		if _, named := cause.Get("name"); named {
			c := FromValue(cause)
			rec.Cause = &c
		}
	}
	return rec
}

func messageOf(v serialize.Value) string {
	m, ok := v.Get("message")
	if !ok || m.IsNullish() {
		return ""
	}
	return m.String()
}

func framesOf(v serialize.Value) []stack.Frame {
	list, ok := v.Get("stacks")
	if !ok || !list.IsArray() {
		return nil
	}
	var out []stack.Frame
	for _, e := range list.Elements() {
		if !e.Value.IsRecord() {
			continue
		}
		f := stack.Frame{
			File:   e.Value.GetString("file"),
			Method: e.Value.GetString("method"),
		}
		if l, ok := e.Value.Get("line"); ok {
			f.Line = number(l)
		}
		if c, ok := e.Value.Get("column"); ok {
			f.Column = number(c)
		}
		out = append(out, f)
	}
	return out
}

func number(v serialize.Value) int {
	switch v.Kind() {
	case serialize.KindInt:
		return int(v.Int())
	case serialize.KindFloat:
		return int(v.Float())
	}
	return 0
}

func truthy(v serialize.Value, name string) bool {
	f, ok := v.Get(name)
	if !ok {
		return false
	}
	switch f.Kind() {
	case serialize.KindBool:
		return f.Bool()
	case serialize.KindInt:
		return f.Int() != 0
	case serialize.KindFloat:
		return f.Float() != 0
	case serialize.KindString:
		return f.Str() != ""
	case serialize.KindNull, serialize.KindUndefined:
		return false
	}
	return true
}
