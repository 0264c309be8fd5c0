package serialize

import (
	"cmp"
	"slices"
	"strconv"
)

// Kind tags a serialized node.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindInt
	KindFloat
	KindBigInt
	KindString
	KindSymbol
	KindFunction
	KindUnserializable
	KindCircular
	KindArray
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBigInt:
		return "bigint"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindFunction:
		return "function"
	case KindUnserializable:
		return "unserializable"
	case KindCircular:
		return "circular"
	case KindArray:
		return "array"
	case KindRecord:
		return "record"
	}
	return "unknown"
}

// UnserializablePrefix starts the rendered form of a failed access.
const UnserializablePrefix = "<unserializable>: "

// CircularMarker is the rendered form of a back reference to an ancestor.
const CircularMarker = "[Circular]"

// Field is one named entry of a record.
type Field struct {
	Name  string
	Value Value
}

// Element is one present index of an array.
type Element struct {
	Index int
	Value Value
}

// Value is a plain, cycle-free snapshot node. The zero Value is undefined.
type Value struct {
	kind   Kind
	b      bool
	i      int64
	f      float64
	s      string
	length int
	elems  []Element
	fields []Field
}

// Undefined returns the undefined node.
func Undefined() Value { return Value{kind: KindUndefined} }

// Null returns the null node.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps an integer number.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a non-integer number.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// BigInt wraps the decimal digits of an arbitrary precision integer.
func BigInt(digits string) Value { return Value{kind: KindBigInt, s: digits} }

// Str wraps a string.
func Str(s string) Value { return Value{kind: KindString, s: s} }

// Symbol is the placeholder for a symbol with the given description.
func Symbol(desc string) Value { return Value{kind: KindSymbol, s: desc} }

// Function is the placeholder for a function with the given name.
func Function(name string) Value { return Value{kind: KindFunction, s: name} }

// Circular is the placeholder for a back reference to an ancestor.
func Circular() Value { return Value{kind: KindCircular} }

// Unserializable is the placeholder for a failed access.
func Unserializable(msg string) Value {
	return Value{kind: KindUnserializable, s: msg}
}

// MaxArrayLength is the largest array length a Value carries, the same
// bound JavaScript puts on arrays.
const MaxArrayLength = 1<<32 - 1

// NewArray creates an array of the given length with every index a hole.
// The length is clamped to [0, MaxArrayLength].
func NewArray(length int) Value {
	return Value{kind: KindArray, length: min(max(length, 0), MaxArrayLength)}
}

// NewRecord creates an empty record.
func NewRecord() Value {
	return Value{kind: KindRecord}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsRecord() bool { return v.kind == KindRecord }
func (v Value) IsArray() bool { return v.kind == KindArray }
func (v Value) IsNullish() bool { return v.kind == KindNull || v.kind == KindUndefined }
func (v Value) Bool() bool { return v.b }
func (v Value) Int() int64 { return v.i }
func (v Value) Float() float64 { return v.f }
func (v Value) Len() int { return v.length }
func (v Value) Fields() []Field { return v.fields }
func (v Value) Elements() []Element { return v.elems }

// Str returns the payload of string-like kinds: the string itself, bigint
// digits, symbol description, function name or failure message.
func (v Value) Str() string {
	return v.s
}

// IsPlaceholder reports whether v stands in for something that was not copied.
func (v Value) IsPlaceholder() bool {
	switch v.kind {
	case KindSymbol, KindFunction, KindUnserializable, KindCircular:
		return true
	}
	return false
}

// Get returns the named field of a record.
func (v Value) Get(name string) (Value, bool) {
	for _, f := range v.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// GetString returns a string field, or "" when absent or not a string.
func (v Value) GetString(name string) string {
	f, ok := v.Get(name)
	if !ok || f.kind != KindString {
		return ""
	}
	return f.s
}

// At returns the element at index i of an array and whether it is present.
func (v Value) At(i int) (Value, bool) {
	pos, found := slices.BinarySearchFunc(v.elems, i, func(e Element, target int) int {
		return cmp.Compare(e.Index, target)
	})
	if !found {
		return Value{}, false
	}
	return v.elems[pos].Value, true
}

// Set adds or replaces a record field. Replacing keeps the original position.
func (v *Value) Set(name string, field Value) {
	for i := range v.fields {
		if v.fields[i].Name == name {
			v.fields[i].Value = field
			return
		}
	}
	v.fields = append(v.fields, Field{Name: name, Value: field})
}

// Put stores an element at index i, growing the array when needed. An
// element already at i is replaced. Indices outside [0, MaxArrayLength) are
// ignored.
func (v *Value) Put(i int, elem Value) {
	if i < 0 || i >= MaxArrayLength {
		return
	}
	if i >= v.length {
		v.length = i + 1
	}
	n := len(v.elems)
	if n == 0 || v.elems[n-1].Index < i {
		v.elems = append(v.elems, Element{Index: i, Value: elem})
		return
	}
	pos, found := slices.BinarySearchFunc(v.elems, i, func(e Element, target int) int {
		return cmp.Compare(e.Index, target)
	})
	if found {
		v.elems[pos].Value = elem
		return
	}
	v.elems = slices.Insert(v.elems, pos, Element{Index: i, Value: elem})
}

// String renders scalars and placeholders the way they appear in reports.
func (v Value) String() string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindBigInt:
		return v.s + "n"
	case KindString:
		return v.s
	case KindSymbol:
		return "Symbol(" + v.s + ")"
	case KindFunction:
		return "Function<" + v.s + ">"
	case KindUnserializable:
		return UnserializablePrefix + v.s
	case KindCircular:
		return CircularMarker
	case KindArray:
		return "[Array]"
	case KindRecord:
		return "[Object]"
	}
	return ""
}

// PlainArrayLimit is the longest array Plain expands into a slice.
const PlainArrayLimit = 1 << 20

// Plain converts v into Go maps, slices and scalars. Holes become nil,
// placeholders become their rendered strings and record order is lost.
// Arrays longer than PlainArrayLimit become a map[int]any of their present
// elements.
func (v Value) Plain() any {
	switch v.kind {
	case KindUndefined, KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBigInt, KindString:
		return v.s
	case KindArray:
		if v.length > PlainArrayLimit {
			out := make(map[int]any, len(v.elems))
			for _, e := range v.elems {
				out[e.Index] = e.Value.Plain()
			}
			return out
		}
		out := make([]any, v.length)
		for _, e := range v.elems {
			out[e.Index] = e.Value.Plain()
		}
		return out
	case KindRecord:
		out := make(map[string]any, len(v.fields))
		for _, f := range v.fields {
			out[f.Name] = f.Value.Plain()
		}
		return out
	}
	return v.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
