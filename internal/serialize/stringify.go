package serialize

import (
	"strconv"
	"strings"
)

// DefaultStringifyDepth bounds nesting in Stringify output.
const DefaultStringifyDepth = 10

// Stringify renders v as indented text for reports:
//
//	{
//	  "code": "ERR_X",
//	  "list": [
//	    1,
//	    <3 empty items>,
//	    true,
//	  ],
//	}
//
// A run of holes prints as one row. Containers nested deeper than maxDepth
// collapse to [Object] / [Array].
func Stringify(v Value, maxDepth int) string {
	if maxDepth <= 0 {
		maxDepth = DefaultStringifyDepth
	}
	var b strings.Builder
	writeText(&b, v, 0, maxDepth)
	return b.String()
}

func writeText(b *strings.Builder, v Value, depth, maxDepth int) {
	switch v.kind {
	case KindString:
		b.WriteString(strconv.Quote(v.s))
		return
	case KindSymbol, KindFunction, KindUnserializable:
		b.WriteString(strconv.Quote(v.String()))
		return
	case KindArray:
		if depth >= maxDepth {
			b.WriteString("[Array]")
			return
		}
		if v.length == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[\n")
		next := 0
		for _, e := range v.elems {
			if e.Index > next {
				indent(b, depth+1)
				writeHoles(b, e.Index-next)
			}
			indent(b, depth+1)
			writeText(b, e.Value, depth+1, maxDepth)
			b.WriteString(",\n")
			next = e.Index + 1
		}
		if v.length > next {
			indent(b, depth+1)
			writeHoles(b, v.length-next)
		}
		indent(b, depth)
		b.WriteByte(']')
		return
	case KindRecord:
		if depth >= maxDepth {
			b.WriteString("[Object]")
			return
		}
		if len(v.fields) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{\n")
		for _, f := range v.fields {
			indent(b, depth+1)
			b.WriteString(strconv.Quote(f.Name))
			b.WriteString(": ")
			writeText(b, f.Value, depth+1, maxDepth)
			b.WriteString(",\n")
		}
		indent(b, depth)
		b.WriteByte('}')
		return
	}
	b.WriteString(v.String())
}

func writeHoles(b *strings.Builder, n int) {
	if n == 1 {
		b.WriteString("<1 empty item>,\n")
		return
	}
	b.WriteString("<" + strconv.Itoa(n) + " empty items>,\n")
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}
