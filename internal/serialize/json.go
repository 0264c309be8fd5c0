package serialize

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

var _ json.Marshaler = Value{}

// MarshalJSON renders v as JSON keeping record order. Holes become null,
// runs of more than jsonHoleRun holes collapse into one "<N empty items>"
// string and placeholders become their rendered strings, so the result is
// lossy; use Marshal for transport.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindUndefined, KindNull:
		buf.WriteString("null")
		return nil
	case KindBool, KindInt:
		buf.WriteString(v.String())
		return nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			buf.WriteString("null")
			return nil
		}
		buf.WriteString(formatFloat(v.f))
		return nil
	case KindArray:
		buf.WriteByte('[')
		next := 0
		for _, e := range v.elems {
			writeJSONHoles(buf, next, e.Index-next)
			if e.Index > 0 {
				buf.WriteByte(',')
			}
			if err := e.Value.writeJSON(buf); err != nil {
				return err
			}
			next = e.Index + 1
		}
		writeJSONHoles(buf, next, v.length-next)
		buf.WriteByte(']')
		return nil
	case KindRecord:
		buf.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, f.Name); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := f.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case KindBigInt, KindString:
		return writeJSONString(buf, v.s)
	}
	return writeJSONString(buf, v.String())
}

// jsonHoleRun is the longest run of holes written as individual nulls.
const jsonHoleRun = 16

// writeJSONHoles writes n holes starting at index from.
func writeJSONHoles(buf *bytes.Buffer, from, n int) {
	if n <= 0 {
		return
	}
	if n > jsonHoleRun {
		if from > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`"<` + strconv.Itoa(n) + ` empty items>"`)
		return
	}
	for i := from; i < from+n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("null")
	}
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode дописывает перевод строки
	buf.Truncate(buf.Len() - 1)
	return nil
}
