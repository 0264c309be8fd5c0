package serialize

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// maxPrealloc bounds capacity reserved from untrusted container headers.
const maxPrealloc = 1024

// ErrUnknownKind is returned when a payload carries a node tag this build
// does not know.
var ErrUnknownKind = errors.New("unknown serialized kind")

var (
	_ msgpack.CustomEncoder = (*Value)(nil)
	_ msgpack.CustomDecoder = (*Value)(nil)
)

// Marshal encodes v for transport. Holes and record order survive the trip.
func Marshal(v Value) ([]byte, error) {
	return msgpack.Marshal(&v)
}

// Unmarshal decodes a payload produced by Marshal.
func Unmarshal(data []byte) (Value, error) {
	var v Value
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return Value{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return v, nil
}

// EncodeMsgpack writes v as [kind, payload...].
func (v *Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	switch v.kind {
	case KindUndefined, KindNull, KindCircular:
		if err := enc.EncodeArrayLen(1); err != nil {
			return err
		}
		return enc.EncodeUint8(uint8(v.kind))
	case KindArray:
		if err := encodeHeader(enc, 3, v.kind); err != nil {
			return err
		}
		if err := enc.EncodeInt(int64(v.length)); err != nil {
			return err
		}
		if err := enc.EncodeMapLen(len(v.elems)); err != nil {
			return err
		}
		for i := range v.elems {
			if err := enc.EncodeInt(int64(v.elems[i].Index)); err != nil {
				return err
			}
			if err := v.elems[i].Value.EncodeMsgpack(enc); err != nil {
				return err
			}
		}
		return nil
	case KindRecord:
		if err := encodeHeader(enc, 2, v.kind); err != nil {
			return err
		}
		if err := enc.EncodeMapLen(len(v.fields)); err != nil {
			return err
		}
		for i := range v.fields {
			if err := enc.EncodeString(v.fields[i].Name); err != nil {
				return err
			}
			if err := v.fields[i].Value.EncodeMsgpack(enc); err != nil {
				return err
			}
		}
		return nil
	}

	if err := encodeHeader(enc, 2, v.kind); err != nil {
		return err
	}
	switch v.kind {
	case KindBool:
		return enc.EncodeBool(v.b)
	case KindInt:
		return enc.EncodeInt(v.i)
	case KindFloat:
		return enc.EncodeFloat64(v.f)
	case KindBigInt, KindString, KindSymbol, KindFunction, KindUnserializable:
		return enc.EncodeString(v.s)
	}
	return fmt.Errorf("%w: %d", ErrUnknownKind, v.kind)
}

func encodeHeader(enc *msgpack.Encoder, n int, kind Kind) error {
	if err := enc.EncodeArrayLen(n); err != nil {
		return err
	}
	return enc.EncodeUint8(uint8(kind))
}

// DecodeMsgpack reads a node written by EncodeMsgpack.
func (v *Value) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n < 1 {
		return fmt.Errorf("malformed node: %d items", n)
	}
	tag, err := dec.DecodeUint8()
	if err != nil {
		return err
	}
	kind := Kind(tag)
	*v = Value{kind: kind}

	switch kind {
	case KindUndefined, KindNull, KindCircular:
		return expectLen(kind, n, 1)
	case KindBool:
		if err := expectLen(kind, n, 2); err != nil {
			return err
		}
		v.b, err = dec.DecodeBool()
		return err
	case KindInt:
		if err := expectLen(kind, n, 2); err != nil {
			return err
		}
		v.i, err = dec.DecodeInt64()
		return err
	case KindFloat:
		if err := expectLen(kind, n, 2); err != nil {
			return err
		}
		v.f, err = dec.DecodeFloat64()
		return err
	case KindBigInt, KindString, KindSymbol, KindFunction, KindUnserializable:
		if err := expectLen(kind, n, 2); err != nil {
			return err
		}
		v.s, err = dec.DecodeString()
		return err
	case KindArray:
		if err := expectLen(kind, n, 3); err != nil {
			return err
		}
		if v.length, err = dec.DecodeInt(); err != nil {
			return err
		}
		if v.length < 0 || v.length > MaxArrayLength {
			return fmt.Errorf("malformed array: length %d outside [0, %d]", v.length, MaxArrayLength)
		}
		count, err := dec.DecodeMapLen()
		if err != nil {
			return err
		}
		if count > 0 {
			v.elems = make([]Element, 0, min(count, v.length, maxPrealloc))
		}
		for range max(count, 0) {
			idx, err := dec.DecodeInt()
			if err != nil {
				return err
			}
			if idx < 0 || idx >= v.length {
				return fmt.Errorf("malformed array: index %d outside length %d", idx, v.length)
			}
			// индексы строго по возрастанию, как их пишет EncodeMsgpack
			if k := len(v.elems); k > 0 && idx <= v.elems[k-1].Index {
				return fmt.Errorf("malformed array: index %d after %d", idx, v.elems[k-1].Index)
			}
			var elem Value
			if err := elem.DecodeMsgpack(dec); err != nil {
				return err
			}
			v.elems = append(v.elems, Element{Index: idx, Value: elem})
		}
		return nil
	case KindRecord:
		if err := expectLen(kind, n, 2); err != nil {
			return err
		}
		count, err := dec.DecodeMapLen()
		if err != nil {
			return err
		}
		if count > 0 {
			v.fields = make([]Field, 0, min(count, maxPrealloc))
		}
		for range max(count, 0) {
			name, err := dec.DecodeString()
			if err != nil {
				return err
			}
			var field Value
			if err := field.DecodeMsgpack(dec); err != nil {
				return err
			}
			v.fields = append(v.fields, Field{Name: name, Value: field})
		}
		return nil
	}
	return fmt.Errorf("%w: %d", ErrUnknownKind, tag)
}

func expectLen(kind Kind, got, want int) error {
	if got != want {
		return fmt.Errorf("malformed %s node: %d items, want %d", kind, got, want)
	}
	return nil
}
