package value

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned by FromJSON for malformed documents.
var ErrInvalidJSON = errors.New("invalid JSON document")

// FromJSON imports a JSON document. Objects become *Object values whose keys
// keep document order; arrays become *Array.
func FromJSON(data []byte) (any, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

func fromResult(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		if !strings.ContainsAny(r.Raw, ".eE") {
			if n, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
				return n
			}
		}
		return r.Float()
	case gjson.String:
		return r.String()
	case gjson.JSON:
		if r.IsArray() {
			arr := NewSparseArray(0)
			r.ForEach(func(_, item gjson.Result) bool {
				arr.Push(fromResult(item))
				return true
			})
			return arr
		}
		obj := New()
		r.ForEach(func(key, item gjson.Result) bool {
			obj.Set(key.String(), fromResult(item))
			return true
		})
		return obj
	}
	return Undefined
}
