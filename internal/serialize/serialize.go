package serialize

import (
	"encoding/json"
	"math"
	"math/big"
	"reflect"
	"strconv"

	"faultline/internal/value"
)

// Plainer is implemented by values that know how to produce their own plain
// representation. The serializer prefers it over walking properties.
type Plainer interface {
	ToPlain() (any, error)
}

// Options tunes the serializer.
type Options struct {
	// ErrorRootEntries keeps the constructor and toString entries contributed
	// by value.ErrorPrototype.
	ErrorRootEntries bool
}

// DefaultOptions returns the options used by Serialize.
func DefaultOptions() Options {
	return Options{ErrorRootEntries: true}
}

// Serializer turns arbitrary values into Value trees. It holds no mutable
// state and is safe for concurrent use.
type Serializer struct {
	opts Options
}

// New creates a serializer.
func New(opts Options) *Serializer {
	return &Serializer{opts: opts}
}

var defaultSerializer = New(DefaultOptions())

// Serialize snapshots v with default options.
func Serialize(v any) Value {
	return defaultSerializer.Serialize(v)
}

// Serialize snapshots v. It never panics.
func (s *Serializer) Serialize(v any) Value {
	return s.value(v, nil)
}

// identity is the cycle-detection token of a reference value.
type identity struct {
	typ reflect.Type
	ptr uintptr
	n   int
}

func identify(rv reflect.Value) (identity, bool) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		if rv.IsNil() {
			return identity{}, false
		}
		return identity{typ: rv.Type(), ptr: rv.Pointer()}, true
	case reflect.Slice:
		if rv.IsNil() {
			return identity{}, false
		}
		return identity{typ: rv.Type(), ptr: rv.Pointer(), n: rv.Len()}, true
	}
	return identity{}, false
}

func onPath(ancestors []identity, id identity) bool {
	for _, a := range ancestors {
		if a == id {
			return true
		}
	}
	return false
}

// value is the recursive step. ancestors is the current recursion path; it
// is extended by value, so siblings never see each other's entries.
func (s *Serializer) value(v any, ancestors []identity) (out Value) {
	defer func() {
		if r := recover(); r != nil {
			out = Unserializable(panicMessage(r))
		}
	}()

	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case bool:
		return Bool(x)
	case string:
		return Str(x)
	case *value.Symbol:
		if x == nil {
			return Null()
		}
		return Symbol(x.Description)
	case *value.Function:
		if x == nil {
			return Null()
		}
		return Function(x.Name)
	case *big.Int:
		if x == nil {
			return Null()
		}
		return BigInt(x.String())
	}
	if value.IsUndefined(v) {
		return Undefined()
	}

	rv := reflect.ValueOf(v)
	if prim, ok := primitive(rv); ok {
		return prim
	}
	switch rv.Kind() {
	case reflect.Func:
		if rv.IsNil() {
			return Null()
		}
		return Function(funcName(rv))
	case reflect.Map, reflect.Chan:
		if rv.IsNil() {
			return Null()
		}
	}

	id, tracked := identify(rv)
	if tracked {
		if onPath(ancestors, id) {
			return Circular()
		}
		ancestors = append(ancestors, id)
	}

	if plain, ok, failed := s.toPlain(v); ok {
		if failed != nil {
			return Unserializable(failed.Error())
		}
		return s.value(plain, ancestors)
	}

	switch x := v.(type) {
	case *value.Array:
		if x == nil {
			return Null()
		}
		out := NewArray(x.Len())
		for _, i := range x.Indices() {
			item, _ := x.At(i)
			out.Put(i, s.value(item, ancestors))
		}
		return out
	case value.Chain:
		if isNilPointer(rv) {
			return Null()
		}
		return s.record(x, ancestors)
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null()
		}
		if _, isErr := v.(error); !isErr {
			return s.value(rv.Elem().Interface(), ancestors)
		}
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null()
		}
		out := NewArray(rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Put(i, s.value(elemInterface(rv.Index(i)), ancestors))
		}
		return out
	}

	level, ok := s.chainOf(v, rv)
	if !ok {
		// каналы и прочие непрозрачные ссылки
		return NewRecord()
	}
	return s.record(level, ancestors)
}

// chainOf adapts Go-native values to a property chain.
func (s *Serializer) chainOf(v any, rv reflect.Value) (value.Chain, bool) {
	if c, ok := v.(value.Chain); ok {
		if isNilPointer(rv) {
			return nil, false
		}
		return c, true
	}
	if err, ok := v.(error); ok {
		if isNilPointer(rv) {
			return nil, false
		}
		return newErrorLevel(err, rv), true
	}
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		return newStructLevel(rv), true
	case reflect.Map:
		if rv.IsNil() {
			return nil, false
		}
		return newMapLevel(rv), true
	}
	return nil, false
}

// toPlain invokes a to-plain hook when v has one. ok reports whether a hook
// was found; failed carries the hook's failure.
func (s *Serializer) toPlain(v any) (plain any, ok bool, failed error) {
	switch x := v.(type) {
	case Plainer:
		plain, failed = guardedCall(x.ToPlain)
		return plain, true, failed
	case *value.Object:
		if x == nil {
			return nil, false, nil
		}
		hook, err := guardedCall(func() (any, error) { return x.Lookup("toJSON") })
		if err != nil {
			return nil, true, err
		}
		fn, isFn := hook.(*value.Function)
		if !isFn || !fn.Callable() {
			return nil, false, nil
		}
		plain, failed = guardedCall(fn.Call)
		return plain, true, failed
	case json.Marshaler:
		raw, err := guardedCall(func() (any, error) {
			b, err := x.MarshalJSON()
			return b, err
		})
		if err != nil {
			return nil, true, err
		}
		plain, failed = value.FromJSON(raw.([]byte))
		return plain, true, failed
	}
	return nil, false, nil
}

// record walks the chain from level up to, excluding, value.ObjectPrototype.
// A key set by a more specific level is never overwritten.
func (s *Serializer) record(level value.Chain, ancestors []identity) Value {
	out := NewRecord()
	seen := make(map[string]struct{})
	for cur := level; cur != nil && !value.IsObjectRoot(cur); {
		keys, parent, err := guardedKeys(cur)
		if err != nil {
			return Unserializable(err.Error())
		}
		errorRoot := value.IsErrorRoot(cur)
		for _, key := range keys {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if errorRoot && !s.opts.ErrorRootEntries && (key == "constructor" || key == "toString") {
				continue
			}
			out.Set(key, s.value(Read(cur, key), ancestors))
		}
		cur = parent
	}
	return out
}

func primitive(rv reflect.Value) (Value, bool) {
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return BigInt(strconv.FormatUint(u, 10)), true
		}
		return Int(int64(u)), true
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), true
	case reflect.Complex64, reflect.Complex128:
		return Str(strconv.FormatComplex(rv.Complex(), 'g', -1, 128)), true
	case reflect.String:
		return Str(rv.String()), true
	}
	return Value{}, false
}

func isNilPointer(rv reflect.Value) bool {
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func elemInterface(rv reflect.Value) any {
	if !rv.CanInterface() {
		return value.Undefined
	}
	return rv.Interface()
}
