package serialize

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"sort"
	"strings"
	"unicode"

	"faultline/internal/value"
)

// structLevel exposes exported struct fields as own keys.
type structLevel struct {
	rv    reflect.Value
	names []string
	index map[string][]int
}

func newStructLevel(rv reflect.Value) *structLevel {
	l := &structLevel{rv: rv, index: make(map[string][]int)}
	for _, f := range reflect.VisibleFields(rv.Type()) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name := fieldName(f)
		if name == "" {
			continue
		}
		if _, dup := l.index[name]; dup {
			continue
		}
		l.index[name] = f.Index
		l.names = append(l.names, name)
	}
	return l
}

func fieldName(f reflect.StructField) string {
	tag, ok := f.Tag.Lookup("json")
	if !ok {
		return f.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

func (l *structLevel) OwnKeys() []string { return l.names }
func (l *structLevel) Parent() value.Chain { return nil }

func (l *structLevel) Own(key string) (any, error) {
	idx, ok := l.index[key]
	if !ok {
		return value.Undefined, nil
	}
	f, err := l.rv.FieldByIndexErr(idx)
	if err != nil {
		// nil embedded pointer
		return value.Undefined, nil
	}
	if !f.CanInterface() {
		return value.Undefined, nil
	}
	return f.Interface(), nil
}

// mapLevel exposes map entries as own keys in sorted order.
type mapLevel struct {
	rv    reflect.Value
	names []string
	keys  map[string]reflect.Value
}

func newMapLevel(rv reflect.Value) *mapLevel {
	l := &mapLevel{rv: rv, keys: make(map[string]reflect.Value, rv.Len())}
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		var name string
		if k.Kind() == reflect.String {
			name = k.String()
		} else {
			name = fmt.Sprint(k.Interface())
		}
		l.keys[name] = k
		l.names = append(l.names, name)
	}
	sort.Strings(l.names)
	return l
}

func (l *mapLevel) OwnKeys() []string { return l.names }
func (l *mapLevel) Parent() value.Chain { return nil }

func (l *mapLevel) Own(key string) (any, error) {
	k, ok := l.keys[key]
	if !ok {
		return value.Undefined, nil
	}
	v := l.rv.MapIndex(k)
	if !v.IsValid() {
		return value.Undefined, nil
	}
	return v.Interface(), nil
}

// errorLevel presents a Go error as an error object: name, message, stack,
// cause and the exported fields of the concrete type, rooted at
// value.ErrorPrototype.
type errorLevel struct {
	err    error
	names  []string
	fields *structLevel
}

func newErrorLevel(err error, rv reflect.Value) *errorLevel {
	l := &errorLevel{err: err, names: []string{"name", "message", "stack"}}
	if unwrapped(err) != nil {
		l.names = append(l.names, "cause")
	}
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return l
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		l.fields = newStructLevel(rv)
		for _, name := range l.fields.names {
			switch name {
			case "name", "message", "stack", "cause":
				continue
			}
			l.names = append(l.names, name)
		}
	}
	return l
}

func (l *errorLevel) OwnKeys() []string { return l.names }
func (l *errorLevel) Parent() value.Chain { return value.ErrorPrototype }

func (l *errorLevel) Own(key string) (any, error) {
	switch key {
	case "name":
		return errorName(l.err), nil
	case "message":
		return l.err.Error(), nil
	case "stack":
		return errorStack(l.err), nil
	case "cause":
		if c := unwrapped(l.err); c != nil {
			return c, nil
		}
		return value.Undefined, nil
	}
	if l.fields != nil {
		return l.fields.Own(key)
	}
	return value.Undefined, nil
}

// errorName derives a display name from the dynamic type. Unexported types
// (errors.New, fmt.Errorf) are reported as plain "Error".
func errorName(err error) string {
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		return "Error"
	}
	if r := []rune(name); !unicode.IsUpper(r[0]) {
		return "Error"
	}
	return name
}

// errorStack prefers the verbose %+v rendering that stack-carrying error
// types provide and falls back to "<name>: <message>".
func errorStack(err error) string {
	msg := err.Error()
	if verbose := fmt.Sprintf("%+v", err); verbose != msg {
		return verbose
	}
	return errorName(err) + ": " + msg
}

// unwrapped returns the single cause of err, or a []error for joined errors.
func unwrapped(err error) any {
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		errs := multi.Unwrap()
		if len(errs) == 0 {
			return nil
		}
		return errs
	}
	if c := errors.Unwrap(err); c != nil {
		return c
	}
	return nil
}

// funcName returns the declared name of a Go func value, or "" for closures.
func funcName(rv reflect.Value) string {
	fn := runtime.FuncForPC(rv.Pointer())
	if fn == nil {
		return ""
	}
	name := fn.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if _, rest, ok := strings.Cut(name, "."); ok {
		name = rest
	}
	name = strings.TrimSuffix(name, "-fm")
	parts := strings.Split(name, ".")
	last := parts[len(parts)-1]
	if isClosureSegment(last) {
		return ""
	}
	return last
}

func isClosureSegment(s string) bool {
	s = strings.TrimPrefix(s, "func")
	s = strings.TrimPrefix(s, "gowrap")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
