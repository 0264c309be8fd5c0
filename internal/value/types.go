package value

type undefinedType struct{}

// Undefined marks a value that is absent, as opposed to nil which stands for null.
var Undefined = undefinedType{}

// IsUndefined reports whether v is the Undefined marker.
func IsUndefined(v any) bool {
	_, ok := v.(undefinedType)
	return ok
}

type holeType struct{}

// Hole can be passed to NewArray to leave an index empty.
var Hole = holeType{}

// Symbol is a unique, non-string property value.
type Symbol struct {
	Description string
}

func (s *Symbol) String() string {
	if s == nil {
		return "Symbol()"
	}
	return "Symbol(" + s.Description + ")"
}

// NewSymbol creates a symbol; every call yields a distinct identity.
func NewSymbol(description string) *Symbol {
	return &Symbol{Description: description}
}

// Function is a named callable. Call is optional and is only used for
// zero-argument hooks such as toJSON.
type Function struct {
	Name string
	Call func() (any, error)
}

// NewFunction creates a function that cannot be invoked.
func NewFunction(name string) *Function {
	return &Function{Name: name}
}

// Callable reports whether the function carries an implementation.
func (f *Function) Callable() bool {
	return f != nil && f.Call != nil
}
