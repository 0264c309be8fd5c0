package value

import "fmt"

// Chain is one level of a property lookup chain.
type Chain interface {
	// OwnKeys lists every key defined directly on this level, hidden ones included.
	OwnKeys() []string
	// Own reads a key defined on this level. Accessors are invoked and may fail.
	Own(key string) (any, error)
	// Parent returns the next ancestor level or nil.
	Parent() Chain
}

// Property describes one own property of an Object.
type Property struct {
	Value  any
	Get    func() (any, error)
	Set    func(any) error
	Hidden bool // skipped by enumeration, still visible to OwnKeys
}

// IsAccessor reports whether the property is backed by a getter or setter.
func (p *Property) IsAccessor() bool {
	return p.Get != nil || p.Set != nil
}

// Object is an ordered property bag with a prototype link.
type Object struct {
	keys  []string
	props map[string]*Property
	proto *Object
}

var _ Chain = (*Object)(nil)

// New creates an object inheriting from ObjectPrototype.
func New() *Object {
	return NewWithProto(ObjectPrototype)
}

// NewWithProto creates an object with the given prototype; nil means no prototype.
func NewWithProto(proto *Object) *Object {
	return &Object{props: make(map[string]*Property), proto: proto}
}

// Define installs or replaces an own property, keeping its original position.
func (o *Object) Define(key string, p Property) *Object {
	if _, exists := o.props[key]; !exists {
		o.keys = append(o.keys, key)
	}
	prop := p
	o.props[key] = &prop
	return o
}

// Set assigns a data property. An accessor under key is replaced by the
// data property in the same position; setters are never invoked.
func (o *Object) Set(key string, v any) *Object {
	if p, ok := o.props[key]; ok && !p.IsAccessor() {
		p.Value = v
		return o
	}
	return o.Define(key, Property{Value: v})
}

// Hide defines a non-enumerable data property.
func (o *Object) Hide(key string, v any) *Object {
	return o.Define(key, Property{Value: v, Hidden: true})
}

// Accessor defines a getter/setter pair. Either function may be nil.
func (o *Object) Accessor(key string, get func() (any, error), set func(any) error) *Object {
	return o.Define(key, Property{Get: get, Set: set})
}

// Delete removes an own property.
func (o *Object) Delete(key string) {
	if _, ok := o.props[key]; !ok {
		return
	}
	delete(o.props, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Property returns the own property descriptor for key.
func (o *Object) Property(key string) (*Property, bool) {
	p, ok := o.props[key]
	return p, ok
}

// OwnKeys returns all own keys in definition order.
func (o *Object) OwnKeys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// EnumerableKeys returns own keys that are not hidden.
func (o *Object) EnumerableKeys() []string {
	out := make([]string, 0, len(o.keys))
	for _, k := range o.keys {
		if !o.props[k].Hidden {
			out = append(out, k)
		}
	}
	return out
}

// Own reads an own property; a getter is invoked.
func (o *Object) Own(key string) (any, error) {
	p, ok := o.props[key]
	if !ok {
		return Undefined, nil
	}
	if p.Get != nil {
		return p.Get()
	}
	if p.Set != nil {
		// setter без getter читается как undefined
		return Undefined, nil
	}
	return p.Value, nil
}

// Lookup resolves key along the prototype chain.
func (o *Object) Lookup(key string) (any, error) {
	for cur := o; cur != nil; cur = cur.proto {
		if _, ok := cur.props[key]; ok {
			return cur.Own(key)
		}
	}
	return Undefined, nil
}

// Proto returns the prototype or nil.
func (o *Object) Proto() *Object {
	return o.proto
}

// SetProto replaces the prototype. It refuses links that would form a loop.
func (o *Object) SetProto(proto *Object) error {
	for cur := proto; cur != nil; cur = cur.proto {
		if cur == o {
			return fmt.Errorf("cyclic prototype chain")
		}
	}
	o.proto = proto
	return nil
}

// Parent implements Chain.
func (o *Object) Parent() Chain {
	if o.proto == nil {
		return nil
	}
	return o.proto
}

// ObjectPrototype is the universal root every chain walk stops at.
var ObjectPrototype = newObjectPrototype()

func newObjectPrototype() *Object {
	root := &Object{props: make(map[string]*Property)}
	for _, name := range []string{
		"constructor", "__defineGetter__", "__defineSetter__", "hasOwnProperty",
		"__lookupGetter__", "__lookupSetter__", "isPrototypeOf", "propertyIsEnumerable",
		"toString", "valueOf", "__proto__", "toLocaleString",
	} {
		fn := name
		if name == "constructor" {
			fn = "Object"
		}
		root.Hide(name, NewFunction(fn))
	}
	return root
}

// IsObjectRoot reports whether c is ObjectPrototype.
func IsObjectRoot(c Chain) bool {
	o, ok := c.(*Object)
	return ok && o == ObjectPrototype
}

// RootKeys returns the names defined on the universal and error roots.
func RootKeys() []string {
	keys := ObjectPrototype.OwnKeys()
	return append(keys, ErrorPrototype.OwnKeys()...)
}
