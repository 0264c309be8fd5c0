package value

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectProperties(t *testing.T) {
	t.Run("Should keep definition order across hidden and visible keys", func(t *testing.T) {
		o := New().Set("b", 1).Hide("a", 2).Set("c", 3)
		assert.Equal(t, []string{"b", "a", "c"}, o.OwnKeys())
		assert.Equal(t, []string{"b", "c"}, o.EnumerableKeys())
	})

	t.Run("Should replace accessors without calling the setter", func(t *testing.T) {
		called := false
		o := New().Set("a", 1).Accessor("x", nil, func(any) error {
			called = true
			return errors.New("read-only")
		}).Set("z", 2)
		o.Set("x", 42)

		assert.False(t, called)
		assert.Equal(t, []string{"a", "x", "z"}, o.OwnKeys())
		p, ok := o.Property("x")
		require.True(t, ok)
		assert.False(t, p.IsAccessor())
		v, err := o.Own("x")
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	})

	t.Run("Should surface getter failures", func(t *testing.T) {
		o := New().Accessor("bad", func() (any, error) { return nil, errors.New("boom") }, nil)
		_, err := o.Own("bad")
		assert.EqualError(t, err, "boom")
	})

	t.Run("Should resolve keys along the prototype chain", func(t *testing.T) {
		base := New().Set("base", true)
		o := NewWithProto(base).Set("own", 1)
		v, err := o.Lookup("base")
		require.NoError(t, err)
		assert.Equal(t, true, v)
	})

	t.Run("Should refuse cyclic prototypes", func(t *testing.T) {
		a := New()
		b := NewWithProto(a)
		assert.Error(t, a.SetProto(b))
	})

	t.Run("Should delete keys and forget their position", func(t *testing.T) {
		o := New().Set("a", 1).Set("b", 2)
		o.Delete("a")
		assert.Equal(t, []string{"b"}, o.OwnKeys())
	})
}

func TestErrors(t *testing.T) {
	t.Run("Should build errors rooted at ErrorPrototype", func(t *testing.T) {
		e := NewError("test")
		assert.True(t, IsError(e))
		stack, err := e.Own("stack")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(stack.(string), "Error: test\n    at "))
	})

	t.Run("Should take the name from the class", func(t *testing.T) {
		typeErr := NewErrorClass("TypeError", nil)
		e := NewErrorOf(typeErr, "bad type")
		name, err := e.Lookup("name")
		require.NoError(t, err)
		assert.Equal(t, "TypeError", name)
		stack, _ := e.Own("stack")
		assert.Contains(t, stack, "TypeError: bad type")
	})

	t.Run("Should not treat plain objects as errors", func(t *testing.T) {
		assert.False(t, IsError(New()))
	})
}

func TestArray(t *testing.T) {
	a := NewArray(1, Hole, 3)
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, []int{0, 2}, a.Indices())
	_, ok := a.At(1)
	assert.False(t, ok)

	a.Set(5, "x")
	assert.Equal(t, 6, a.Len())
	a.Delete(0)
	assert.Equal(t, []int{2, 5}, a.Indices())
}

func TestFromJSON(t *testing.T) {
	t.Run("Should preserve document key order", func(t *testing.T) {
		doc, err := FromJSON([]byte(`{"z":1,"a":{"y":2.5,"b":[true,null,"s"]}}`))
		require.NoError(t, err)
		obj := doc.(*Object)
		assert.Equal(t, []string{"z", "a"}, obj.OwnKeys())
		z, _ := obj.Own("z")
		assert.Equal(t, int64(1), z)
		inner, _ := obj.Own("a")
		assert.Equal(t, []string{"y", "b"}, inner.(*Object).OwnKeys())
		y, _ := inner.(*Object).Own("y")
		assert.Equal(t, 2.5, y)
		list, _ := inner.(*Object).Own("b")
		assert.Equal(t, 3, list.(*Array).Len())
	})

	t.Run("Should reject malformed input", func(t *testing.T) {
		_, err := FromJSON([]byte(`{"a":`))
		assert.ErrorIs(t, err, ErrInvalidJSON)
	})
}
