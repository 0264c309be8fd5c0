package value

import "sort"

// Array is an ordered container that may contain holes.
type Array struct {
	length int
	items  map[int]any
}

// NewArray builds an array from items; Hole entries leave their index empty.
func NewArray(items ...any) *Array {
	a := &Array{length: len(items), items: make(map[int]any, len(items))}
	for i, it := range items {
		if _, hole := it.(holeType); hole {
			continue
		}
		a.items[i] = it
	}
	return a
}

// NewSparseArray creates an array of the given length with no present indices.
func NewSparseArray(length int) *Array {
	return &Array{length: max(length, 0), items: make(map[int]any)}
}

// Len returns the array length including holes.
func (a *Array) Len() int {
	return a.length
}

// Push appends v at the end.
func (a *Array) Push(v any) {
	a.items[a.length] = v
	a.length++
}

// Set stores v at index i, growing the array when needed.
func (a *Array) Set(i int, v any) {
	if i < 0 {
		return
	}
	a.items[i] = v
	if i >= a.length {
		a.length = i + 1
	}
}

// Delete turns index i into a hole.
func (a *Array) Delete(i int) {
	delete(a.items, i)
}

// At returns the element at i and whether the index is present.
func (a *Array) At(i int) (any, bool) {
	v, ok := a.items[i]
	return v, ok
}

// Indices returns present indices in ascending order.
func (a *Array) Indices() []int {
	out := make([]int, 0, len(a.items))
	for i := range a.items {
		if i < a.length {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}
