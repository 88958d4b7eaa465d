package arbor

import (
	"fmt"

	"github.com/arbor-json/arbor/memres"
)

// Array is a contiguous, insertion-ordered sequence of values with
// amortized O(1) append (spec §4.2). Empty arrays allocate nothing.
//
// Array's backing storage holds Value structs directly rather than bytes,
// so unlike String (which is allocated byte-for-byte through the
// container's Handle), growth here uses Go's ordinary slice allocation.
// The Handle is still recorded and propagated to every child Value,
// preserving the allocator-propagation invariant (spec §3) that matters
// for correctness; only the container's *own* backing array bypasses the
// polymorphic-allocator byte interface, since Go offers no portable way to
// allocate a typed slice from a raw byte buffer without unsafe. See
// DESIGN.md.
type Array struct {
	h     memres.Handle
	items []Value
}

func newArray(h memres.Handle) *Array {
	return &Array{h: h}
}

// Size reports the number of elements.
func (a *Array) Size() int { return len(a.items) }

// Handle returns the array's allocator handle.
func (a *Array) Handle() memres.Handle { return a.h }

// Reserve ensures capacity for at least n elements without changing Size.
func (a *Array) Reserve(n int) {
	if cap(a.items) >= n {
		return
	}
	grown := make([]Value, len(a.items), nextArrayCap(cap(a.items), n))
	copy(grown, a.items)
	a.items = grown
}

func nextArrayCap(cur, want int) int {
	if cur == 0 {
		cur = 4
	}
	for cur < want {
		cur *= 2
	}
	return cur
}

// PushBack appends v, rebinding it to the array's handle if it was built
// against a different one (deep relocation, spec §3).
func (a *Array) PushBack(v Value) {
	if !v.h.Equal(a.h) {
		v = v.Clone(a.h)
	}
	if len(a.items) == cap(a.items) {
		a.Reserve(len(a.items) + 1)
	}
	a.items = append(a.items, v)
}

// PopBack removes and discards the last element. It is a no-op on an
// empty array.
func (a *Array) PopBack() {
	if len(a.items) == 0 {
		return
	}
	a.items = a.items[:len(a.items)-1]
}

// Insert inserts v at pos, shifting subsequent elements right.
func (a *Array) Insert(pos int, v Value) error {
	if pos < 0 || pos > len(a.items) {
		return fmt.Errorf("%w: insert position %d", ErrOutOfRange, pos)
	}
	if !v.h.Equal(a.h) {
		v = v.Clone(a.h)
	}
	a.items = append(a.items, Value{})
	copy(a.items[pos+1:], a.items[pos:])
	a.items[pos] = v
	return nil
}

// Erase removes the element at pos, shifting subsequent elements left.
func (a *Array) Erase(pos int) error {
	if pos < 0 || pos >= len(a.items) {
		return fmt.Errorf("%w: erase position %d", ErrOutOfRange, pos)
	}
	copy(a.items[pos:], a.items[pos+1:])
	a.items = a.items[:len(a.items)-1]
	return nil
}

// At returns a pointer to the element at i, or an error if out of range
// (the fallible form; spec §4.2).
func (a *Array) At(i int) (*Value, error) {
	if i < 0 || i >= len(a.items) {
		return nil, fmt.Errorf("%w: index %d", ErrOutOfRange, i)
	}
	return &a.items[i], nil
}

// MustAt is At's throwing form.
func (a *Array) MustAt(i int) *Value {
	v, err := a.At(i)
	if err != nil {
		panic(err)
	}
	return v
}

// Index is the unchecked operator[] form; out-of-range access panics, as
// documented by spec §4.2's "operator[i] (unchecked)".
func (a *Array) Index(i int) *Value { return &a.items[i] }

// at is the fluent-interface helper backing Value.Index, returning a null
// Value pointer instead of erroring on out-of-range access.
func (a *Array) at(i int) *Value {
	if i < 0 || i >= len(a.items) {
		nv := Null(a.h)
		return &nv
	}
	return &a.items[i]
}

// Values returns the array's elements. The returned slice aliases the
// Array's storage.
func (a *Array) Values() []Value { return a.items }

// Iterate invokes fn for each element in order. Iteration stops early if
// fn returns false.
func (a *Array) Iterate(fn func(i int, v *Value) bool) {
	for i := range a.items {
		if !fn(i, &a.items[i]) {
			return
		}
	}
}
