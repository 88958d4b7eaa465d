// Package arbor implements an incremental, resumable JSON parser, a
// polymorphic in-memory document tree, and a paired streaming serializer.
//
// The accessor shape (Kind, AsNull, AsNumber, AsString, ...) and the
// fluent Index/Key drill-down are carried over from the teacher this
// module grew out of; everything underneath — the allocator-aware value
// storage, the incremental parser, and the resumable serializer — is new.
package arbor

import (
	"fmt"

	"github.com/arbor-json/arbor/memres"
)

// Kind is the discriminant of a Value's tagged union.
type Kind int8

// Possible Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindUint64
	KindDouble
	KindString
	KindArray
	KindObject

	numKinds
)

var kindStrings = [numKinds]string{
	"null", "bool", "int64", "uint64", "double", "string", "array", "object",
}

// String returns a human-readable name for k, or "<unknown>" if k is out
// of range.
func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "<unknown>"
	}
	return kindStrings[k]
}

// Value is a discriminated union holding one of: null, bool, int64,
// uint64, double, string, array, object. Every non-null value constructed
// through this package's APIs carries the allocator handle of the
// container that owns it (spec §3 invariant: "every child value of a
// container shares that container's allocator handle").
//
// There is no dynamic dispatch here: Kind drives which of the fields below
// is meaningful, matching spec §9's "the kind tag drives a small jump
// table" design note.
type Value struct {
	kind Kind
	h    memres.Handle

	b   bool
	i64 int64
	u64 uint64
	f64 float64

	str *String
	arr *Array
	obj *Object
}

// Null returns a Value holding JSON null, backed by h. A null value holds
// no heap resources regardless of h (spec §3 invariant).
func Null(h memres.Handle) Value { return Value{kind: KindNull, h: h} }

// Bool returns a Value holding b.
func Bool(h memres.Handle, b bool) Value { return Value{kind: KindBool, h: h, b: b} }

// Int64 returns a Value holding a signed 64-bit integer.
func Int64(h memres.Handle, v int64) Value { return Value{kind: KindInt64, h: h, i64: v} }

// Uint64 returns a Value holding an unsigned 64-bit integer.
func Uint64(h memres.Handle, v uint64) Value { return Value{kind: KindUint64, h: h, u64: v} }

// Double returns a Value holding an IEEE-754 double.
func Double(h memres.Handle, v float64) Value { return Value{kind: KindDouble, h: h, f64: v} }

// NewString returns a Value holding a copy of s.
func NewString(h memres.Handle, s string) Value {
	return Value{kind: KindString, h: h, str: newString(h, s)}
}

// NewArray returns a Value holding an empty array. Empty arrays allocate
// nothing (spec §3).
func NewArray(h memres.Handle) Value {
	return Value{kind: KindArray, h: h, arr: newArray(h)}
}

// NewObject returns a Value holding an empty object.
func NewObject(h memres.Handle) Value {
	return Value{kind: KindObject, h: h, obj: newObject(h)}
}

// Kind reports v's discriminant.
func (v *Value) Kind() Kind { return v.kind }

// Handle returns the allocator handle v was constructed with.
func (v *Value) Handle() memres.Handle { return v.h }

// IsNull reports whether v holds JSON null.
func (v *Value) IsNull() bool { return v.kind == KindNull }

// IsNumber reports whether v holds int64, uint64, or double.
func (v *Value) IsNumber() bool {
	return v.kind == KindInt64 || v.kind == KindUint64 || v.kind == KindDouble
}

// TypeError describes a kind mismatch. The accessors' errors (and the
// throwing forms' panics, which carry those same errors) wrap a sentinel
// such as ErrNotObject and include TypeError's message text; they do not
// wrap a *TypeError value itself.
type TypeError struct {
	Want Kind
	Got  Kind
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("arbor: expected %s, got %s", e.Want, e.Got)
}

func wrongKind(want, got Kind) error {
	var sentinel error
	switch want {
	case KindObject:
		sentinel = ErrNotObject
	case KindArray:
		sentinel = ErrNotArray
	case KindInt64, KindUint64, KindDouble:
		sentinel = ErrNotNumber
	default:
		sentinel = ErrNotFound
	}
	return fmt.Errorf("%w: %s", sentinel, (&TypeError{Want: want, Got: got}).Error())
}

// AsNull returns ErrNotFound-family error unless v holds null.
func (v *Value) AsNull() error {
	if v.kind != KindNull {
		return wrongKind(KindNull, v.kind)
	}
	return nil
}

// AsBool extracts a bool, or an error if v does not hold a bool.
func (v *Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, wrongKind(KindBool, v.kind)
	}
	return v.b, nil
}

// AsInt64 extracts an int64. Only succeeds if v's kind is exactly int64;
// use AsNumber for a widening numeric view.
func (v *Value) AsInt64() (int64, error) {
	if v.kind != KindInt64 {
		return 0, wrongKind(KindInt64, v.kind)
	}
	return v.i64, nil
}

// AsUint64 extracts a uint64. Only succeeds if v's kind is exactly uint64.
func (v *Value) AsUint64() (uint64, error) {
	if v.kind != KindUint64 {
		return 0, wrongKind(KindUint64, v.kind)
	}
	return v.u64, nil
}

// AsNumber extracts v as a float64 regardless of whether it is stored as
// int64, uint64, or double, mirroring the teacher's AsNumber (which
// collapses Integer and Number). Use AsInt64/AsUint64 when exact integer
// precision beyond float64's 53 mantissa bits matters.
func (v *Value) AsNumber() (float64, error) {
	switch v.kind {
	case KindInt64:
		return float64(v.i64), nil
	case KindUint64:
		return float64(v.u64), nil
	case KindDouble:
		return v.f64, nil
	}
	return 0, wrongKind(KindDouble, v.kind)
}

// AsString extracts the string contents.
func (v *Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", wrongKind(KindString, v.kind)
	}
	return v.str.String(), nil
}

// AsArray returns the underlying *Array, or an error if v is not an array.
func (v *Value) AsArray() (*Array, error) {
	if v.kind != KindArray {
		return nil, wrongKind(KindArray, v.kind)
	}
	return v.arr, nil
}

// AsObject returns the underlying *Object, or an error if v is not an
// object.
func (v *Value) AsObject() (*Object, error) {
	if v.kind != KindObject {
		return nil, wrongKind(KindObject, v.kind)
	}
	return v.obj, nil
}

// IfObject returns the underlying *Object, or nil if v is not an object
// (spec §4.2 "if_object"), without allocating an error.
func (v *Value) IfObject() *Object {
	if v.kind != KindObject {
		return nil
	}
	return v.obj
}

// IfArray returns the underlying *Array, or nil if v is not an array.
func (v *Value) IfArray() *Array {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// GetObject returns the underlying *Object without a type check; the
// result is undefined (may panic) if v is not an object. This mirrors the
// "unchecked accessor" spec §4.2 requires alongside the checked AsObject.
func (v *Value) GetObject() *Object { return v.obj }

// GetArray is GetObject's array counterpart.
func (v *Value) GetArray() *Array { return v.arr }

// MustArray is the throwing form of AsArray.
func (v *Value) MustArray() *Array {
	a, err := v.AsArray()
	if err != nil {
		panic(err)
	}
	return a
}

// MustObject is the throwing form of AsObject.
func (v *Value) MustObject() *Object {
	o, err := v.AsObject()
	if err != nil {
		panic(err)
	}
	return o
}

// MustString is the throwing form of AsString.
func (v *Value) MustString() string {
	s, err := v.AsString()
	if err != nil {
		panic(err)
	}
	return s
}

// Index provides the fluent drill-down interface the teacher's Value.Index
// offered: out-of-range or non-array access returns a null Value instead
// of an error, so chained lookups on malformed documents degrade to null
// rather than panicking.
func (v *Value) Index(i int) *Value {
	if v.kind != KindArray {
		nv := Null(v.h)
		return &nv
	}
	return v.arr.at(i)
}

// Key is Index's object counterpart.
func (v *Value) Key(k string) *Value {
	if v.kind != KindObject {
		nv := Null(v.h)
		return &nv
	}
	if p := v.obj.find(k); p != nil {
		return p
	}
	nv := Null(v.h)
	return &nv
}

// Clone deep-copies v, rebinding every descendant to h. This is the
// explicit counterpart to C++'s allocator-propagating copy constructor
// (DESIGN.md's resolution of the Go copy/move question): plain Go
// assignment shares the same handle and is the right choice when no
// rebind is needed, while Clone is used when moving a value across
// resources (e.g. lifting a value built in a Monotonic arena into a
// Default-backed long-lived tree).
func (v *Value) Clone(h memres.Handle) Value {
	switch v.kind {
	case KindNull:
		return Null(h)
	case KindBool:
		return Bool(h, v.b)
	case KindInt64:
		return Int64(h, v.i64)
	case KindUint64:
		return Uint64(h, v.u64)
	case KindDouble:
		return Double(h, v.f64)
	case KindString:
		return NewString(h, v.str.String())
	case KindArray:
		out := newArray(h)
		out.items = make([]Value, v.arr.Size())
		for i := range v.arr.items {
			out.items[i] = v.arr.items[i].Clone(h)
		}
		return Value{kind: KindArray, h: h, arr: out}
	case KindObject:
		out := newObject(h)
		for _, p := range v.obj.dense {
			out.emplaceOverwrite(p.key, p.val.Clone(h))
		}
		return Value{kind: KindObject, h: h, obj: out}
	}
	return Null(h)
}

// Equal performs the deep, cross-type numeric comparison spec §4.2
// requires: arrays compare element-wise, objects compare key-set equal
// with per-key equal values, and int64/uint64/double compare by
// mathematical value rather than representation.
func (v *Value) Equal(other *Value) bool {
	if v.IsNumber() && other.IsNumber() {
		return numbersEqual(v, other)
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindString:
		return v.str.String() == other.str.String()
	case KindArray:
		if v.arr.Size() != other.arr.Size() {
			return false
		}
		for i := range v.arr.items {
			if !v.arr.items[i].Equal(&other.arr.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if v.obj.Size() != other.obj.Size() {
			return false
		}
		for _, p := range v.obj.dense {
			op := other.obj.find(p.key)
			if op == nil || !p.val.Equal(op) {
				return false
			}
		}
		return true
	}
	return false
}

func numbersEqual(a, b *Value) bool {
	if a.kind == KindInt64 && b.kind == KindInt64 {
		return a.i64 == b.i64
	}
	if a.kind == KindUint64 && b.kind == KindUint64 {
		return a.u64 == b.u64
	}
	if a.kind == KindDouble && b.kind == KindDouble {
		return a.f64 == b.f64
	}
	af, _ := a.AsNumber()
	bf, _ := b.AsNumber()
	// int64 vs uint64 needs exact comparison beyond float64 precision for
	// values outside [-2^53, 2^53]; handle that pair exactly.
	if a.kind == KindInt64 && b.kind == KindUint64 {
		return a.i64 >= 0 && uint64(a.i64) == b.u64
	}
	if a.kind == KindUint64 && b.kind == KindInt64 {
		return b.i64 >= 0 && uint64(b.i64) == a.u64
	}
	return af == bf
}
