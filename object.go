package arbor

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/arbor-json/arbor/memres"
)

// MaxObjectEntries is the hard ceiling on object size (spec §6).
const MaxObjectEntries = 1<<32 - 1

const emptySlot = -1

type pair struct {
	key string
	val Value
}

// Object is an insertion-ordered mapping from string keys to values,
// backed by a dense array of pairs (preserving insertion order) and a
// sparse open-addressed hash index of pair offsets (spec §3, §4.2).
//
// The hash is a per-object-salted 64-bit mix, computed with
// github.com/cespare/xxhash/v2 (promoted here from a transitive dependency
// several pack repos already pull in via their Redis/Prometheus clients —
// see SPEC_FULL.md's domain-stack table) rather than a hand-rolled mix, to
// blunt hash-flooding collision attacks on untrusted input.
type Object struct {
	h     memres.Handle
	dense []pair
	index []int32 // capacity is always a power of two; emptySlot marks unused
	salt  uint64
}

func newObject(h memres.Handle) *Object {
	return &Object{h: h, salt: randomSalt()}
}

func randomSalt() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing is effectively unrecoverable system state;
		// fall back to a fixed salt rather than panicking mid-parse. This
		// only weakens flood resistance, it never breaks correctness.
		return 0x9e3779b97f4a7c15
	}
	return binary.LittleEndian.Uint64(b[:])
}

func (o *Object) hashKey(key string) uint64 {
	return xxhash.Sum64String(key) ^ o.salt
}

// Size reports the number of live entries.
func (o *Object) Size() int { return len(o.dense) }

// Handle returns the object's allocator handle.
func (o *Object) Handle() memres.Handle { return o.h }

func (o *Object) slotCapacity() int { return len(o.index) }

func (o *Object) ensureIndexCapacity() {
	need := nextPow2((len(o.dense) + 1) * 2)
	if len(o.index) >= need {
		return
	}
	o.rehash(need)
}

func nextPow2(n int) int {
	if n < 8 {
		return 8
	}
	p := 8
	for p < n {
		p *= 2
	}
	return p
}

func (o *Object) rehash(newCap int) {
	newIndex := make([]int32, newCap)
	for i := range newIndex {
		newIndex[i] = emptySlot
	}
	mask := uint64(newCap - 1)
	for i := range o.dense {
		h := o.hashKey(o.dense[i].key)
		slot := h & mask
		for newIndex[slot] != emptySlot {
			slot = (slot + 1) & mask
		}
		newIndex[slot] = int32(i)
	}
	o.index = newIndex
}

// findSlot returns the index slot for key: either the slot already holding
// it (found=true) or the first empty slot on its probe sequence
// (found=false). o.index must already have nonzero capacity.
func (o *Object) findSlot(key string) (slot int, found bool) {
	mask := uint64(len(o.index) - 1)
	h := o.hashKey(key)
	s := h & mask
	for {
		di := o.index[s]
		if di == emptySlot {
			return int(s), false
		}
		if o.dense[di].key == key {
			return int(s), true
		}
		s = (s + 1) & mask
	}
}

// find returns a pointer to the value stored under key, or nil.
func (o *Object) find(key string) *Value {
	if len(o.index) == 0 {
		return nil
	}
	slot, found := o.findSlot(key)
	if !found {
		return nil
	}
	return &o.dense[o.index[slot]].val
}

// Contains reports whether key is present.
func (o *Object) Contains(key string) bool { return o.find(key) != nil }

// At returns a pointer to the value under key, or an error if absent
// (fallible form).
func (o *Object) At(key string) (*Value, error) {
	if v := o.find(key); v != nil {
		return v, nil
	}
	return nil, fmt.Errorf("%w: key %q", ErrNotFound, key)
}

// MustAt is At's throwing form.
func (o *Object) MustAt(key string) *Value {
	v, err := o.At(key)
	if err != nil {
		panic(err)
	}
	return v
}

// Emplace inserts (key, v) if key is not already present; if it is, the
// existing entry is returned unchanged (spec §4.2: "insertions of a
// pre-existing key return the existing entry and do not overwrite").
// inserted reports whether a new entry was added.
func (o *Object) Emplace(key string, v Value) (ref *Value, inserted bool) {
	o.ensureIndexCapacity()
	slot, found := o.findSlot(key)
	if found {
		return &o.dense[o.index[slot]].val, false
	}
	if !v.h.Equal(o.h) {
		v = v.Clone(o.h)
	}
	o.dense = append(o.dense, pair{key: key, val: v})
	o.index[slot] = int32(len(o.dense) - 1)
	return &o.dense[len(o.dense)-1].val, true
}

// emplaceOverwrite inserts (key, v), overwriting any existing entry's
// value in place (used by Value.Clone and by the builder's duplicate-key
// collapse, where "later duplicates overwrite earlier ones").
func (o *Object) emplaceOverwrite(key string, v Value) {
	o.ensureIndexCapacity()
	if !v.h.Equal(o.h) {
		v = v.Clone(o.h)
	}
	slot, found := o.findSlot(key)
	if found {
		o.dense[o.index[slot]].val = v
		return
	}
	o.dense = append(o.dense, pair{key: key, val: v})
	o.index[slot] = int32(len(o.dense) - 1)
}

// Set is the explicit assignment API (spec §3) that overwrites an
// existing entry's value, inserting if absent.
func (o *Object) Set(key string, v Value) {
	o.emplaceOverwrite(key, v)
}

// Index inserts a null value for key if missing (spec §4.2's
// "operator[key] (inserts null if missing)") and returns a pointer to it.
func (o *Object) Index(key string) *Value {
	ref, _ := o.Emplace(key, Null(o.h))
	return ref
}

// Erase removes key if present, returning the number of entries removed
// (0 or 1, matching spec §4.2's erase(key) -> count).
func (o *Object) Erase(key string) int {
	if len(o.index) == 0 {
		return 0
	}
	slot, found := o.findSlot(key)
	if !found {
		return 0
	}
	di := o.index[slot]

	// Remove from the dense array, preserving insertion order of the
	// remaining entries.
	o.dense = append(o.dense[:di], o.dense[di+1:]...)

	// Every offset past di has shifted down by one and the erased slot's
	// probe chain needs tombstone-free repair, so a full rehash is
	// simplest and correctness-preserving (Size() is small relative to
	// parse-time insert volume in typical use).
	o.rehashCurrentCapacity()
	return 1
}

func (o *Object) rehashCurrentCapacity() {
	n := len(o.index)
	if n == 0 {
		return
	}
	o.rehash(n)
}

// Iterate invokes fn for each entry in insertion order. Iteration stops
// early if fn returns false.
func (o *Object) Iterate(fn func(key string, v *Value) bool) {
	for i := range o.dense {
		if !fn(o.dense[i].key, &o.dense[i].val) {
			return
		}
	}
}

// Keys returns the object's keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.dense))
	for i, p := range o.dense {
		keys[i] = p.key
	}
	return keys
}
