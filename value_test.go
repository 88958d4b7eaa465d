package arbor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-json/arbor/memres"
)

func TestValue_KindAccessors(t *testing.T) {
	h := defaultHandle()
	v := Bool(h, true)
	assert.Equal(t, KindBool, v.Kind())
	b, err := v.AsBool()
	require.NoError(t, err)
	assert.True(t, b)

	_, err = v.AsInt64()
	assert.ErrorIs(t, err, ErrNotNumber)
}

func TestValue_AsNumberWidensIntegerKinds(t *testing.T) {
	h := defaultHandle()
	i := Int64(h, 5)
	u := Uint64(h, 5)
	n, _ := i.AsNumber()
	assert.Equal(t, 5.0, n)
	n, _ = u.AsNumber()
	assert.Equal(t, 5.0, n)
}

func TestValue_EqualCrossNumericKind(t *testing.T) {
	h := defaultHandle()
	a := Int64(h, 5)
	b := Uint64(h, 5)
	c := Double(h, 5.0)
	assert.True(t, a.Equal(&b))
	assert.True(t, a.Equal(&c))
	assert.True(t, b.Equal(&c))

	neg := Int64(h, -1)
	assert.False(t, neg.Equal(&b))
}

func TestValue_EqualObjectsKeySetEqual(t *testing.T) {
	h := defaultHandle()
	v1 := NewObject(h)
	o1, _ := v1.AsObject()
	o1.Emplace("a", Int64(h, 1))
	o1.Emplace("b", Int64(h, 2))

	v2 := NewObject(h)
	o2, _ := v2.AsObject()
	o2.Emplace("b", Int64(h, 2))
	o2.Emplace("a", Int64(h, 1))

	assert.True(t, v1.Equal(&v2), "objects equal regardless of key insertion order")
}

func TestValue_FluentDrillDownOnMissingReturnsNull(t *testing.T) {
	h := defaultHandle()
	v := NewObject(h)
	o, _ := v.AsObject()
	o.Emplace("members", NewArray(h))

	null := v.Key("nope").Index(-1).Key("anything")
	assert.True(t, null.IsNull())
}

func TestValue_CloneRebindsHandle(t *testing.T) {
	h1 := defaultHandle()
	h2 := memres.NewHandle(memres.NewStatic(make([]byte, 4096)))

	v := NewObject(h1)
	o, _ := v.AsObject()
	o.Emplace("n", NewString(h1, "hi"))

	cloned := v.Clone(h2)
	co, _ := cloned.AsObject()
	child := co.MustAt("n")
	assert.True(t, child.Handle().Equal(h2))
	assert.False(t, child.Handle().Equal(h1))
}
