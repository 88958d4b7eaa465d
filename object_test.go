package arbor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_EmplaceInsertionOrderAndNoOverwrite(t *testing.T) {
	h := defaultHandle()
	v := NewObject(h)
	o, _ := v.AsObject()

	_, inserted := o.Emplace("a", Int64(h, 1))
	assert.True(t, inserted)
	_, inserted = o.Emplace("b", Int64(h, 2))
	assert.True(t, inserted)
	ref, inserted := o.Emplace("a", Int64(h, 99))
	assert.False(t, inserted, "emplace on existing key must not overwrite")
	n, _ := ref.AsInt64()
	assert.EqualValues(t, 1, n)

	assert.Equal(t, []string{"a", "b"}, o.Keys())
}

func TestObject_SetOverwrites(t *testing.T) {
	h := defaultHandle()
	v := NewObject(h)
	o, _ := v.AsObject()
	o.Emplace("a", Int64(h, 1))
	o.Set("a", Int64(h, 2))
	n, _ := o.MustAt("a").AsInt64()
	assert.EqualValues(t, 2, n)
}

func TestObject_AtNotFound(t *testing.T) {
	h := defaultHandle()
	v := NewObject(h)
	o, _ := v.AsObject()
	_, err := o.At("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestObject_EraseAndReinsert(t *testing.T) {
	h := defaultHandle()
	v := NewObject(h)
	o, _ := v.AsObject()
	o.Emplace("a", Int64(h, 1))
	o.Emplace("b", Int64(h, 2))
	o.Emplace("c", Int64(h, 3))

	assert.Equal(t, 1, o.Erase("b"))
	assert.Equal(t, 0, o.Erase("b"))
	assert.Equal(t, []string{"a", "c"}, o.Keys())

	o.Emplace("d", Int64(h, 4))
	assert.Equal(t, []string{"a", "c", "d"}, o.Keys())
}

func TestObject_ManyKeysResizeIndexCorrectly(t *testing.T) {
	h := defaultHandle()
	v := NewObject(h)
	o, _ := v.AsObject()
	const n = 500
	for i := 0; i < n; i++ {
		o.Emplace(fmt.Sprintf("k%d", i), Int64(h, int64(i)))
	}
	require.Equal(t, n, o.Size())
	for i := 0; i < n; i++ {
		val, err := o.At(fmt.Sprintf("k%d", i))
		require.NoError(t, err)
		got, _ := val.AsInt64()
		assert.EqualValues(t, i, got)
	}
	// Load factor invariant: capacity >= 2N and a power of two.
	assert.GreaterOrEqual(t, len(o.index), 2*n)
	assert.Zero(t, len(o.index)&(len(o.index)-1))
}

func TestObject_IndexInsertsNullWhenMissing(t *testing.T) {
	h := defaultHandle()
	v := NewObject(h)
	o, _ := v.AsObject()
	ref := o.Index("x")
	assert.True(t, ref.IsNull())
	assert.Equal(t, 1, o.Size())
}
