package arbor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArray_EmptyAllocatesNothing(t *testing.T) {
	h := defaultHandle()
	v := NewArray(h)
	a, err := v.AsArray()
	require.NoError(t, err)
	assert.Equal(t, 0, a.Size())
	assert.Equal(t, 0, cap(a.items))
}

func TestArray_PushPopAt(t *testing.T) {
	h := defaultHandle()
	v := NewArray(h)
	a, _ := v.AsArray()
	a.PushBack(Int64(h, 1))
	a.PushBack(Int64(h, 2))
	a.PushBack(Int64(h, 3))
	require.Equal(t, 3, a.Size())

	elem, err := a.At(1)
	require.NoError(t, err)
	n, _ := elem.AsInt64()
	assert.EqualValues(t, 2, n)

	a.PopBack()
	assert.Equal(t, 2, a.Size())

	_, err = a.At(5)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestArray_InsertErase(t *testing.T) {
	h := defaultHandle()
	v := NewArray(h)
	a, _ := v.AsArray()
	a.PushBack(Int64(h, 1))
	a.PushBack(Int64(h, 3))
	require.NoError(t, a.Insert(1, Int64(h, 2)))

	for i, want := range []int64{1, 2, 3} {
		got, _ := a.Index(i).AsInt64()
		assert.EqualValues(t, want, got)
	}

	require.NoError(t, a.Erase(1))
	got, _ := a.Index(1).AsInt64()
	assert.EqualValues(t, 3, got)
}

func TestArray_FluentIndexOnNullForOutOfRange(t *testing.T) {
	h := defaultHandle()
	v := NewArray(h)
	nv := v.Index(42)
	assert.True(t, nv.IsNull())
}
