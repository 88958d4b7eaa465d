package memres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_AllocateDeallocate(t *testing.T) {
	d := NewDefault()
	block, err := d.Allocate(32, 8)
	require.NoError(t, err)
	assert.Len(t, block, 32)
	d.Deallocate(block, 32, 8)

	assert.True(t, d.IsEqual(NewDefault()))
}

func TestDefault_RejectsBadAlignment(t *testing.T) {
	d := NewDefault()
	_, err := d.Allocate(8, 3)
	assert.Error(t, err)

	_, err = d.Allocate(8, MaxAlign*2)
	assert.Error(t, err)
}

func TestMonotonic_GrowsSlabs(t *testing.T) {
	m := NewMonotonic()
	var blocks [][]byte
	for i := 0; i < 4000; i++ {
		b, err := m.Allocate(16, 8)
		require.NoError(t, err)
		blocks = append(blocks, b)
	}
	// Every block must be distinct memory.
	seen := map[*byte]bool{}
	for _, b := range blocks {
		if len(b) == 0 {
			continue
		}
		p := &b[0]
		assert.False(t, seen[p], "overlapping allocation")
		seen[p] = true
	}
	// Deallocate is a no-op; should not panic.
	m.Deallocate(blocks[0], 16, 8)
}

func TestMonotonic_FromCallerBuffer(t *testing.T) {
	buf := make([]byte, 64)
	m := NewMonotonicFromBuffer(buf)
	b1, err := m.Allocate(16, 8)
	require.NoError(t, err)
	assert.Same(t, &buf[0], &b1[0])

	// Exceeding the first slab spills to a new heap slab transparently.
	_, err = m.Allocate(128, 8)
	require.NoError(t, err)
}

func TestStatic_ExhaustsAndFails(t *testing.T) {
	buf := make([]byte, 16)
	s := NewStatic(buf)
	_, err := s.Allocate(10, 1)
	require.NoError(t, err)
	_, err = s.Allocate(10, 1)
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestStatic_IdentityEquality(t *testing.T) {
	s1 := NewStatic(make([]byte, 16))
	s2 := NewStatic(make([]byte, 16))
	assert.False(t, s1.IsEqual(s2))
	assert.True(t, s1.IsEqual(s1))
}

func TestNull_AlwaysFails(t *testing.T) {
	n := NewNull()
	_, err := n.Allocate(1, 1)
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestHandle_UncountedIsNoOp(t *testing.T) {
	h := NewHandle(NewDefault())
	assert.False(t, h.IsCounted())
	h2 := h.Acquire()
	h2.Release()
	h.Release()
	// Resource still usable; nothing closed because there was nothing to
	// close and no counting occurred.
	_, err := h.Resource().Allocate(1, 1)
	assert.NoError(t, err)
}

type closeTrackingResource struct {
	*Null
	closed bool
}

func (c *closeTrackingResource) Close() error {
	c.closed = true
	return nil
}

func TestHandle_CountedClosesOnLastRelease(t *testing.T) {
	r := &closeTrackingResource{Null: NewNull()}
	h := NewCountedHandle(r)
	h2 := h.Acquire()
	h.Release()
	assert.False(t, r.closed, "resource closed while h2 still holds a reference")
	h2.Release()
	assert.True(t, r.closed)
}

func TestHandle_DeallocateTrivialBit(t *testing.T) {
	assert.False(t, NewHandle(NewDefault()).IsDeallocateTrivial())
	assert.True(t, NewHandle(NewMonotonic()).IsDeallocateTrivial())
	assert.True(t, NewHandle(NewStatic(make([]byte, 8))).IsDeallocateTrivial())
	assert.True(t, NewHandle(NewNull()).IsDeallocateTrivial())
}
