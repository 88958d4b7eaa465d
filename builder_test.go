package arbor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_EmptyContainersAllocateNothing(t *testing.T) {
	v := mustParse(t, `{}`, ParseOptions{})
	obj, err := v.AsObject()
	require.NoError(t, err)
	assert.Equal(t, 0, obj.Size())
	assert.Equal(t, 0, len(obj.index))

	v = mustParse(t, `[]`, ParseOptions{})
	arr, err := v.AsArray()
	require.NoError(t, err)
	assert.Equal(t, 0, arr.Size())
	assert.Equal(t, 0, cap(arr.items))
}

func TestBuilder_AllChildrenShareContainerHandle(t *testing.T) {
	h := defaultHandle()
	v, err := ParseString(`{"a":[1,{"b":2}]}`, h, ParseOptions{})
	require.NoError(t, err)

	obj, _ := v.AsObject()
	a := obj.MustAt("a")
	assert.True(t, a.Handle().Equal(h))

	arr, _ := a.AsArray()
	inner := arr.MustAt(1)
	assert.True(t, inner.Handle().Equal(h))
}

func TestBuilder_SizeHintsReflectDirectChildCount(t *testing.T) {
	sizes := &recordingHandler{}
	p := NewParser(sizes, defaultHandle(), ParseOptions{})
	_, err := p.Write([]byte(`{"a":1,"b":[1,2,3]}`))
	require.NoError(t, err)
	require.NoError(t, p.Finish())
	assert.Equal(t, []int{3, 2}, sizes.endSizes)
}

// recordingHandler wraps a Builder, recording every *End size in call
// order for direct assertions the Builder type alone doesn't expose.
type recordingHandler struct {
	Builder
	endSizes []int
}

func (r *recordingHandler) OnArrayEnd(size int) bool {
	r.endSizes = append(r.endSizes, size)
	return r.Builder.OnArrayEnd(size)
}

func (r *recordingHandler) OnObjectEnd(size int) bool {
	r.endSizes = append(r.endSizes, size)
	return r.Builder.OnObjectEnd(size)
}
