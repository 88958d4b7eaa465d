package arbor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-json/arbor/memres"
)

func defaultHandle() memres.Handle {
	return memres.NewHandle(memres.NewDefault())
}

func TestString_InlineSmallStrings(t *testing.T) {
	h := defaultHandle()
	s := newString(h, "hello")
	assert.Equal(t, "hello", s.String())
	assert.Equal(t, 5, s.Len())
	assert.Nil(t, s.heap, "short string must stay inline")
}

func TestString_SpillsToHeapPastInlineCap(t *testing.T) {
	h := defaultHandle()
	long := strings.Repeat("x", inlineStringCap+1)
	s := newString(h, long)
	require.NotNil(t, s.heap)
	assert.Equal(t, long, s.String())
	assert.GreaterOrEqual(t, s.Cap(), inlineStringCap+1)
}

func TestString_AppendGrows(t *testing.T) {
	h := defaultHandle()
	s := newString(h, "")
	for i := 0; i < 100; i++ {
		s.PushByte('a')
	}
	assert.Equal(t, strings.Repeat("a", 100), s.String())
}

func TestString_ShrinkToFitReturnsToInline(t *testing.T) {
	h := defaultHandle()
	s := newString(h, strings.Repeat("y", 100))
	s.Resize(3)
	s.ShrinkToFit()
	assert.Nil(t, s.heap)
	assert.Equal(t, "yyy", s.String())
}

func TestString_Substr(t *testing.T) {
	h := defaultHandle()
	s := newString(h, "hello world")
	sub := s.Substr(6, 11)
	assert.Equal(t, "world", sub.String())
}

func TestString_Compare(t *testing.T) {
	h := defaultHandle()
	a := newString(h, "abc")
	b := newString(h, "abd")
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(newString(h, "abc")))
}
