package arbor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string, opts ParseOptions) Value {
	t.Helper()
	v, err := ParseString(s, defaultHandle(), opts)
	require.NoError(t, err)
	return v
}

func TestParser_Scalars(t *testing.T) {
	v := mustParse(t, "null", ParseOptions{})
	assert.True(t, v.IsNull())

	v = mustParse(t, "true", ParseOptions{})
	b, err := v.AsBool()
	require.NoError(t, err)
	assert.True(t, b)

	v = mustParse(t, "false", ParseOptions{})
	b, _ = v.AsBool()
	assert.False(t, b)

	v = mustParse(t, "42", ParseOptions{})
	n, err := v.AsInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	v = mustParse(t, "-42", ParseOptions{})
	i, err := v.AsInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(-42), i)

	v = mustParse(t, "3.5", ParseOptions{})
	f, err := v.AsNumber()
	require.NoError(t, err)
	assert.Equal(t, 3.5, f)

	v = mustParse(t, `"hello"`, ParseOptions{})
	s, err := v.AsString()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
}

// TestParser_NumberClassification matches spec's worked examples of the
// int64/uint64/double split at the int64/uint64 boundary.
func TestParser_NumberClassification(t *testing.T) {
	cases := []struct {
		text string
		kind Kind
	}{
		{"9223372036854775807", KindInt64}, // int64 max: fits, so int64
		{"9223372036854775808", KindUint64}, // int64 max + 1: overflows int64, falls through to uint64
		{"-9223372036854775808", KindInt64},
		{"-9223372036854775809", KindDouble},
		{"1.0", KindDouble},
		{"1e10", KindDouble},
	}
	for _, c := range cases {
		v := mustParse(t, c.text, ParseOptions{})
		assert.Equal(t, c.kind, v.Kind(), "classifying %q", c.text)
	}
}

func TestParser_NestedContainers(t *testing.T) {
	v := mustParse(t, `{"a":[1,2,{"b":true}],"c":null}`, ParseOptions{})
	obj, err := v.AsObject()
	require.NoError(t, err)
	assert.Equal(t, 2, obj.Size())

	arr, err := obj.MustAt("a").AsArray()
	require.NoError(t, err)
	assert.Equal(t, 3, arr.Size())

	inner, err := arr.MustAt(2).AsObject()
	require.NoError(t, err)
	bv := inner.MustAt("b")
	b, _ := bv.AsBool()
	assert.True(t, b)
}

func TestParser_StringEscapesAndSurrogatePair(t *testing.T) {
	v := mustParse(t, "\"a\\nb\\tc\\u0041\\ud83d\\ude00\"", ParseOptions{})
	s, err := v.AsString()
	require.NoError(t, err)
	assert.Equal(t, "a\nb\tcA\U0001F600", s)
}

func TestParser_RejectsUnpairedSurrogate(t *testing.T) {
	_, err := ParseString(`"\ud800"`, defaultHandle(), ParseOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadSurrogate)
}

func TestParser_RejectsBareControlCharInString(t *testing.T) {
	_, err := ParseString("\"a\tb\"", defaultHandle(), ParseOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIllegalControl)
}

func TestParser_RejectsInvalidUTF8ByDefault(t *testing.T) {
	_, err := ParseString("\"a\xffb\"", defaultHandle(), ParseOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadUTF8)
}

func TestParser_AllowInvalidUTF8Option(t *testing.T) {
	_, err := ParseString("\"a\xffb\"", defaultHandle(), ParseOptions{AllowInvalidUTF8: true})
	require.NoError(t, err)
}

func TestParser_CommentsRequireOption(t *testing.T) {
	_, err := ParseString("// hi\n1", defaultHandle(), ParseOptions{})
	require.Error(t, err)

	v := mustParse(t, "// hi\n1 /* block */", ParseOptions{AllowComments: true})
	n, _ := v.AsInt64()
	assert.Equal(t, int64(1), n)
}

func TestParser_TrailingCommas(t *testing.T) {
	_, err := ParseString(`[1,2,]`, defaultHandle(), ParseOptions{})
	require.Error(t, err)

	v := mustParse(t, `[1,2,]`, ParseOptions{AllowTrailingCommas: true})
	arr, _ := v.AsArray()
	assert.Equal(t, 2, arr.Size())
}

func TestParser_DuplicateKeyPolicies(t *testing.T) {
	v := mustParse(t, `{"a":1,"a":2}`, ParseOptions{})
	obj, _ := v.AsObject()
	n, _ := obj.MustAt("a").AsInt64()
	assert.Equal(t, int64(2), n, "tolerant mode: last value wins")

	_, err := ParseString(`{"a":1,"a":2}`, defaultHandle(), ParseOptions{DuplicateKeys: DuplicateKeysReject})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestParser_MaxDepth(t *testing.T) {
	deep := ""
	for i := 0; i < 5; i++ {
		deep += "["
	}
	_, err := ParseString(deep+"1"+"]]]]]", defaultHandle(), ParseOptions{MaxDepth: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooDeep)
}

func TestParser_TrailingGarbage(t *testing.T) {
	_, err := ParseString(`1 2`, defaultHandle(), ParseOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTrailingGarbage)
}

// TestParser_ChunkingIrrelevance is the quantified "chunking irrelevance"
// property: splitting identical valid input at every possible byte
// boundary across two Write calls must produce the same value as parsing
// it whole. Error offsets under chunking are not exercised here.
func TestParser_ChunkingIrrelevance(t *testing.T) {
	doc := `{"name":"aéb","list":[1,-2,3.5,true,false,null],"nested":{"x":1}}`
	whole := mustParse(t, doc, ParseOptions{})

	for split := 0; split <= len(doc); split++ {
		b := NewBuilder(defaultHandle(), ParseOptions{})
		p := NewParser(b, defaultHandle(), ParseOptions{})
		_, err := p.Write([]byte(doc[:split]))
		require.NoError(t, err, "split at %d", split)
		_, err = p.Write([]byte(doc[split:]))
		require.NoError(t, err, "split at %d", split)
		require.NoError(t, p.Finish())
		v, err := b.Value()
		require.NoError(t, err)
		assert.True(t, whole.Equal(&v), "split at %d produced a different value", split)
	}
}

func TestParser_ResetIsIdempotent(t *testing.T) {
	b := NewBuilder(defaultHandle(), ParseOptions{})
	p := NewParser(b, defaultHandle(), ParseOptions{})
	_, err := p.Write([]byte(`{"a":1}`))
	require.NoError(t, err)
	require.NoError(t, p.Finish())

	p.Reset()
	b.Reset()
	_, err = p.Write([]byte(`[1,2,3]`))
	require.NoError(t, err)
	require.NoError(t, p.Finish())
	v, err := b.Value()
	require.NoError(t, err)
	arr, err := v.AsArray()
	require.NoError(t, err)
	assert.Equal(t, 3, arr.Size())
}

func TestParser_HandlerStoppingParsing(t *testing.T) {
	stop := &stoppingHandler{}
	p := NewParser(stop, defaultHandle(), ParseOptions{})
	_, err := p.Write([]byte(`[1,2,3]`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStopped)
}

// stoppingHandler accepts OnDocumentBegin/OnArrayBegin but refuses the
// first scalar, exercising the Handler-halts-parsing contract (spec
// §4.3/§7 Control class) independent of the Builder.
type stoppingHandler struct{}

func (stoppingHandler) OnDocumentBegin() bool        { return true }
func (stoppingHandler) OnDocumentEnd() bool          { return true }
func (stoppingHandler) OnObjectBegin(int) bool       { return true }
func (stoppingHandler) OnObjectEnd(int) bool         { return true }
func (stoppingHandler) OnArrayBegin(int) bool        { return true }
func (stoppingHandler) OnArrayEnd(int) bool          { return true }
func (stoppingHandler) OnKeyPart([]byte) bool        { return true }
func (stoppingHandler) OnKey([]byte) bool            { return true }
func (stoppingHandler) OnStringPart([]byte) bool     { return true }
func (stoppingHandler) OnString([]byte) bool         { return true }
func (stoppingHandler) OnInt64(int64) bool           { return false }
func (stoppingHandler) OnUint64(uint64) bool         { return false }
func (stoppingHandler) OnDouble(float64) bool        { return false }
func (stoppingHandler) OnBool(bool) bool             { return false }
func (stoppingHandler) OnNull() bool                 { return false }
func (stoppingHandler) OnCommentPart([]byte) bool    { return true }
func (stoppingHandler) OnComment([]byte) bool        { return true }
