package arbor

import "github.com/arbor-json/arbor/memres"

// builderFrame is one entry of the Builder's container stack: a
// not-yet-complete array or object, plus (for objects) the key most
// recently delivered by OnKey, awaiting its value.
type builderFrame struct {
	container Value
	pendingKey string
}

// Builder implements Handler, translating the incremental Parser's SAX
// events into a Value tree (spec §4.4). Two grow-only buffers back it:
// scratch, a byte arena reused across every key/string/comment (reset,
// never freed, between tokens), and stack, a value-frame arena for
// in-progress containers — both grow monotonically during one parse and
// are cheap to reset for the next, avoiding the recursion a tree-shaped
// walk would otherwise need.
type Builder struct {
	handle memres.Handle
	opts   ParseOptions

	stack   []builderFrame
	scratch []byte

	root    Value
	hasRoot bool
	err     error
}

// NewBuilder constructs a Builder that allocates document memory from
// handle's resource.
func NewBuilder(handle memres.Handle, opts ParseOptions) *Builder {
	return &Builder{handle: handle, opts: opts}
}

// Reset discards any in-progress document so the Builder can be reused.
func (b *Builder) Reset() {
	b.stack = b.stack[:0]
	b.scratch = b.scratch[:0]
	b.root = Value{}
	b.hasRoot = false
	b.err = nil
}

// Value returns the completed root value. It is an error to call before
// the parser driving this Builder has finished successfully.
func (b *Builder) Value() (Value, error) {
	if !b.hasRoot {
		return Value{}, ErrUnexpectedEOF
	}
	return b.root, nil
}

// Err returns the specific error that caused the most recent Handler
// method to return false, if any. The Parser itself only knows "the
// handler stopped me" (ErrStopped); callers that want the precise reason
// (e.g. ErrDuplicateKey) read it from here.
func (b *Builder) Err() error { return b.err }

func (b *Builder) OnDocumentBegin() bool { return true }
func (b *Builder) OnDocumentEnd() bool   { return true }

func (b *Builder) OnObjectBegin(sizeHint int) bool {
	b.stack = append(b.stack, builderFrame{container: NewObject(b.handle)})
	return true
}

func (b *Builder) OnObjectEnd(size int) bool {
	return b.addValue(b.popFrame())
}

func (b *Builder) OnArrayBegin(sizeHint int) bool {
	b.stack = append(b.stack, builderFrame{container: NewArray(b.handle)})
	return true
}

func (b *Builder) OnArrayEnd(size int) bool {
	return b.addValue(b.popFrame())
}

func (b *Builder) popFrame() Value {
	n := len(b.stack)
	v := b.stack[n-1].container
	b.stack = b.stack[:n-1]
	return v
}

func (b *Builder) OnKeyPart(chunk []byte) bool {
	b.scratch = append(b.scratch, chunk...)
	return true
}

func (b *Builder) OnKey(chunk []byte) bool {
	b.scratch = append(b.scratch, chunk...)
	key := string(b.scratch)
	b.scratch = b.scratch[:0]
	b.stack[len(b.stack)-1].pendingKey = key
	return true
}

func (b *Builder) OnStringPart(chunk []byte) bool {
	b.scratch = append(b.scratch, chunk...)
	return true
}

func (b *Builder) OnString(chunk []byte) bool {
	b.scratch = append(b.scratch, chunk...)
	s := string(b.scratch)
	b.scratch = b.scratch[:0]
	return b.addValue(NewString(b.handle, s))
}

func (b *Builder) OnInt64(v int64) bool   { return b.addValue(Int64(b.handle, v)) }
func (b *Builder) OnUint64(v uint64) bool { return b.addValue(Uint64(b.handle, v)) }
func (b *Builder) OnDouble(v float64) bool { return b.addValue(Double(b.handle, v)) }
func (b *Builder) OnBool(v bool) bool     { return b.addValue(Bool(b.handle, v)) }
func (b *Builder) OnNull() bool           { return b.addValue(Null(b.handle)) }

// OnCommentPart/OnComment: comments are not part of the document model
// (spec §4.2 Non-goals), so the Builder simply discards them while still
// returning true, keeping the parser running.
func (b *Builder) OnCommentPart(chunk []byte) bool { return true }
func (b *Builder) OnComment(chunk []byte) bool     { return true }

// addValue attaches v to whatever is open: the enclosing array, the
// enclosing object under its pending key, or — if the stack is empty —
// the document root.
func (b *Builder) addValue(v Value) bool {
	n := len(b.stack)
	if n == 0 {
		b.root = v
		b.hasRoot = true
		return true
	}
	top := &b.stack[n-1]
	switch top.container.Kind() {
	case KindArray:
		arr, _ := top.container.AsArray()
		arr.PushBack(v)
		return true
	case KindObject:
		obj, _ := top.container.AsObject()
		key := top.pendingKey
		if b.opts.DuplicateKeys == DuplicateKeysReject && obj.Contains(key) {
			b.err = ErrDuplicateKey
			return false
		}
		obj.Set(key, v)
		return true
	}
	return true
}
