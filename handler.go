package arbor

// Handler is the SAX-style event sink the Parser drives (spec §4.3). Every
// method returns a bool; returning false halts parsing immediately with
// ErrStopped (spec's "Control" error class), matching the C++ original's
// "a handler returning false halts parsing" cancellation contract.
//
// OnKeyPart/OnStringPart/OnCommentPart each deliver one chunk of a
// key/string/comment's content; the corresponding non-Part method
// (OnKey/OnString/OnComment) delivers the final chunk and signals
// completion. A short value that never needed chunking may see its
// content delivered entirely through the final call, with the Part
// variant never invoked — "_part... may be invoked any number of times
// before the final... call" includes zero times.
type Handler interface {
	OnDocumentBegin() bool
	OnDocumentEnd() bool

	OnObjectBegin(sizeHint int) bool
	OnObjectEnd(size int) bool
	OnArrayBegin(sizeHint int) bool
	OnArrayEnd(size int) bool

	OnKeyPart(b []byte) bool
	OnKey(b []byte) bool
	OnStringPart(b []byte) bool
	OnString(b []byte) bool

	OnInt64(v int64) bool
	OnUint64(v uint64) bool
	OnDouble(v float64) bool
	OnBool(v bool) bool
	OnNull() bool

	OnCommentPart(b []byte) bool
	OnComment(b []byte) bool
}
