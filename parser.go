package arbor

import "github.com/arbor-json/arbor/memres"

// topState names the top-level incremental parser's states (spec §4.3).
// Container nesting lives on the mode stack, not in topState, so the
// parser's resumption state is always O(depth) rather than O(input size):
// exactly the "suspend mid-token, resume on the next write() with no
// re-scanning" property spec §4.3 and testable property #2 require.
type topState int8

const (
	stValueStart topState = iota
	stArrayStart
	stArrayAfterComma
	stArrayCommaOrEnd
	stObjectStart
	stObjectAfterComma
	stObjectColon
	stObjectCommaOrEnd
	stStringBody
	stStringEscape
	stStringUnicode
	stStringSurrogateBackslash
	stStringSurrogateU
	stNumber
	stLiteral
	stCommentStart
	stCommentLine
	stCommentBlock
	stCommentBlockStar
	stAfterTopValue
	stDone
)

// frame is one entry of the container stack: which kind of container is
// open, and how many direct children it has accumulated so far (used as
// the size_hint passed to OnObjectEnd/OnArrayEnd).
type frame struct {
	isObject bool
	count    int
}

const stringPartFlushThreshold = 4096

// Parser is the incremental, byte-resumable JSON parser (spec §4.3). Feed
// it input in arbitrarily sized chunks via Write; call Finish when there
// is no more input. A Parser holds no reference to the document it is
// building — it drives a Handler, decoupling tokenization from value
// construction exactly as spec §4.1/§4.3 require. This replaces the
// teacher's bufio.Reader-driven, rune-at-a-time pushdown automaton with a
// byte-at-a-time one that can suspend mid-token across Write calls; the
// mode stack, the "terminate literal then reprocess this byte" action for
// numbers, and the overall table-driven spirit are carried over from it.
type Parser struct {
	opts    ParseOptions
	handler Handler
	handle  memres.Handle

	state topState
	modes []frame

	offset int64
	line   int
	col    int

	started bool
	err     *ParseError

	// string/key accumulation
	strBuf               []byte
	strIsKey             bool
	strUTF8State         byte
	hexVal               uint16
	hexCount             int
	pendingHighSurrogate uint16

	// number accumulation
	num numberDecoder

	// literal accumulation (true/false/null)
	litWant string
	litPos  int
	litBool bool // value to report when litWant is "true"/"false"

	// comment accumulation
	commentBuf    []byte
	commentResume topState
}

// NewParser constructs a Parser that reports events to h, allocating any
// document memory it produces via handle's resource.
func NewParser(h Handler, handle memres.Handle, opts ParseOptions) *Parser {
	p := &Parser{handler: h, handle: handle, opts: opts}
	p.Reset()
	return p
}

// Reset returns the parser to its initial state so it can be reused for a
// new document (spec §4.3's reset() operation).
func (p *Parser) Reset() {
	p.state = stValueStart
	p.modes = p.modes[:0]
	p.offset = 0
	p.line = 1
	p.col = 1
	p.started = false
	p.err = nil
	p.strBuf = p.strBuf[:0]
	p.commentBuf = p.commentBuf[:0]
	p.num.reset()
}

// Write feeds len(b) bytes of input and returns the number of bytes
// consumed. It always consumes the entire buffer unless a ParseError
// occurs, in which case it returns the count consumed before the error
// and the error itself; the Parser is then inert until Reset.
func (p *Parser) Write(b []byte) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	if !p.started {
		p.started = true
		if !p.handler.OnDocumentBegin() {
			return 0, p.fail(ErrStopped)
		}
	}
	for i, c := range b {
		if err := p.dispatch(c); err != nil {
			return i, p.fail(err)
		}
		p.advancePos(c)
	}
	return len(b), nil
}

// Finish signals end of input. It is an error to call Finish while the
// parser is mid-token: an incomplete string, number, literal, container,
// or unterminated block comment.
func (p *Parser) Finish() error {
	if p.err != nil {
		return p.err
	}
	if !p.started {
		return p.fail(ErrUnexpectedEOF)
	}
	if p.state == stNumber {
		if err := p.finalizeNumber(); err != nil {
			return p.fail(err)
		}
	}
	if p.state == stCommentLine {
		p.flushComment()
		p.state = p.commentResume
	}
	switch p.state {
	case stAfterTopValue, stDone:
		if !p.handler.OnDocumentEnd() {
			return p.fail(ErrStopped)
		}
		p.state = stDone
		return nil
	default:
		return p.fail(ErrUnexpectedEOF)
	}
}

func (p *Parser) fail(code error) *ParseError {
	e := newParseError(code, p.offset, p.line, p.col)
	p.err = e
	return e
}

func (p *Parser) advancePos(c byte) {
	p.offset++
	if c == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

// dispatch routes one byte to the state-specific handler. It is also
// called re-entrantly, without re-advancing position, when a number or
// comment's end is discovered only by reading the byte that follows it
// (spec §4.3's non-self-terminating numeric literal) — the same
// "terminate the literal, then reprocess this byte" action the teacher's
// cc/ep transitions use when EOF or a closing bracket interrupts a bare
// literal.
func (p *Parser) dispatch(c byte) error {
	switch p.state {
	case stStringBody, stStringEscape, stStringUnicode, stStringSurrogateBackslash, stStringSurrogateU:
		return p.stepString(c)
	case stNumber:
		return p.stepNumber(c)
	case stLiteral:
		return p.stepLiteral(c)
	case stCommentStart:
		return p.stepCommentStart(c)
	case stCommentLine, stCommentBlock, stCommentBlockStar:
		return p.stepComment(c)
	case stAfterTopValue:
		return p.stepAfterTopValue(c)
	case stDone:
		return ErrTrailingGarbage
	default:
		return p.stepStructural(c)
	}
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func (p *Parser) stepStructural(c byte) error {
	if isWhitespace(c) {
		return nil
	}
	if p.opts.AllowComments && c == '/' {
		p.commentResume = p.state
		p.state = stCommentStart
		return nil
	}
	switch p.state {
	case stValueStart:
		return p.beginValue(c)
	case stArrayStart:
		if c == ']' {
			return p.endArray()
		}
		return p.beginValue(c)
	case stArrayAfterComma:
		if c == ']' {
			if !p.opts.AllowTrailingCommas {
				return ErrExpectedValue
			}
			return p.endArray()
		}
		return p.beginValue(c)
	case stArrayCommaOrEnd:
		switch c {
		case ',':
			p.state = stArrayAfterComma
			return nil
		case ']':
			return p.endArray()
		}
		return ErrExpectedComma
	case stObjectStart:
		if c == '}' {
			return p.endObject()
		}
		if c != '"' {
			return ErrExpectedQuote
		}
		return p.beginString(true)
	case stObjectAfterComma:
		if c == '}' {
			if !p.opts.AllowTrailingCommas {
				return ErrExpectedQuote
			}
			return p.endObject()
		}
		if c != '"' {
			return ErrExpectedQuote
		}
		return p.beginString(true)
	case stObjectColon:
		if c != ':' {
			return ErrExpectedColon
		}
		p.state = stValueStart
		return nil
	case stObjectCommaOrEnd:
		switch c {
		case ',':
			p.state = stObjectAfterComma
			return nil
		case '}':
			return p.endObject()
		}
		return ErrExpectedComma
	}
	return ErrSyntax
}

func (p *Parser) beginValue(c byte) error {
	switch {
	case c == '"':
		return p.beginString(false)
	case c == '{':
		return p.beginContainer(true)
	case c == '[':
		return p.beginContainer(false)
	case c == '-' || isDigit(c):
		p.num.reset()
		if err := p.num.feed(c); err != nil {
			return err
		}
		p.state = stNumber
		return nil
	case c == 't':
		return p.beginLiteral("true", true)
	case c == 'f':
		return p.beginLiteral("false", false)
	case c == 'n':
		return p.beginLiteral("null", false)
	}
	return ErrExpectedValue
}

func (p *Parser) beginContainer(isObject bool) error {
	if len(p.modes) >= p.opts.maxDepth() {
		return ErrTooDeep
	}
	p.modes = append(p.modes, frame{isObject: isObject})
	if isObject {
		if !p.handler.OnObjectBegin(-1) {
			return ErrStopped
		}
		p.state = stObjectStart
	} else {
		if !p.handler.OnArrayBegin(-1) {
			return ErrStopped
		}
		p.state = stArrayStart
	}
	return nil
}

func (p *Parser) endObject() error {
	n := len(p.modes)
	size := p.modes[n-1].count
	p.modes = p.modes[:n-1]
	if !p.handler.OnObjectEnd(size) {
		return ErrStopped
	}
	p.completeValue()
	return nil
}

func (p *Parser) endArray() error {
	n := len(p.modes)
	size := p.modes[n-1].count
	p.modes = p.modes[:n-1]
	if !p.handler.OnArrayEnd(size) {
		return ErrStopped
	}
	p.completeValue()
	return nil
}

// completeValue transitions out of "a value just finished" using the
// (possibly now-empty, after a container close) mode stack to decide
// what follows: a comma-or-end state inside a container, or the
// post-document state at the top level.
func (p *Parser) completeValue() {
	n := len(p.modes)
	if n == 0 {
		p.state = stAfterTopValue
		return
	}
	p.modes[n-1].count++
	if p.modes[n-1].isObject {
		p.state = stObjectCommaOrEnd
	} else {
		p.state = stArrayCommaOrEnd
	}
}

func (p *Parser) stepAfterTopValue(c byte) error {
	if isWhitespace(c) {
		return nil
	}
	if p.opts.AllowComments && c == '/' {
		p.commentResume = p.state
		p.state = stCommentStart
		return nil
	}
	return ErrTrailingGarbage
}

// --- literals (true/false/null) ---

func (p *Parser) beginLiteral(want string, boolVal bool) error {
	p.litWant = want
	p.litPos = 1
	p.litBool = boolVal
	p.state = stLiteral
	return nil
}

func (p *Parser) stepLiteral(c byte) error {
	if c != p.litWant[p.litPos] {
		return ErrExpectedValue
	}
	p.litPos++
	if p.litPos < len(p.litWant) {
		return nil
	}
	var ok bool
	if p.litWant == "null" {
		ok = p.handler.OnNull()
	} else {
		ok = p.handler.OnBool(p.litBool)
	}
	if !ok {
		return ErrStopped
	}
	p.completeValue()
	return nil
}

// --- numbers ---

func isNumberContinuation(c byte) bool {
	switch c {
	case '.', 'e', 'E', '+', '-':
		return true
	}
	return isDigit(c)
}

func (p *Parser) stepNumber(c byte) error {
	if isNumberContinuation(c) {
		return p.num.feed(c)
	}
	if !p.num.terminal() {
		return ErrSyntax
	}
	if err := p.finalizeNumber(); err != nil {
		return err
	}
	return p.dispatch(c)
}

func (p *Parser) finalizeNumber() error {
	if !p.num.terminal() {
		return ErrUnexpectedEOF
	}
	v, err := p.num.classify(p.handle)
	if err != nil {
		return err
	}
	if !p.emitNumber(v) {
		return ErrStopped
	}
	p.completeValue()
	return nil
}

func (p *Parser) emitNumber(v Value) bool {
	switch v.Kind() {
	case KindInt64:
		n, _ := v.AsInt64()
		return p.handler.OnInt64(n)
	case KindUint64:
		n, _ := v.AsUint64()
		return p.handler.OnUint64(n)
	default:
		n, _ := v.AsNumber()
		return p.handler.OnDouble(n)
	}
}

// --- strings ---

func (p *Parser) beginString(isKey bool) error {
	p.strBuf = p.strBuf[:0]
	p.strIsKey = isKey
	p.strUTF8State = utf8Accept
	p.pendingHighSurrogate = 0
	p.state = stStringBody
	return nil
}

func (p *Parser) appendStringByte(c byte) {
	p.strBuf = append(p.strBuf, c)
	if len(p.strBuf) >= stringPartFlushThreshold {
		p.flushStringPart()
	}
}

func (p *Parser) appendRune(r rune) {
	var buf [4]byte
	n := encodeRuneUTF8(buf[:], r)
	p.strBuf = append(p.strBuf, buf[:n]...)
	p.strUTF8State = utf8Accept
	if len(p.strBuf) >= stringPartFlushThreshold {
		p.flushStringPart()
	}
}

func (p *Parser) flushStringPart() bool {
	if len(p.strBuf) == 0 {
		return true
	}
	var ok bool
	if p.strIsKey {
		ok = p.handler.OnKeyPart(p.strBuf)
	} else {
		ok = p.handler.OnStringPart(p.strBuf)
	}
	p.strBuf = p.strBuf[:0]
	return ok
}

func (p *Parser) stepString(c byte) error {
	switch p.state {
	case stStringBody:
		switch {
		case c == '"':
			if p.strUTF8State != utf8Accept {
				return ErrBadUTF8
			}
			var ok bool
			if p.strIsKey {
				ok = p.handler.OnKey(p.strBuf)
			} else {
				ok = p.handler.OnString(p.strBuf)
			}
			p.strBuf = p.strBuf[:0]
			if !ok {
				return ErrStopped
			}
			if p.strIsKey {
				p.state = stObjectColon
			} else {
				p.completeValue()
			}
			return nil
		case c == '\\':
			if p.strUTF8State != utf8Accept {
				return ErrBadUTF8
			}
			p.state = stStringEscape
			return nil
		case c < 0x20:
			return ErrIllegalControl
		default:
			if !p.opts.AllowInvalidUTF8 {
				ns := utf8Step(p.strUTF8State, c)
				if ns == utf8Reject {
					return ErrBadUTF8
				}
				p.strUTF8State = ns
			}
			p.appendStringByte(c)
			return nil
		}
	case stStringEscape:
		switch c {
		case '"', '\\', '/':
			p.appendStringByte(c)
			p.strUTF8State = utf8Accept
			p.state = stStringBody
		case 'b':
			p.appendStringByte(0x08)
			p.strUTF8State = utf8Accept
			p.state = stStringBody
		case 'f':
			p.appendStringByte(0x0C)
			p.strUTF8State = utf8Accept
			p.state = stStringBody
		case 'n':
			p.appendStringByte('\n')
			p.strUTF8State = utf8Accept
			p.state = stStringBody
		case 'r':
			p.appendStringByte('\r')
			p.strUTF8State = utf8Accept
			p.state = stStringBody
		case 't':
			p.appendStringByte('\t')
			p.strUTF8State = utf8Accept
			p.state = stStringBody
		case 'u':
			p.hexCount = 0
			p.hexVal = 0
			p.state = stStringUnicode
		default:
			return ErrBadEscape
		}
		return nil
	case stStringUnicode:
		nibble, err := hexNibble(c)
		if err != nil {
			return err
		}
		p.hexVal = p.hexVal<<4 | uint16(nibble)
		p.hexCount++
		if p.hexCount < 4 {
			return nil
		}
		return p.completeEscapeUnit()
	case stStringSurrogateBackslash:
		if c != '\\' {
			return ErrBadSurrogate
		}
		p.state = stStringSurrogateU
		return nil
	case stStringSurrogateU:
		if c != 'u' {
			return ErrBadSurrogate
		}
		p.hexCount = 0
		p.hexVal = 0
		p.state = stStringUnicode
		return nil
	}
	return ErrSyntax
}

func (p *Parser) completeEscapeUnit() error {
	cu := p.hexVal
	if p.pendingHighSurrogate != 0 {
		if cu < 0xDC00 || cu > 0xDFFF {
			return ErrBadSurrogate
		}
		r := combineSurrogates(p.pendingHighSurrogate, cu)
		p.pendingHighSurrogate = 0
		p.appendRune(r)
		p.state = stStringBody
		return nil
	}
	switch {
	case cu >= 0xD800 && cu <= 0xDBFF:
		p.pendingHighSurrogate = cu
		p.state = stStringSurrogateBackslash
	case cu >= 0xDC00 && cu <= 0xDFFF:
		return ErrBadSurrogate
	default:
		p.appendRune(rune(cu))
		p.state = stStringBody
	}
	return nil
}

func hexNibble(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	}
	return 0, ErrBadHexDigit
}

func combineSurrogates(hi, lo uint16) rune {
	return (rune(hi)-0xD800)<<10 + (rune(lo) - 0xDC00) + 0x10000
}

// encodeRuneUTF8 writes r's UTF-8 encoding into dst and returns the byte
// count. r is always a codepoint this package itself just decoded from a
// \uXXXX escape (or a surrogate pair of them), never raw untrusted input,
// so this is ordinary encoding rather than the validation the DFA in
// utf8.go performs on bytes arriving from outside.
func encodeRuneUTF8(dst []byte, r rune) int {
	switch {
	case r < 0x80:
		dst[0] = byte(r)
		return 1
	case r < 0x800:
		dst[0] = 0xC0 | byte(r>>6)
		dst[1] = 0x80 | byte(r&0x3F)
		return 2
	case r < 0x10000:
		dst[0] = 0xE0 | byte(r>>12)
		dst[1] = 0x80 | byte((r>>6)&0x3F)
		dst[2] = 0x80 | byte(r&0x3F)
		return 3
	default:
		dst[0] = 0xF0 | byte(r>>18)
		dst[1] = 0x80 | byte((r>>12)&0x3F)
		dst[2] = 0x80 | byte((r>>6)&0x3F)
		dst[3] = 0x80 | byte(r&0x3F)
		return 4
	}
}

// --- comments ---

func (p *Parser) stepCommentStart(c byte) error {
	switch c {
	case '/':
		p.commentBuf = p.commentBuf[:0]
		p.state = stCommentLine
	case '*':
		p.commentBuf = p.commentBuf[:0]
		p.state = stCommentBlock
	default:
		return ErrSyntax
	}
	return nil
}

func (p *Parser) flushComment() bool {
	ok := p.handler.OnComment(p.commentBuf)
	p.commentBuf = p.commentBuf[:0]
	return ok
}

func (p *Parser) stepComment(c byte) error {
	switch p.state {
	case stCommentLine:
		if c == '\n' {
			if !p.flushComment() {
				return ErrStopped
			}
			p.state = p.commentResume
			return p.dispatch(c)
		}
		p.commentBuf = append(p.commentBuf, c)
		if len(p.commentBuf) >= stringPartFlushThreshold {
			if !p.handler.OnCommentPart(p.commentBuf) {
				return ErrStopped
			}
			p.commentBuf = p.commentBuf[:0]
		}
		return nil
	case stCommentBlock:
		if c == '*' {
			p.state = stCommentBlockStar
			return nil
		}
		p.commentBuf = append(p.commentBuf, c)
		return nil
	case stCommentBlockStar:
		switch c {
		case '/':
			if !p.flushComment() {
				return ErrStopped
			}
			p.state = p.commentResume
			return nil
		case '*':
			p.commentBuf = append(p.commentBuf, '*')
			return nil
		default:
			p.commentBuf = append(p.commentBuf, '*', c)
			p.state = stCommentBlock
			return nil
		}
	}
	return ErrSyntax
}
