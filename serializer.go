package arbor

import (
	"math"
	"strconv"
)

type serFrameKind int8

const (
	serFrameArray serFrameKind = iota
	serFrameObject
)

// serFrame is one entry of the Serializer's explicit traversal stack: a
// container currently being emitted, and the offset of its next
// not-yet-emitted child. Using an explicit stack rather than recursion
// means arbitrarily deep documents serialize with O(depth) Go stack use
// and can suspend between any two children (spec §4.5).
type serFrame struct {
	kind serFrameKind
	arr  *Array
	obj  *Object
	idx  int
}

// Serializer is the resumable Value -> bytes producer (spec §4.5). Reset
// it with the Value to serialize, then call Read repeatedly — exactly
// like io.Reader — until Done reports true.
//
// Traversal of nested arrays/objects is token-at-a-time and genuinely
// resumable at any container boundary. A single string or number token is
// formatted into the internal buffer in one step rather than split across
// Read calls mid-token; Read still honors short destination buffers for
// such a token by draining the buffer over as many calls as needed, so a
// caller never sees more than len(dest) bytes at a time regardless of
// token size. See DESIGN.md.
type Serializer struct {
	opts SerializeOptions

	stack   []serFrame
	pending []byte
	pendingPos int

	root        Value
	rootEmitted bool
	finished    bool
}

// NewSerializer constructs a Serializer with no value loaded; call Reset
// before the first Read.
func NewSerializer(opts SerializeOptions) *Serializer {
	return &Serializer{opts: opts}
}

// Reset loads v as the document to serialize, discarding any
// in-progress traversal.
func (s *Serializer) Reset(v Value) {
	s.stack = s.stack[:0]
	s.pending = s.pending[:0]
	s.pendingPos = 0
	s.root = v
	s.rootEmitted = false
	s.finished = false
}

// Done reports whether the entire document has been delivered through
// Read.
func (s *Serializer) Done() bool { return s.finished && s.pendingPos >= len(s.pending) }

// Read copies up to len(dest) bytes of serialized output into dest,
// advancing internal traversal state as needed, and returns the number
// of bytes written. It returns (0, nil) once Done.
func (s *Serializer) Read(dest []byte) (int, error) {
	n := 0
	for n < len(dest) {
		if s.pendingPos < len(s.pending) {
			c := copy(dest[n:], s.pending[s.pendingPos:])
			n += c
			s.pendingPos += c
			continue
		}
		if s.finished {
			break
		}
		s.pending = s.pending[:0]
		s.pendingPos = 0
		s.step()
	}
	return n, nil
}

// step performs one unit of traversal work, appending bytes to s.pending.
func (s *Serializer) step() {
	if len(s.stack) == 0 {
		if s.rootEmitted {
			s.finished = true
			return
		}
		s.rootEmitted = true
		s.emitValue(s.root)
		return
	}
	top := &s.stack[len(s.stack)-1]
	switch top.kind {
	case serFrameArray:
		if top.idx >= top.arr.Size() {
			s.pending = append(s.pending, ']')
			s.stack = s.stack[:len(s.stack)-1]
			return
		}
		if top.idx > 0 {
			s.pending = append(s.pending, ',')
		}
		v := top.arr.Index(top.idx)
		top.idx++
		s.emitValue(*v)
	case serFrameObject:
		if top.idx >= top.obj.Size() {
			s.pending = append(s.pending, '}')
			s.stack = s.stack[:len(s.stack)-1]
			return
		}
		if top.idx > 0 {
			s.pending = append(s.pending, ',')
		}
		p := top.obj.dense[top.idx]
		top.idx++
		s.pending = appendEscapedString(s.pending, p.key)
		s.pending = append(s.pending, ':')
		s.emitValue(p.val)
	}
}

func (s *Serializer) emitValue(v Value) {
	switch v.Kind() {
	case KindNull:
		s.pending = append(s.pending, 'n', 'u', 'l', 'l')
	case KindBool:
		b, _ := v.AsBool()
		if b {
			s.pending = append(s.pending, 't', 'r', 'u', 'e')
		} else {
			s.pending = append(s.pending, 'f', 'a', 'l', 's', 'e')
		}
	case KindInt64:
		n, _ := v.AsInt64()
		s.pending = strconv.AppendInt(s.pending, n, 10)
	case KindUint64:
		n, _ := v.AsUint64()
		s.pending = strconv.AppendUint(s.pending, n, 10)
	case KindDouble:
		f, _ := v.AsNumber()
		s.pending = s.appendDouble(s.pending, f)
	case KindString:
		str, _ := v.AsString()
		s.pending = appendEscapedString(s.pending, str)
	case KindArray:
		arr, _ := v.AsArray()
		s.pending = append(s.pending, '[')
		s.stack = append(s.stack, serFrame{kind: serFrameArray, arr: arr})
	case KindObject:
		obj, _ := v.AsObject()
		s.pending = append(s.pending, '{')
		s.stack = append(s.stack, serFrame{kind: serFrameObject, obj: obj})
	}
}

// appendDouble formats f per opts.NonFinite for NaN/Inf, delegating the
// finite case to strconv.AppendFloat's shortest round-trip mode (the same
// Ryū-class algorithm discussed in number.go).
func (s *Serializer) appendDouble(dst []byte, f float64) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		switch s.opts.NonFinite {
		case NonFiniteAsLiteral:
			return append(dst, nonFiniteWord(f)...)
		case NonFiniteAsQuotedString:
			dst = append(dst, '"')
			dst = append(dst, nonFiniteWord(f)...)
			return append(dst, '"')
		default:
			return append(dst, "null"...)
		}
	}
	return strconv.AppendFloat(dst, f, 'g', -1, 64)
}

func nonFiniteWord(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case f > 0:
		return "inf"
	default:
		return "-inf"
	}
}

const hexDigitsLower = "0123456789abcdef"

// appendEscapedString appends s as a JSON string literal, quotes
// included. The fast path (no bytes need escaping) copies the whole
// string in one move; the slow path only pays escaping cost for the
// bytes that actually need it.
func appendEscapedString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		dst = append(dst, s[start:i]...)
		switch c {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		case 0x08:
			dst = append(dst, '\\', 'b')
		case 0x0C:
			dst = append(dst, '\\', 'f')
		default:
			dst = append(dst, '\\', 'u', '0', '0', hexDigitsLower[c>>4], hexDigitsLower[c&0xF])
		}
		start = i + 1
	}
	dst = append(dst, s[start:]...)
	dst = append(dst, '"')
	return dst
}
