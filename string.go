package arbor

import (
	"github.com/arbor-json/arbor/memres"
)

// inlineStringCap is the number of bytes a String can hold without a heap
// allocation. Spec §3 requires >=14 bytes on 64-bit layouts; all 15 inline
// bytes hold payload, and no NUL terminator is stored after it.
const inlineStringCap = 15

// stringGrowthThreshold is the capacity below which heap growth doubles,
// and above which it grows by 1.5x (spec §3).
const stringGrowthThreshold = 4096

// MaxStringLength is the hard ceiling on string length (spec §6).
const MaxStringLength = 1<<31 - 2

// String is a mutable, allocator-aware byte sequence with small-string
// optimization: payloads up to inlineStringCap bytes live inside the
// String value itself; larger payloads live in a heap block obtained from
// the owning container's memres.Handle.
type String struct {
	h      memres.Handle
	inline [inlineStringCap]byte
	heap   []byte // non-nil while the payload lives on the heap
	n      int    // length in bytes, always <= cap()
}

func newString(h memres.Handle, s string) *String {
	str := &String{h: h}
	str.appendBytes([]byte(s))
	return str
}

// Len reports the string's length in bytes.
func (s *String) Len() int { return s.n }

// Cap reports the string's current capacity in bytes.
func (s *String) Cap() int {
	if s.heap != nil {
		return len(s.heap)
	}
	return inlineStringCap
}

// Bytes returns the string's contents. The returned slice aliases the
// String's storage and must not be retained past the next mutation.
func (s *String) Bytes() []byte {
	if s.heap != nil {
		return s.heap[:s.n]
	}
	return s.inline[:s.n]
}

// String returns a copy of the contents as a Go string.
func (s *String) String() string { return string(s.Bytes()) }

// Reserve ensures Cap() >= n, growing the backing storage (and spilling to
// the heap) if necessary. It never shrinks.
func (s *String) Reserve(n int) {
	if n <= s.Cap() {
		return
	}
	s.growTo(n)
}

func (s *String) growTo(want int) {
	if want > MaxStringLength {
		want = MaxStringLength
	}
	newCap := s.Cap()
	if newCap < inlineStringCap {
		newCap = inlineStringCap
	}
	for newCap < want {
		if newCap < stringGrowthThreshold {
			newCap *= 2
		} else {
			newCap += newCap / 2
		}
	}
	block, err := s.h.Resource().Allocate(newCap, 1)
	if err != nil {
		// Fall back to the smallest allocation that satisfies the
		// request. If that fails too, the resource's error is raised as
		// a panic; neither the parser nor the builder recovers it.
		block, err = s.h.Resource().Allocate(want, 1)
		if err != nil {
			panic(err)
		}
		newCap = want
	}
	copy(block, s.Bytes())
	if s.heap != nil && !s.h.IsDeallocateTrivial() {
		s.h.Resource().Deallocate(s.heap, len(s.heap), 1)
	}
	s.heap = block
}

// appendBytes is the shared implementation behind Append/PushByte/NewString.
func (s *String) appendBytes(b []byte) {
	need := s.n + len(b)
	if need > s.Cap() {
		s.growTo(need)
	}
	dst := s.inline[:]
	if s.heap != nil {
		dst = s.heap
	}
	copy(dst[s.n:need], b)
	s.n = need
}

// Append appends b to the string's contents.
func (s *String) Append(b []byte) { s.appendBytes(b) }

// AppendString appends str to the string's contents.
func (s *String) AppendString(str string) { s.appendBytes([]byte(str)) }

// PushByte appends a single byte.
func (s *String) PushByte(b byte) { s.appendBytes([]byte{b}) }

// Resize sets the length to n, zero-filling any newly exposed bytes when
// growing, or truncating when shrinking.
func (s *String) Resize(n int) {
	if n <= s.n {
		s.n = n
		return
	}
	if n > s.Cap() {
		s.growTo(n)
	}
	dst := s.inline[:]
	if s.heap != nil {
		dst = s.heap
	}
	for i := s.n; i < n; i++ {
		dst[i] = 0
	}
	s.n = n
}

// Substr returns a new, independently-owned String over bytes [i:j).
func (s *String) Substr(i, j int) *String {
	return newString(s.h, string(s.Bytes()[i:j]))
}

// ShrinkToFit reallocates storage to exactly fit the current contents,
// spilling back to inline storage if the content now fits there. This is
// explicit, per spec §4.2.
func (s *String) ShrinkToFit() {
	if s.heap == nil {
		return
	}
	if s.n <= inlineStringCap {
		copy(s.inline[:s.n], s.heap[:s.n])
		if !s.h.IsDeallocateTrivial() {
			s.h.Resource().Deallocate(s.heap, len(s.heap), 1)
		}
		s.heap = nil
		return
	}
	if s.n == len(s.heap) {
		return
	}
	block, err := s.h.Resource().Allocate(s.n, 1)
	if err != nil {
		return // best-effort; keep the larger buffer
	}
	copy(block, s.heap[:s.n])
	if !s.h.IsDeallocateTrivial() {
		s.h.Resource().Deallocate(s.heap, len(s.heap), 1)
	}
	s.heap = block
}

// Equal reports byte-for-byte equality.
func (s *String) Equal(other *String) bool {
	return string(s.Bytes()) == string(other.Bytes())
}

// Compare returns -1, 0, or 1 using lexicographic byte ordering.
func (s *String) Compare(other *String) int {
	a, b := s.Bytes(), other.Bytes()
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}
