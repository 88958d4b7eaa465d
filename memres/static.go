package memres

// Static serves allocations from a single caller-provided buffer; once
// exhausted it fails with ErrOutOfMemory. Deallocate is a no-op. Not safe
// for concurrent Allocate calls.
type Static struct {
	buf  []byte
	used int
}

// NewStatic returns a Static resource backed by buf. buf is not copied;
// the caller must keep it alive and unmodified for the lifetime of any
// Value allocated from this resource.
func NewStatic(buf []byte) *Static {
	return &Static{buf: buf}
}

func (s *Static) Allocate(size, align int) ([]byte, error) {
	if err := checkAlign(align); err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, ErrOutOfMemory
	}
	start := alignUp(s.used, align)
	if start+size > len(s.buf) {
		return nil, ErrOutOfMemory
	}
	s.used = start + size
	return s.buf[start : start+size : start+size], nil
}

func (s *Static) Deallocate(block []byte, size, align int) {
	// No-op: exhaustion is the only reclamation event for a fixed buffer.
}

func (s *Static) IsEqual(other Resource) bool {
	o, ok := other.(*Static)
	return ok && o == s
}

func (s *Static) deallocateIsTrivial() bool { return true }

// Remaining reports how many bytes are still available without regard to
// alignment padding. Useful for diagnostics and tests.
func (s *Static) Remaining() int {
	return len(s.buf) - s.used
}
