package memres

// Default wraps the system heap. Every block returned by Allocate must be
// returned via a matching Deallocate call (size and align must agree);
// Deallocate itself does no bookkeeping and does not check that contract,
// since Go's garbage collector reclaims the backing array once the last
// reference to it is dropped.
type Default struct{}

// NewDefault returns the default heap-backed resource. It has no state, so
// a single value may be shared freely; all Default values compare equal.
func NewDefault() *Default {
	return &Default{}
}

func (d *Default) Allocate(size, align int) ([]byte, error) {
	if err := checkAlign(align); err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, ErrOutOfMemory
	}
	return make([]byte, size), nil
}

func (d *Default) Deallocate(block []byte, size, align int) {
	// Released by the garbage collector; nothing to do beyond the
	// caller-visible contract that size/align must match the original
	// allocation, which callers are trusted to uphold.
}

func (d *Default) IsEqual(other Resource) bool {
	_, ok := other.(*Default)
	return ok
}
