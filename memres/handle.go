package memres

import "sync/atomic"

// closer is implemented by resources that hold something worth releasing
// explicitly once the last Handle referencing them goes away (most
// resources in this package have nothing to close; it exists for
// resource types built on top of this package, e.g. one that wraps an
// mmap'd buffer).
type closer interface {
	Close() error
}

// Handle owns a shared reference to a Resource. Handles are plain values;
// Go has no copy constructor to hook, so callers that want reference-
// counted sharing must call Acquire explicitly when handing a Handle to
// another owner and Release when that owner is done with it. Handles for
// resources constructed with NewHandle (uncounted — the common case for
// process-lifetime statics and stack-scoped arenas) treat Acquire/Release
// as no-ops, exactly as spec §4.1 requires: no atomic traffic for
// non-counted resources.
type Handle struct {
	resource Resource
	ref      *int32 // nil for uncounted handles
}

// NewHandle returns an uncounted handle over r. Acquire/Release are no-ops;
// r is never closed by this package.
func NewHandle(r Resource) Handle {
	return Handle{resource: r}
}

// NewCountedHandle returns a handle over r with an atomic reference count
// starting at 1. The count is incremented by Acquire and decremented by
// Release; when it reaches zero and r implements Close() error, Close is
// called.
func NewCountedHandle(r Resource) Handle {
	n := int32(1)
	return Handle{resource: r, ref: &n}
}

// Resource returns the underlying allocator.
func (h Handle) Resource() Resource {
	return h.resource
}

// IsCounted reports whether this handle participates in reference
// counting.
func (h Handle) IsCounted() bool {
	return h.ref != nil
}

// IsDeallocateTrivial reports whether the underlying resource's Deallocate
// is a no-op, letting containers skip per-element destruction in favor of
// bulk reclamation (spec §4.1's "deallocate-trivial bit"). This is a
// property of the resource, not of the handle, so it is unaffected by how
// many times the handle has been copied or acquired (DESIGN.md OQ-2).
func (h Handle) IsDeallocateTrivial() bool {
	if h.resource == nil {
		return true
	}
	return isDeallocateTrivial(h.resource)
}

// Acquire records a new shared owner of this handle's resource and returns
// the handle unchanged (it is still the same handle value; Acquire exists
// purely for its side effect on the refcount).
func (h Handle) Acquire() Handle {
	if h.ref != nil {
		atomic.AddInt32(h.ref, 1)
	}
	return h
}

// Release drops one shared owner's claim on the resource. When the last
// owner releases a counted handle, the resource is closed if it implements
// Close() error. Releasing an uncounted handle, or a zero Handle, does
// nothing.
func (h Handle) Release() {
	if h.ref == nil {
		return
	}
	if atomic.AddInt32(h.ref, -1) == 0 {
		if c, ok := h.resource.(closer); ok {
			_ = c.Close()
		}
	}
}

// Equal reports whether h and other refer to the same resource (per
// Resource.IsEqual), the test spec §3's allocator-propagation invariant
// relies on.
func (h Handle) Equal(other Handle) bool {
	if h.resource == nil || other.resource == nil {
		return h.resource == other.resource
	}
	return h.resource.IsEqual(other.resource)
}
