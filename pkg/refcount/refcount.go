// Package refcount implements the generic reference-counted handle that
// lets host-owned buffers and foreign opaque pointers cross the runtime
// boundary without copying.
package refcount

import "sync/atomic"

// Updater is supplied by the object's owner. It is called with incref=true
// when a new Handle is minted referencing obj, and incref=false when a
// Handle is dropped. A nil Updater marks obj as unmanaged: incref/decref
// are no-ops, and the handle never needs to be dropped.
type Updater func(obj any, incref bool)

// Handle is an opaque, pre-incremented reference to a host- or
// runtime-owned object. Every Handle received across the API boundary
// already holds one increment; the recipient owes exactly one Drop.
type Handle struct {
	obj     any
	update  Updater
	count   *int64 // shared counter, nil for unmanaged handles
	dropped int32
}

// New mints a Handle over obj with an atomically-incrementing count,
// managed by a runtime-local counter (no foreign Updater involved).
func New(obj any) *Handle {
	c := int64(1)
	return &Handle{obj: obj, count: &c}
}

// NewManaged mints a Handle over a foreign obj whose lifecycle is tracked
// by update. update(obj, true) is invoked once, synchronously, to record
// the initial increment this Handle represents.
func NewManaged(obj any, update Updater) *Handle {
	h := &Handle{obj: obj, update: update}
	if update != nil {
		update(obj, true)
	}
	return h
}

// Unmanaged wraps obj with no reference counting at all (Updater ==
// nil). Drop is a no-op; Clone returns the same handle semantics
// without any bookkeeping.
func Unmanaged(obj any) *Handle {
	return &Handle{obj: obj}
}

// Object returns the underlying object. Safe to call any number of times;
// does not affect the reference count.
func (h *Handle) Object() any {
	if h == nil {
		return nil
	}
	return h.obj
}

// IsManaged reports whether this handle participates in reference
// counting (Updater != nil, or it is a runtime-local counted handle).
func (h *Handle) IsManaged() bool {
	return h != nil && (h.update != nil || h.count != nil)
}

// Clone increments the reference count and returns a new Handle that must
// itself be dropped exactly once. Safe to call from any goroutine.
func (h *Handle) Clone() *Handle {
	if h == nil {
		return nil
	}
	if h.count != nil {
		atomic.AddInt64(h.count, 1)
		return &Handle{obj: h.obj, count: h.count}
	}
	if h.update != nil {
		h.update(h.obj, true)
	}
	return &Handle{obj: h.obj, update: h.update}
}

// Drop releases this Handle's increment. A Handle must not be used after
// Drop. Dropping the same Handle value twice is a programmer error; Drop
// guards against it with an atomic flag so a double-drop is a no-op
// rather than a double-decrement, but callers should not rely on that.
func (h *Handle) Drop() {
	if h == nil {
		return
	}
	if !atomic.CompareAndSwapInt32(&h.dropped, 0, 1) {
		return
	}
	if h.count != nil {
		atomic.AddInt64(h.count, -1)
		return
	}
	if h.update != nil {
		h.update(h.obj, false)
	}
}

// Count returns the current reference count for runtime-local counted
// handles, or -1 for foreign-managed/unmanaged handles whose count this
// package does not track directly.
func (h *Handle) Count() int64 {
	if h == nil || h.count == nil {
		return -1
	}
	return atomic.LoadInt64(h.count)
}
