package memrt

import (
	"github.com/wippyai/objbridge/capi"
)

func (r *Runtime) listPayload(p capi.Ptr) (*listObj, bool) {
	l, ok := r.entry(p).payload.(*listObj)
	return l, ok
}

// ListNew returns a new list of n Null slots that must be filled with
// ListSetItem before the list is used elsewhere.
func (r *Runtime) ListNew(n int) capi.Ptr {
	if n < 0 {
		r.badInternalCall()
		return capi.Null
	}
	return r.alloc(r.types[capi.TypeList], &listObj{items: make([]capi.Ptr, n)}, 0)
}

// ListSize returns the length of list p, or -1 with SystemError set.
func (r *Runtime) ListSize(p capi.Ptr) int {
	l, ok := r.listPayload(p)
	if !ok {
		r.badInternalCall()
		return -1
	}
	return len(l.items)
}

// ListGetItem returns a borrowed reference to item i.
func (r *Runtime) ListGetItem(p capi.Ptr, i int) capi.Ptr {
	l, ok := r.listPayload(p)
	if !ok {
		r.badInternalCall()
		return capi.Null
	}
	if i < 0 || i >= len(l.items) {
		r.raise("IndexError", "list index out of range")
		return capi.Null
	}
	return l.items[i]
}

// ListSetItem steals v into slot i, releasing the previous item.
func (r *Runtime) ListSetItem(p capi.Ptr, i int, v capi.Ptr) int {
	l, ok := r.listPayload(p)
	if !ok {
		if v != capi.Null {
			r.DecRef(v)
		}
		r.badInternalCall()
		return -1
	}
	if i < 0 || i >= len(l.items) {
		if v != capi.Null {
			r.DecRef(v)
		}
		r.raise("IndexError", "list assignment index out of range")
		return -1
	}
	old := l.items[i]
	l.items[i] = v
	if old != capi.Null {
		r.DecRef(old)
	}
	return 0
}

// ListInsert inserts v before index i. Negative indices count from the end
// and out-of-range indices clamp.
func (r *Runtime) ListInsert(p capi.Ptr, i int, v capi.Ptr) int {
	l, ok := r.listPayload(p)
	if !ok || v == capi.Null {
		r.badInternalCall()
		return -1
	}
	n := len(l.items)
	if i < 0 {
		i += n
		if i < 0 {
			i = 0
		}
	}
	if i > n {
		i = n
	}
	r.IncRef(v)
	l.items = append(l.items, capi.Null)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = v
	return 0
}

// ListAppend appends v without stealing it.
func (r *Runtime) ListAppend(p capi.Ptr, v capi.Ptr) int {
	l, ok := r.listPayload(p)
	if !ok || v == capi.Null {
		r.badInternalCall()
		return -1
	}
	r.IncRef(v)
	l.items = append(l.items, v)
	return 0
}
