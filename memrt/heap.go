package memrt

import (
	"sync"

	"github.com/wippyai/objbridge"
	"github.com/wippyai/objbridge/capi"
)

// heap maps object addresses to their Go-side payloads. Address i*HeaderSize
// belongs to slot i-1, so Null never names a slot and every address is
// header-aligned.
type heap struct {
	entries  []entry
	freeList []capi.Ptr
	live     int
	mu       sync.RWMutex
	closed   bool
}

type entry struct {
	payload any
	typ     capi.Ptr
	valid   bool
}

func newHeap() *heap {
	return &heap{
		entries:  make([]entry, 0, 64),
		freeList: make([]capi.Ptr, 0, 16),
	}
}

func addrOf(idx int) capi.Ptr {
	return capi.Ptr(uint32(idx+1) * objbridge.HeaderSize)
}

func indexOf(p capi.Ptr) (int, bool) {
	if p == capi.Null || uint32(p)%objbridge.HeaderSize != 0 {
		return 0, false
	}
	return int(uint32(p)/objbridge.HeaderSize) - 1, true
}

// create stores payload and returns its address. Freed addresses are reused
// most recent first.
func (h *heap) create(typ capi.Ptr, payload any) capi.Ptr {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return capi.Null
	}

	e := entry{
		payload: payload,
		typ:     typ,
		valid:   true,
	}
	h.live++

	if len(h.freeList) > 0 {
		p := h.freeList[len(h.freeList)-1]
		h.freeList = h.freeList[:len(h.freeList)-1]
		idx, _ := indexOf(p)
		h.entries[idx] = e
		return p
	}

	h.entries = append(h.entries, e)
	return addrOf(len(h.entries) - 1)
}

func (h *heap) get(p capi.Ptr) (entry, bool) {
	idx, ok := indexOf(p)
	if !ok {
		return entry{}, false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if idx >= len(h.entries) || !h.entries[idx].valid {
		return entry{}, false
	}
	return h.entries[idx], true
}

// setType patches the recorded type of a live slot. Only used while
// bootstrapping the type of type.
func (h *heap) setType(p, typ capi.Ptr) {
	idx, ok := indexOf(p)
	if !ok {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if idx < len(h.entries) && h.entries[idx].valid {
		h.entries[idx].typ = typ
	}
}

// drop frees a slot and returns what it held.
func (h *heap) drop(p capi.Ptr) (entry, bool) {
	idx, ok := indexOf(p)
	if !ok {
		return entry{}, false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if idx >= len(h.entries) || !h.entries[idx].valid {
		return entry{}, false
	}

	e := h.entries[idx]
	h.entries[idx] = entry{}
	h.freeList = append(h.freeList, p)
	h.live--
	return e, true
}

func (h *heap) len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.live
}

// addrs returns the addresses of all live slots in address order.
func (h *heap) addrs() []capi.Ptr {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]capi.Ptr, 0, h.live)
	for i := range h.entries {
		if h.entries[i].valid {
			out = append(out, addrOf(i))
		}
	}
	return out
}

func (h *heap) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	h.entries = nil
	h.freeList = nil
	h.live = 0
}
