package memrt

import (
	"fmt"
	"sync"

	"github.com/wippyai/objbridge/capi"
)

// errSlot is the pending error. It owns one reference to each non-null
// member.
type errSlot struct {
	typ   capi.Ptr
	value capi.Ptr
	tb    capi.Ptr
	mu    sync.Mutex
}

// ErrOccurred returns the borrowed type of the pending error, or Null.
func (r *Runtime) ErrOccurred() capi.Ptr {
	r.err.mu.Lock()
	defer r.err.mu.Unlock()
	return r.err.typ
}

// ErrFetch hands the pending error to the caller and clears the slot.
func (r *Runtime) ErrFetch() (typ, value, traceback capi.Ptr) {
	r.err.mu.Lock()
	defer r.err.mu.Unlock()
	typ, value, traceback = r.err.typ, r.err.value, r.err.tb
	r.err.typ, r.err.value, r.err.tb = capi.Null, capi.Null, capi.Null
	return typ, value, traceback
}

// ErrRestore steals typ, value and traceback into the slot, releasing
// whatever was pending.
func (r *Runtime) ErrRestore(typ, value, traceback capi.Ptr) {
	r.err.mu.Lock()
	oldT, oldV, oldTB := r.err.typ, r.err.value, r.err.tb
	r.err.typ, r.err.value, r.err.tb = typ, value, traceback
	r.err.mu.Unlock()

	for _, p := range []capi.Ptr{oldT, oldV, oldTB} {
		if p != capi.Null {
			r.DecRef(p)
		}
	}
}

// ErrSetString raises typ with a message.
func (r *Runtime) ErrSetString(typ capi.Ptr, msg string) {
	value := r.newException(typ, msg)
	if value == capi.Null {
		return
	}
	r.IncRef(typ)
	r.ErrRestore(typ, value, capi.Null)
}

// ErrSetObject raises typ with value as the exception instance.
func (r *Runtime) ErrSetObject(typ, value capi.Ptr) {
	r.IncRef(typ)
	if value != capi.Null {
		r.IncRef(value)
	}
	r.ErrRestore(typ, value, capi.Null)
}

// ErrClear drops the pending error.
func (r *Runtime) ErrClear() {
	r.ErrRestore(capi.Null, capi.Null, capi.Null)
}

func (r *Runtime) newException(typ capi.Ptr, msg string) capi.Ptr {
	return r.alloc(typ, &excObj{msg: msg}, 0)
}

// raise sets the named builtin exception.
func (r *Runtime) raise(name, format string, args ...any) {
	r.ErrSetString(r.types[name], fmt.Sprintf(format, args...))
}

func (r *Runtime) badInternalCall() {
	r.raise("SystemError", "bad argument to internal function")
}

func (r *Runtime) badArgument() {
	r.raise("TypeError", "bad argument type for built-in operation")
}

// raiseMemoryError sets the preallocated MemoryError so that reporting
// exhaustion never allocates.
func (r *Runtime) raiseMemoryError() {
	t, ok := r.types["MemoryError"]
	if !ok || r.memErr == capi.Null {
		return
	}
	r.IncRef(t)
	r.IncRef(r.memErr)
	r.ErrRestore(t, r.memErr, capi.Null)
}
