package memrt

import (
	"github.com/wippyai/objbridge/capi"
)

func (r *Runtime) dictPayload(p capi.Ptr) *dictObj {
	d, _ := r.entry(p).payload.(*dictObj)
	if d == nil {
		return newDictObj()
	}
	return d
}

// dictText returns the bytes of a str stored under key.
func (r *Runtime) dictText(dict capi.Ptr, key string) ([]byte, bool) {
	if dict == capi.Null {
		return nil, false
	}
	v, ok := r.dictPayload(dict).get(key)
	if !ok {
		return nil, false
	}
	e, ok := r.heap.get(v)
	if !ok {
		return nil, false
	}
	s, ok := e.payload.(*strObj)
	if !ok {
		return nil, false
	}
	return s.data, true
}

// DictNew returns a new empty dict.
func (r *Runtime) DictNew() capi.Ptr {
	return r.alloc(r.types[capi.TypeDict], newDictObj(), 0)
}

// DictSize returns the number of entries, or -1 with SystemError set.
func (r *Runtime) DictSize(d capi.Ptr) int {
	dict, ok := r.entry(d).payload.(*dictObj)
	if !ok {
		r.badInternalCall()
		return -1
	}
	return len(dict.keys)
}

// DictGetItemString returns a borrowed reference to d[key], or Null
// without an error when key is absent or d is not a dict.
func (r *Runtime) DictGetItemString(d capi.Ptr, key string) capi.Ptr {
	dict, ok := r.entry(d).payload.(*dictObj)
	if !ok {
		return capi.Null
	}
	v, _ := dict.get(key)
	return v
}

// DictSetItemString stores v under key without stealing it.
func (r *Runtime) DictSetItemString(d capi.Ptr, key string, v capi.Ptr) int {
	dict, ok := r.entry(d).payload.(*dictObj)
	if !ok || v == capi.Null {
		r.badInternalCall()
		return -1
	}
	r.IncRef(v)
	if old := dict.set(key, v); old != capi.Null {
		r.DecRef(old)
	}
	return 0
}

// DictKeys returns the keys of dict d in insertion order.
func (r *Runtime) DictKeys(d capi.Ptr) []string {
	dict, ok := r.entry(d).payload.(*dictObj)
	if !ok {
		return nil
	}
	return append([]string(nil), dict.keys...)
}
