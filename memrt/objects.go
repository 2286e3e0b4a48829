package memrt

import (
	"fmt"
	"strings"

	"github.com/wippyai/objbridge/capi"
)

type noneObj struct{}

// strObj holds raw text bytes. The runtime does not validate encoding, so
// a str may carry bytes that are not UTF-8, as a 2.x byte string can.
type strObj struct {
	data []byte
}

type listObj struct {
	items []capi.Ptr
}

type dictObj struct {
	vals map[string]capi.Ptr
	keys []string
}

func newDictObj() *dictObj {
	return &dictObj{vals: make(map[string]capi.Ptr)}
}

func (d *dictObj) get(key string) (capi.Ptr, bool) {
	v, ok := d.vals[key]
	return v, ok
}

// set stores v and returns the value it replaced, if any.
func (d *dictObj) set(key string, v capi.Ptr) capi.Ptr {
	old, ok := d.vals[key]
	if !ok {
		d.keys = append(d.keys, key)
	}
	d.vals[key] = v
	return old
}

func (d *dictObj) del(key string) (capi.Ptr, bool) {
	old, ok := d.vals[key]
	if !ok {
		return capi.Null, false
	}
	delete(d.vals, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
	return old, true
}

type moduleObj struct {
	dict capi.Ptr
}

type excObj struct {
	decode *capi.DecodeErrorInfo
	msg    string
	dict   capi.Ptr
}

type instanceObj struct {
	dict capi.Ptr
}

// children returns the references an object owns.
func children(payload any) []capi.Ptr {
	switch o := payload.(type) {
	case *listObj:
		return o.items
	case *dictObj:
		out := make([]capi.Ptr, 0, len(o.keys))
		for _, k := range o.keys {
			out = append(out, o.vals[k])
		}
		return out
	case *moduleObj:
		return []capi.Ptr{o.dict}
	case *excObj:
		return []capi.Ptr{o.dict}
	case *instanceObj:
		return []capi.Ptr{o.dict}
	}
	return nil
}

// render formats p like str() or, with repr set, like repr().
func (r *Runtime) render(p capi.Ptr, repr bool) string {
	if p == capi.Null {
		return "<NULL>"
	}
	e, ok := r.heap.get(p)
	if !ok {
		return fmt.Sprintf("<freed object at 0x%x>", uint64(p))
	}

	switch o := e.payload.(type) {
	case *typeObj:
		return fmt.Sprintf("<class '%s'>", o.name)
	case noneObj:
		return "None"
	case *strObj:
		if repr {
			return quote(string(o.data))
		}
		return string(o.data)
	case *listObj:
		parts := make([]string, len(o.items))
		for i, item := range o.items {
			parts[i] = r.render(item, true)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *dictObj:
		parts := make([]string, len(o.keys))
		for i, k := range o.keys {
			parts[i] = quote(k) + ": " + r.render(o.vals[k], true)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *moduleObj:
		return r.renderModule(o)
	case *excObj:
		msg := o.msg
		if o.decode != nil {
			msg = decodeMessage(o.decode)
		}
		if repr {
			if msg == "" {
				return r.typeName(e.typ) + "()"
			}
			return r.typeName(e.typ) + "(" + quote(msg) + ")"
		}
		return msg
	case *instanceObj:
		return fmt.Sprintf("<%s object at 0x%x>", r.typeName(e.typ), uint64(p))
	}
	return fmt.Sprintf("<object at 0x%x>", uint64(p))
}

func (r *Runtime) renderModule(m *moduleObj) string {
	name := "?"
	if b, ok := r.dictText(m.dict, "__name__"); ok {
		name = string(b)
	}
	if file, ok := r.dictText(m.dict, "__file__"); ok {
		return fmt.Sprintf("<module '%s' from '%s'>", name, file)
	}
	return fmt.Sprintf("<module '%s'>", name)
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), "'", `\'`) + "'"
}

func decodeMessage(d *capi.DecodeErrorInfo) string {
	if d.End == d.Start+1 && d.Start >= 0 && d.Start < len(d.Object) {
		return fmt.Sprintf("'%s' codec can't decode byte 0x%02x in position %d: %s",
			d.Encoding, d.Object[d.Start], d.Start, d.Reason)
	}
	return fmt.Sprintf("'%s' codec can't decode bytes in position %d-%d: %s",
		d.Encoding, d.Start, d.End-1, d.Reason)
}

// None returns the borrowed None singleton.
func (r *Runtime) None() capi.Ptr {
	return r.none
}

// ObjectStr returns a new str holding str(p).
func (r *Runtime) ObjectStr(p capi.Ptr) capi.Ptr {
	e := r.entry(p)
	if _, ok := e.payload.(*strObj); ok {
		r.IncRef(p)
		return p
	}
	return r.UnicodeFromString(r.render(p, false))
}

// GetAttrString returns a new reference to p.name or sets AttributeError.
func (r *Runtime) GetAttrString(p capi.Ptr, name string) capi.Ptr {
	e := r.entry(p)

	if name == "__class__" {
		r.IncRef(e.typ)
		return e.typ
	}

	var dict capi.Ptr
	switch o := e.payload.(type) {
	case *typeObj:
		if name == "__name__" {
			return r.UnicodeFromString(o.name)
		}
	case *moduleObj:
		if name == "__dict__" {
			r.IncRef(o.dict)
			return o.dict
		}
		dict = o.dict
	case *excObj:
		if o.decode != nil {
			switch name {
			case "encoding":
				return r.UnicodeFromString(o.decode.Encoding)
			case "reason":
				return r.UnicodeFromString(o.decode.Reason)
			}
		}
		dict = o.dict
	case *instanceObj:
		dict = o.dict
	}

	if dict != capi.Null {
		if v, ok := r.dictPayload(dict).get(name); ok {
			r.IncRef(v)
			return v
		}
	}

	if m, ok := e.payload.(*moduleObj); ok {
		modName := "?"
		if b, ok := r.dictText(m.dict, "__name__"); ok {
			modName = string(b)
		}
		r.raise("AttributeError", "module '%s' has no attribute '%s'", modName, name)
		return capi.Null
	}
	r.raise("AttributeError", "'%s' object has no attribute '%s'", r.typeName(e.typ), name)
	return capi.Null
}

// SetAttrString sets p.name to v without stealing it. A Null v deletes
// the attribute.
func (r *Runtime) SetAttrString(p capi.Ptr, name string, v capi.Ptr) int {
	e := r.entry(p)

	var dict *capi.Ptr
	switch o := e.payload.(type) {
	case *moduleObj:
		dict = &o.dict
	case *excObj:
		dict = &o.dict
	case *instanceObj:
		dict = &o.dict
	default:
		r.raise("AttributeError", "'%s' object has no attribute '%s'", r.typeName(e.typ), name)
		return -1
	}

	if v == capi.Null {
		if *dict != capi.Null {
			if old, ok := r.dictPayload(*dict).del(name); ok {
				r.DecRef(old)
				return 0
			}
		}
		r.raise("AttributeError", "'%s' object has no attribute '%s'", r.typeName(e.typ), name)
		return -1
	}

	if *dict == capi.Null {
		d := r.DictNew()
		if d == capi.Null {
			return -1
		}
		*dict = d
	}
	return r.DictSetItemString(*dict, name, v)
}
