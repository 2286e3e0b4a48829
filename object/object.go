package object

import (
	"fmt"
	"reflect"

	"github.com/wippyai/objbridge/capi"
	"github.com/wippyai/objbridge/errors"
)

// Wrapper is implemented by Object and every typed wrapper embedding it.
type Wrapper interface {
	AsObject() *Object
}

// Object owns one reference to a foreign object.
//
// The zero-address state marks a handle whose reference was released or
// moved elsewhere; Release on it does nothing, so
//
//	o := object.FromOwned(s, p)
//	defer o.Release()
//
// stays correct when o is later consumed by Cast or a List operation.
//
// Handles returned by CastAs, Type and Module.Dict are views: they borrow
// from another handle, Release does nothing and Clone turns them into an
// owned handle. A view must not outlive the object it was taken from.
type Object struct {
	s    *Session
	ptr  capi.Ptr
	view bool
}

// FromOwned adopts a new reference. A null p is fatal.
func FromOwned(s *Session, p capi.Ptr) *Object {
	s.check()
	if p == capi.Null {
		fatal(errors.NilPointer(errors.PhaseContract, "owned reference"))
	}
	s.live.Add(1)
	return &Object{s: s, ptr: p}
}

// FromOwnedOpt adopts a new reference, returning nil for null.
func FromOwnedOpt(s *Session, p capi.Ptr) *Object {
	if p == capi.Null {
		return nil
	}
	return FromOwned(s, p)
}

// FromBorrowed takes a new reference to a borrowed p. A null p is fatal.
func FromBorrowed(s *Session, p capi.Ptr) *Object {
	api := s.check()
	if p == capi.Null {
		fatal(errors.NilPointer(errors.PhaseContract, "borrowed reference"))
	}
	api.IncRef(p)
	s.live.Add(1)
	return &Object{s: s, ptr: p}
}

// FromBorrowedOpt takes a new reference to p, returning nil for null.
func FromBorrowedOpt(s *Session, p capi.Ptr) *Object {
	if p == capi.Null {
		return nil
	}
	return FromBorrowed(s, p)
}

func newView(s *Session, p capi.Ptr) Object {
	return Object{s: s, ptr: p, view: true}
}

// AsObject returns the generic handle.
func (o *Object) AsObject() *Object {
	return o
}

// Session returns the session the handle belongs to.
func (o *Object) Session() *Session {
	return o.s
}

// Ptr returns the raw address without affecting ownership.
func (o *Object) Ptr() capi.Ptr {
	return o.ptr
}

// IsView reports whether the handle borrows rather than owns.
func (o *Object) IsView() bool {
	return o.view
}

// Released reports whether the handle no longer refers to an object.
func (o *Object) Released() bool {
	return o == nil || o.ptr == capi.Null
}

// api returns the capability surface, failing on a released handle or a
// closed session.
func (o *Object) api() capi.API {
	if o == nil {
		fatal(errors.NilPointer(errors.PhaseContract, "handle"))
	}
	api := o.s.check()
	if o.ptr == capi.Null {
		fatal(errors.New(errors.PhaseContract, errors.KindUseAfterRelease).
			Detail("handle used after Release or move").
			Build())
	}
	return api
}

// Clone returns a new owned handle to the same object.
func (o *Object) Clone() *Object {
	o.api()
	return FromBorrowed(o.s, o.ptr)
}

// Release gives up the handle's reference. Releasing a released handle or
// a view is a no-op.
func (o *Object) Release() {
	if o == nil || o.ptr == capi.Null || o.view {
		return
	}
	api := o.s.check()
	p := o.ptr
	o.ptr = capi.Null
	o.s.live.Add(-1)
	api.DecRef(p)
}

// Steal returns the raw address and hands its reference to the caller.
// The handle is left released. Stealing a view takes a new reference.
func (o *Object) Steal() capi.Ptr {
	api := o.api()
	p := o.ptr
	if o.view {
		api.IncRef(p)
		return p
	}
	o.ptr = capi.Null
	o.s.live.Add(-1)
	return p
}

// move transfers the handle's state to a new value and leaves o released.
func (o *Object) move() Object {
	o.api()
	moved := *o
	o.ptr = capi.Null
	return moved
}

func (o *Object) bind(src Object) {
	*o = src
}

// Type returns a view of the object's type.
func (o *Object) Type() *Type {
	api := o.api()
	return &Type{Object: newView(o.s, api.TypeOf(o.ptr))}
}

// Is reports whether both handles refer to the same object. A nil or
// typed-nil other is never the same object.
func (o *Object) Is(other Wrapper) bool {
	if isNil(other) {
		return false
	}
	oo := other.AsObject()
	return oo != nil && o.ptr != capi.Null && o.ptr == oo.ptr
}

// isNil catches typed-nil wrappers such as a nil *List, whose promoted
// AsObject would dereference nil.
func isNil(w Wrapper) bool {
	if w == nil {
		return true
	}
	v := reflect.ValueOf(w)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// RefCount returns the foreign reference count.
func (o *Object) RefCount() int64 {
	return o.api().RefCount(o.ptr)
}

// IsNone reports whether the object is the None singleton.
func (o *Object) IsNone() bool {
	return o.ptr == o.api().None()
}

// GetAttr looks up an attribute.
func (o *Object) GetAttr(name string) (*Object, error) {
	api := o.api()
	p := api.GetAttrString(o.ptr, cstr("attribute", name))
	if p == capi.Null {
		return nil, Fetch(o.s)
	}
	return FromOwned(o.s, p), nil
}

// SetAttr sets an attribute. v is borrowed.
func (o *Object) SetAttr(name string, v Wrapper) error {
	api := o.api()
	vp := v.AsObject()
	vp.api()
	if api.SetAttrString(o.ptr, cstr("attribute", name), vp.ptr) != 0 {
		return Fetch(o.s)
	}
	return nil
}

// DelAttr removes an attribute.
func (o *Object) DelAttr(name string) error {
	api := o.api()
	if api.SetAttrString(o.ptr, cstr("attribute", name), capi.Null) != 0 {
		return Fetch(o.s)
	}
	return nil
}

// Str returns str(o) decoded as UTF-8.
func (o *Object) Str() (string, error) {
	api := o.api()
	p := api.ObjectStr(o.ptr)
	if p == capi.Null {
		return "", Fetch(o.s)
	}
	str := FromOwned(o.s, p)
	defer str.Release()
	return decodeText(o.s, api.UnicodeAsUTF8(p))
}

// String formats the handle for logs. It never fails.
func (o *Object) String() string {
	if o.Released() {
		return "<released>"
	}
	if o.s.closed.Load() {
		return fmt.Sprintf("<object at 0x%x>", uint64(o.ptr))
	}
	s, err := o.Str()
	if err != nil {
		if e, ok := err.(*Err); ok {
			e.Release()
		}
		return fmt.Sprintf("<unprintable %s object>", o.Type().Name())
	}
	return s
}

// None returns a new reference to the None singleton.
func None(s *Session) *Object {
	return FromBorrowed(s, s.check().None())
}
