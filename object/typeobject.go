package object

import (
	"github.com/wippyai/objbridge/capi"
)

// Type wraps a type object.
type Type struct {
	Object
}

func (*Type) typeName() string { return capi.TypeType }

func (*Type) matches(api capi.API, p capi.Ptr) bool {
	return hasFlags(api, p, capi.TPFlagsTypeSubclass)
}

// TypeObject returns a view of the builtin type behind wrapper T, or nil
// when the runtime does not provide it.
func TypeObject[T any, P Wrapped[T]](s *Session) *Type {
	api := s.check()
	p := api.StaticType(P(new(T)).typeName())
	if p == capi.Null {
		return nil
	}
	return &Type{Object: newView(s, p)}
}

// Name returns the type's name.
func (t *Type) Name() string {
	return t.api().TypeName(t.ptr)
}

// Flags returns the type's flag bits.
func (t *Type) Flags() capi.Flags {
	return t.api().TypeFlags(t.ptr)
}

// IsSubtypeOf reports whether t is other or derives from it.
func (t *Type) IsSubtypeOf(other *Type) bool {
	api := t.api()
	other.api()
	return api.IsSubtype(t.ptr, other.ptr)
}

// IsInstance reports whether o is an instance of t or a subtype.
func (t *Type) IsInstance(o Wrapper) bool {
	api := t.api()
	src := o.AsObject()
	src.api()
	return api.IsInstance(src.ptr, t.ptr)
}

// Equal reports whether both handles name the same type.
func (t *Type) Equal(other *Type) bool {
	return other != nil && t.ptr == other.ptr
}
