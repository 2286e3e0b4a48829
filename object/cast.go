package object

import (
	"fmt"

	"github.com/wippyai/objbridge/capi"
	"github.com/wippyai/objbridge/errors"
)

// category is implemented by pointers to typed wrappers. matches must not
// touch the receiver: it is the static predicate of the wrapper type.
type category interface {
	Wrapper
	typeName() string
	matches(api capi.API, p capi.Ptr) bool
	bind(src Object)
}

// Wrapped constrains P to be a typed wrapper pointer *T.
type Wrapped[T any] interface {
	*T
	category
}

func (*Object) typeName() string { return capi.TypeObject }

func (*Object) matches(capi.API, capi.Ptr) bool { return true }

// hasFlags is the predicate of flag-tracked builtin families.
func hasFlags(api capi.API, p capi.Ptr, f capi.Flags) bool {
	return api.TypeFlags(api.TypeOf(p)).Has(f)
}

// Cast converts o into a T after checking its type. The reference moves
// into the result and o is left released. On failure o's reference is
// released and a *DowncastError is returned.
func Cast[T any, P Wrapped[T]](o *Object) (*T, error) {
	api := o.api()
	t := new(T)
	if !P(t).matches(api, o.ptr) {
		err := newDowncastError(o, P(t).typeName())
		o.Release()
		return nil, err
	}
	P(t).bind(o.move())
	return t, nil
}

// CastAs returns a view of o as a T after checking its type. o keeps its
// reference.
func CastAs[T any, P Wrapped[T]](o Wrapper) (*T, error) {
	src := o.AsObject()
	api := src.api()
	t := new(T)
	if !P(t).matches(api, src.ptr) {
		return nil, newDowncastError(src, P(t).typeName())
	}
	P(t).bind(newView(src.s, src.ptr))
	return t, nil
}

// CastExact is Cast restricted to objects whose type is exactly T's
// builtin type, excluding subtypes.
func CastExact[T any, P Wrapped[T]](o *Object) (*T, error) {
	api := o.api()
	t := new(T)
	want := api.StaticType(P(t).typeName())
	if want == capi.Null || api.TypeOf(o.ptr) != want {
		err := newDowncastError(o, P(t).typeName())
		o.Release()
		return nil, err
	}
	P(t).bind(o.move())
	return t, nil
}

// UncheckedCast converts o into a T without checking. The caller must know
// the type already.
func UncheckedCast[T any, P Wrapped[T]](o *Object) *T {
	t := new(T)
	P(t).bind(o.move())
	return t
}

// UncheckedCastAs returns a view of o as a T without checking.
func UncheckedCastAs[T any, P Wrapped[T]](o Wrapper) *T {
	src := o.AsObject()
	src.api()
	t := new(T)
	P(t).bind(newView(src.s, src.ptr))
	return t
}

// Check reports whether o satisfies T's type predicate.
func Check[T any, P Wrapped[T]](o Wrapper) bool {
	src := o.AsObject()
	return P(new(T)).matches(src.api(), src.ptr)
}

// DowncastError reports a failed checked cast. It carries type names only
// and holds no foreign reference.
type DowncastError struct {
	s        *Session
	Expected string
	Actual   string
}

func newDowncastError(o *Object, expected string) *DowncastError {
	api := o.api()
	return &DowncastError{
		s:        o.s,
		Expected: expected,
		Actual:   api.TypeName(api.TypeOf(o.ptr)),
	}
}

func (e *DowncastError) Error() string {
	return fmt.Sprintf("cannot downcast %s to %s", e.Actual, e.Expected)
}

// Unwrap exposes the structured type mismatch.
func (e *DowncastError) Unwrap() error {
	return errors.TypeMismatch(e.Expected, e.Actual)
}

// Session returns the session the failed cast ran under.
func (e *DowncastError) Session() *Session {
	return e.s
}

// ToErr converts the failure into a foreign TypeError.
func (e *DowncastError) ToErr() *Err {
	return NewError[TypeErrorKind](e.s, fmt.Sprintf("expected %s, got %s", e.Expected, e.Actual))
}
