package object

import (
	"strings"

	"github.com/wippyai/objbridge/capi"
	"github.com/wippyai/objbridge/errors"
)

// Err is a foreign exception taken out of the runtime's error slot. It owns
// its type, value and traceback until Restore or Release.
type Err struct {
	s         *Session
	Type      *Type
	Value     *Object
	Traceback *Object
	name      string
	msg       string
	cause     error
}

// Fetch takes the pending error out of the runtime. Calling it with no
// pending error yields a SystemError.
func Fetch(s *Session) *Err {
	api := s.check()
	typ, value, tb := api.ErrFetch()
	if typ == capi.Null {
		for _, p := range []capi.Ptr{value, tb} {
			if p != capi.Null {
				api.DecRef(p)
			}
		}
		return NewError[SystemErrorKind](s, "error return without exception set")
	}

	e := &Err{
		s:         s,
		Type:      UncheckedCast[Type](FromOwned(s, typ)),
		Value:     FromOwnedOpt(s, value),
		Traceback: FromOwnedOpt(s, tb),
	}
	e.name = api.TypeName(typ)
	e.msg = e.describe()
	return e
}

// ErrFromValue builds an Err from an exception instance, consuming it.
func ErrFromValue(value *Object) *Err {
	api := value.api()
	e := &Err{
		s:     value.s,
		Type:  UncheckedCast[Type](value.Type().Clone()),
		Value: value,
	}
	e.name = api.TypeName(e.Type.ptr)
	e.msg = e.describe()
	return e
}

// describe renders str(value) without disturbing the error slot.
func (e *Err) describe() string {
	if e.Value == nil {
		return ""
	}
	api := e.s.check()
	p := api.ObjectStr(e.Value.ptr)
	if p == capi.Null {
		api.ErrClear()
		return ""
	}
	defer api.DecRef(p)
	return strings.ToValidUTF8(string(api.UnicodeAsUTF8(p)), "\uFFFD")
}

// Name returns the exception type name.
func (e *Err) Name() string {
	return e.name
}

// Message returns str() of the exception value as captured at fetch time.
func (e *Err) Message() string {
	return e.msg
}

func (e *Err) Error() string {
	if e.msg == "" {
		return e.name
	}
	return e.name + ": " + e.msg
}

// Unwrap exposes the structured form. Errors raised for undecodable text
// carry the matching errors.InvalidUTF8 as their cause.
func (e *Err) Unwrap() error {
	return errors.New(errors.PhaseForeign, errors.KindForeignException).
		ForeignType(e.name).
		Detail("%s", e.msg).
		Cause(e.cause).
		Build()
}

// Session returns the session the error was fetched under.
func (e *Err) Session() *Session {
	return e.s
}

// Matches reports whether the exception is an instance of t.
func (e *Err) Matches(t *Type) bool {
	if t == nil || e.Type.Released() {
		return false
	}
	return e.Type.IsSubtypeOf(t)
}

// ErrMatches reports whether err is a foreign exception of kind K or a
// subtype of it.
func ErrMatches[K ExcKind](err error) bool {
	var e *Err
	if !errors.As(err, &e) || e.Type.Released() {
		return false
	}
	t := TypeObject[Exc[K]](e.s)
	return t != nil && e.Matches(t)
}

// Restore puts the exception back into the runtime's error slot, giving up
// all references.
func (e *Err) Restore() {
	api := e.s.check()
	steal := func(o *Object) capi.Ptr {
		if o.Released() {
			return capi.Null
		}
		return o.Steal()
	}
	api.ErrRestore(steal(&e.Type.Object), steal(e.Value), steal(e.Traceback))
}

// Release drops the exception's references.
func (e *Err) Release() {
	if e == nil {
		return
	}
	e.Type.Release()
	e.Value.Release()
	e.Traceback.Release()
}
