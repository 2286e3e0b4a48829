package object

import (
	"github.com/wippyai/objbridge/capi"
)

// Str wraps a text object.
type Str struct {
	Object
}

func (*Str) typeName() string { return capi.TypeStr }

func (*Str) matches(api capi.API, p capi.Ptr) bool {
	return hasFlags(api, p, capi.TPFlagsUnicodeSubclass)
}

// NewStr creates a text object from Go text.
func NewStr(s *Session, text string) (*Str, error) {
	p := s.check().UnicodeFromString(cstr("text", text))
	if p == capi.Null {
		return nil, Fetch(s)
	}
	return UncheckedCast[Str](FromOwned(s, p)), nil
}

// Text decodes the object's bytes as UTF-8. Invalid bytes produce an *Err
// holding a UnicodeDecodeError.
func (t *Str) Text() (string, error) {
	api := t.api()
	b := api.UnicodeAsUTF8(t.ptr)
	if b == nil && api.ErrOccurred() != capi.Null {
		return "", Fetch(t.s)
	}
	return decodeText(t.s, b)
}
