package object

import (
	"github.com/wippyai/objbridge/capi"
	"github.com/wippyai/objbridge/errors"
)

// Dict wraps a dict with text keys.
type Dict struct {
	Object
}

func (*Dict) typeName() string { return capi.TypeDict }

func (*Dict) matches(api capi.API, p capi.Ptr) bool {
	return hasFlags(api, p, capi.TPFlagsDictSubclass)
}

// NewDict creates an empty dict.
func NewDict(s *Session) (*Dict, error) {
	p := s.check().DictNew()
	if p == capi.Null {
		return nil, Fetch(s)
	}
	return UncheckedCast[Dict](FromOwned(s, p)), nil
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	n := d.api().DictSize(d.ptr)
	if n < 0 {
		fatal(errors.UnexpectedStatus("DictSize", n))
	}
	return n
}

// GetItem returns a new reference to d[key], or nil when absent.
func (d *Dict) GetItem(key string) *Object {
	p := d.api().DictGetItemString(d.ptr, cstr("key", key))
	return FromBorrowedOpt(d.s, p)
}

// SetItem stores v under key. v is borrowed.
func (d *Dict) SetItem(key string, v Wrapper) error {
	api := d.api()
	vo := v.AsObject()
	vo.api()
	if api.DictSetItemString(d.ptr, cstr("key", key), vo.ptr) != 0 {
		return Fetch(d.s)
	}
	return nil
}
