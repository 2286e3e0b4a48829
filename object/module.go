package object

import (
	"github.com/wippyai/objbridge/capi"
	"github.com/wippyai/objbridge/errors"
)

// Module wraps a module object.
type Module struct {
	Object
}

func (*Module) typeName() string { return capi.TypeModule }

// Modules are not flag-tracked, so the check walks the type hierarchy.
func (*Module) matches(api capi.API, p capi.Ptr) bool {
	t := api.StaticType(capi.TypeModule)
	return t != capi.Null && api.IsInstance(p, t)
}

// NewModule creates an empty module named name.
func NewModule(s *Session, name string) (*Module, error) {
	p := s.check().ModuleNew(cstr("module name", name))
	if p == capi.Null {
		return nil, Fetch(s)
	}
	return UncheckedCast[Module](FromOwned(s, p)), nil
}

// Import imports a module by name.
func Import(s *Session, name string) (*Module, error) {
	p := s.check().ImportModule(cstr("module name", name))
	if p == capi.Null {
		return nil, Fetch(s)
	}
	return Cast[Module](FromOwned(s, p))
}

// Dict returns a view of the module namespace. It is valid while m is.
func (m *Module) Dict() *Dict {
	api := m.api()
	p := api.ModuleGetDict(m.ptr)
	if p == capi.Null {
		e := Fetch(m.s)
		defer e.Release()
		fatal(errors.New(errors.PhaseContract, errors.KindNilPointer).
			Detail("module without namespace: %s", e.msg).
			Build())
	}
	return &Dict{Object: newView(m.s, p)}
}

// Name returns the module's __name__.
func (m *Module) Name() (string, error) {
	return m.text(m.api().ModuleGetName)
}

// Filename returns the module's __file__.
func (m *Module) Filename() (string, error) {
	return m.text(m.api().ModuleGetFilename)
}

func (m *Module) text(get func(capi.Ptr) []byte) (string, error) {
	b := get(m.ptr)
	if b == nil && m.api().ErrOccurred() != capi.Null {
		return "", Fetch(m.s)
	}
	return decodeText(m.s, b)
}

// Get returns the module attribute name.
func (m *Module) Get(name string) (*Object, error) {
	return m.GetAttr(name)
}

// Add stores v in the module namespace under name. v is borrowed.
func (m *Module) Add(name string, v Wrapper) error {
	return m.Dict().SetItem(name, v)
}
