package memrt

import (
	"fmt"
	"sort"

	"github.com/wippyai/objbridge"
	"github.com/wippyai/objbridge/capi"
	"github.com/wippyai/objbridge/errors"
)

type typeObj struct {
	name  string
	base  capi.Ptr
	flags capi.Flags
}

// stdBase resolves to StandardError on 2.x and Exception otherwise.
const stdBase = "<standard>"

type typeSpec struct {
	name    string
	base    string
	flags   capi.Flags
	major   int  // 0 for every version
	alias   bool // name is another binding of base
	windows bool
}

var builtinTypes = []typeSpec{
	{name: capi.TypeNone, base: capi.TypeObject},
	{name: capi.TypeStr, base: capi.TypeObject, flags: capi.TPFlagsBaseType | capi.TPFlagsUnicodeSubclass},
	{name: capi.TypeList, base: capi.TypeObject, flags: capi.TPFlagsBaseType | capi.TPFlagsListSubclass},
	{name: capi.TypeDict, base: capi.TypeObject, flags: capi.TPFlagsBaseType | capi.TPFlagsDictSubclass},
	{name: capi.TypeModule, base: capi.TypeObject, flags: capi.TPFlagsBaseType},
}

var exceptionTypes = []typeSpec{
	{name: "BaseException", base: capi.TypeObject, flags: capi.TPFlagsBaseExcSubclass},
	{name: "SystemExit", base: "BaseException"},
	{name: "KeyboardInterrupt", base: "BaseException"},
	{name: "Exception", base: "BaseException"},
	{name: "StandardError", base: "Exception", major: 2},

	{name: "ArithmeticError", base: stdBase},
	{name: "FloatingPointError", base: "ArithmeticError"},
	{name: "OverflowError", base: "ArithmeticError"},
	{name: "ZeroDivisionError", base: "ArithmeticError"},
	{name: "AssertionError", base: stdBase},
	{name: "AttributeError", base: stdBase},
	{name: "EOFError", base: stdBase},

	{name: "EnvironmentError", base: stdBase, major: 2},
	{name: "OSError", base: "EnvironmentError", major: 2},
	{name: "IOError", base: "EnvironmentError", major: 2},
	{name: "WindowsError", base: "OSError", major: 2, windows: true},
	{name: "OSError", base: stdBase, major: 3},
	{name: "EnvironmentError", base: "OSError", major: 3, alias: true},
	{name: "IOError", base: "OSError", major: 3, alias: true},
	{name: "WindowsError", base: "OSError", major: 3, alias: true, windows: true},

	{name: "ImportError", base: stdBase},
	{name: "ModuleNotFoundError", base: "ImportError", major: 3},
	{name: "LookupError", base: stdBase},
	{name: "IndexError", base: "LookupError"},
	{name: "KeyError", base: "LookupError"},
	{name: "MemoryError", base: stdBase},
	{name: "NameError", base: stdBase},
	{name: "ReferenceError", base: stdBase},
	{name: "RuntimeError", base: stdBase},
	{name: "NotImplementedError", base: "RuntimeError"},
	{name: "SyntaxError", base: stdBase},
	{name: "SystemError", base: stdBase},
	{name: "TypeError", base: stdBase},
	{name: "ValueError", base: stdBase},
	{name: "UnicodeError", base: "ValueError"},
	{name: "UnicodeDecodeError", base: "UnicodeError"},
	{name: "UnicodeEncodeError", base: "UnicodeError"},
	{name: "UnicodeTranslateError", base: "UnicodeError"},
}

// bootstrap creates the type of types, object, the builtin types, the
// exception hierarchy and the None singleton. All of them are immortal.
func (r *Runtime) bootstrap() error {
	object := r.alloc(capi.Null, &typeObj{name: capi.TypeObject, flags: capi.TPFlagsBaseType}, flagImmortal)
	typ := r.alloc(capi.Null, &typeObj{
		name:  capi.TypeType,
		base:  object,
		flags: capi.TPFlagsBaseType | capi.TPFlagsTypeSubclass,
	}, flagImmortal)
	if object == capi.Null || typ == capi.Null {
		return errors.New(errors.PhaseRuntime, errors.KindAllocation).Detail("bootstrap type objects").Build()
	}
	for _, p := range []capi.Ptr{object, typ} {
		r.heap.setType(p, typ)
		r.mustWrite(r.headers.WriteU32(uint32(p)+objbridge.HeaderType, uint32(typ)))
	}
	r.typeType = typ
	r.types[capi.TypeObject] = object
	r.types[capi.TypeType] = typ

	for _, spec := range builtinTypes {
		if err := r.defineType(spec); err != nil {
			return err
		}
	}
	for _, spec := range exceptionTypes {
		if spec.major != 0 && spec.major != r.opts.Version.Major {
			continue
		}
		if spec.windows && !r.opts.Windows {
			continue
		}
		if err := r.defineType(spec); err != nil {
			return err
		}
	}

	r.none = r.alloc(r.types[capi.TypeNone], noneObj{}, flagImmortal)
	r.memErr = r.alloc(r.types["MemoryError"], &excObj{}, flagImmortal)
	if r.none == capi.Null || r.memErr == capi.Null {
		return errors.New(errors.PhaseRuntime, errors.KindAllocation).Detail("bootstrap singletons").Build()
	}
	return nil
}

func (r *Runtime) defineType(spec typeSpec) error {
	baseName := spec.base
	if baseName == stdBase {
		baseName = "Exception"
		if r.opts.Version.Major == 2 {
			baseName = "StandardError"
		}
	}
	base, ok := r.types[baseName]
	if !ok {
		return errors.NotFound(errors.PhaseRuntime, "base type", baseName)
	}

	if spec.alias {
		r.types[spec.name] = base
		return nil
	}

	p := r.newType(spec.name, base, spec.flags|capi.TPFlagsBaseType)
	if p == capi.Null {
		return errors.New(errors.PhaseRuntime, errors.KindAllocation).Detail("define type %s", spec.name).Build()
	}
	r.types[spec.name] = p
	return nil
}

func (r *Runtime) newType(name string, base capi.Ptr, flags capi.Flags) capi.Ptr {
	if bt, ok := r.typePayload(base); ok {
		flags |= bt.flags & capi.SubclassFlags
	}
	return r.alloc(r.typeType, &typeObj{name: name, base: base, flags: flags}, flagImmortal)
}

// NewType creates a heap type deriving from base and returns a borrowed,
// immortal reference to it. The type is not visible through StaticType.
func (r *Runtime) NewType(name string, base capi.Ptr) capi.Ptr {
	if _, ok := r.typePayload(base); !ok {
		r.ErrSetString(r.types["TypeError"], fmt.Sprintf("type() base must be a type, not %s", r.typeName(r.TypeOf(base))))
		return capi.Null
	}
	return r.newType(name, base, capi.TPFlagsHeapType|capi.TPFlagsBaseType)
}

// NewInstance creates a new reference to an empty instance of t. The
// payload follows t's builtin ancestry, so an instance of a list subtype
// is a list.
func (r *Runtime) NewInstance(t capi.Ptr) capi.Ptr {
	tt, ok := r.typePayload(t)
	if !ok {
		r.ErrSetString(r.types["TypeError"], "NewInstance requires a type")
		return capi.Null
	}

	var payload any
	switch {
	case tt.flags.Has(capi.TPFlagsListSubclass):
		payload = &listObj{}
	case tt.flags.Has(capi.TPFlagsDictSubclass):
		payload = newDictObj()
	case tt.flags.Has(capi.TPFlagsUnicodeSubclass):
		payload = &strObj{}
	case tt.flags.Has(capi.TPFlagsBaseExcSubclass):
		payload = &excObj{}
	case tt.flags.Has(capi.TPFlagsTypeSubclass):
		r.ErrSetString(r.types["TypeError"], "NewInstance cannot create types")
		return capi.Null
	case r.IsSubtype(t, r.types[capi.TypeModule]):
		d := r.DictNew()
		if d == capi.Null {
			return capi.Null
		}
		payload = &moduleObj{dict: d}
	case t == r.types[capi.TypeNone]:
		r.IncRef(r.none)
		return r.none
	default:
		payload = &instanceObj{}
	}
	return r.alloc(t, payload, 0)
}

func (r *Runtime) typePayload(t capi.Ptr) (*typeObj, bool) {
	if t == capi.Null {
		return nil, false
	}
	e, ok := r.heap.get(t)
	if !ok {
		return nil, false
	}
	tt, ok := e.payload.(*typeObj)
	return tt, ok
}

func (r *Runtime) typeName(t capi.Ptr) string {
	if tt, ok := r.typePayload(t); ok {
		return tt.name
	}
	return "?"
}

// TypeOf returns the borrowed type of p.
func (r *Runtime) TypeOf(p capi.Ptr) capi.Ptr {
	return r.entry(p).typ
}

// TypeFlags returns the flags of type t, or zero for a non-type.
func (r *Runtime) TypeFlags(t capi.Ptr) capi.Flags {
	r.entry(t)
	if tt, ok := r.typePayload(t); ok {
		return tt.flags
	}
	return 0
}

// TypeName returns the name of type t.
func (r *Runtime) TypeName(t capi.Ptr) string {
	r.entry(t)
	return r.typeName(t)
}

// IsSubtype reports whether a is b or derives from it.
func (r *Runtime) IsSubtype(a, b capi.Ptr) bool {
	for t := a; t != capi.Null; {
		if t == b {
			return true
		}
		tt, ok := r.typePayload(t)
		if !ok {
			return false
		}
		t = tt.base
	}
	return false
}

// IsInstance reports whether the type of p is t or a subtype of t.
func (r *Runtime) IsInstance(p, t capi.Ptr) bool {
	return r.IsSubtype(r.TypeOf(p), t)
}

// StaticType returns the borrowed builtin type registered under name. The
// table is fixed once New returns.
func (r *Runtime) StaticType(name string) capi.Ptr {
	return r.types[name]
}

// TypeNames returns the sorted names StaticType answers for.
func (r *Runtime) TypeNames() []string {
	names := make([]string, 0, len(r.types))
	for n := range r.types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
