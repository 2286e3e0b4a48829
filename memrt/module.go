package memrt

import (
	"bytes"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/wippyai/objbridge/capi"
)

func (r *Runtime) builtinsName() string {
	if r.opts.Version.Major == 2 {
		return "__builtin__"
	}
	return "builtins"
}

// RegisterModule makes name importable. file becomes the module's
// __file__ unless empty.
func (r *Runtime) RegisterModule(name, file string) {
	r.modMu.Lock()
	defer r.modMu.Unlock()
	r.registry[name] = file
}

// ModuleNew returns a new module with __name__ set and an otherwise empty
// namespace.
func (r *Runtime) ModuleNew(name string) capi.Ptr {
	d := r.DictNew()
	if d == capi.Null {
		return capi.Null
	}

	nameObj := r.UnicodeFromString(name)
	if nameObj == capi.Null {
		r.DecRef(d)
		return capi.Null
	}
	r.DictSetItemString(d, "__name__", nameObj)
	r.DecRef(nameObj)
	r.DictSetItemString(d, "__doc__", r.none)
	r.DictSetItemString(d, "__package__", r.none)

	m := r.alloc(r.types[capi.TypeModule], &moduleObj{dict: d}, 0)
	if m == capi.Null {
		r.DecRef(d)
	}
	return m
}

// ImportModule returns a new reference to a registered module. The first
// import creates it; the runtime keeps it alive until Close.
func (r *Runtime) ImportModule(name string) capi.Ptr {
	r.modMu.Lock()
	defer r.modMu.Unlock()

	if m, ok := r.imported[name]; ok {
		r.IncRef(m)
		return m
	}

	file, ok := r.registry[name]
	if !ok {
		if r.opts.Version.Major == 2 {
			r.raise("ImportError", "No module named %s", name)
		} else {
			r.raise("ModuleNotFoundError", "No module named '%s'", name)
		}
		return capi.Null
	}

	m := r.ModuleNew(name)
	if m == capi.Null {
		return capi.Null
	}
	if file != "" {
		f := r.UnicodeFromString(file)
		if f == capi.Null {
			r.DecRef(m)
			return capi.Null
		}
		r.SetAttrString(m, "__file__", f)
		r.DecRef(f)
	}

	Logger().Debug("imported module", zap.String("name", name), zap.String("file", file))
	r.imported[name] = m
	r.IncRef(m)
	return m
}

func (r *Runtime) modulePayload(m capi.Ptr) (*moduleObj, bool) {
	mod, ok := r.entry(m).payload.(*moduleObj)
	return mod, ok
}

// ModuleGetDict returns a borrowed reference to the module namespace.
func (r *Runtime) ModuleGetDict(m capi.Ptr) capi.Ptr {
	mod, ok := r.modulePayload(m)
	if !ok {
		r.badInternalCall()
		return capi.Null
	}
	return mod.dict
}

// ModuleGetName returns the raw bytes of __name__.
func (r *Runtime) ModuleGetName(m capi.Ptr) []byte {
	return r.moduleText(m, "__name__", "nameless module")
}

// ModuleGetFilename returns the raw bytes of __file__.
func (r *Runtime) ModuleGetFilename(m capi.Ptr) []byte {
	return r.moduleText(m, "__file__", "module filename missing")
}

func (r *Runtime) moduleText(m capi.Ptr, key, missing string) []byte {
	mod, ok := r.modulePayload(m)
	if !ok {
		r.badArgument()
		return nil
	}
	b, ok := r.dictText(mod.dict, key)
	if !ok {
		r.raise("SystemError", "%s", missing)
		return nil
	}
	return bytes.Clone(b)
}

// Modules returns the sorted names of the modules imported so far.
func (r *Runtime) Modules() []string {
	r.modMu.Lock()
	defer r.modMu.Unlock()
	names := make([]string, 0, len(r.imported))
	for n := range r.imported {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Runtime) String() string {
	return fmt.Sprintf("memrt %s (%d objects)", r.opts.Version, r.heap.len())
}
