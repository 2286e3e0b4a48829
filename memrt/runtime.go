package memrt

import (
	"context"
	"fmt"
	goruntime "runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/wippyai/objbridge"
	"github.com/wippyai/objbridge/buildcfg"
	"github.com/wippyai/objbridge/capi"
	"github.com/wippyai/objbridge/errors"
)

// header flag bits
const flagImmortal uint32 = 1 << 0

// Options configures a Runtime.
type Options struct {
	// Modules maps importable module names to their __file__. An empty
	// file leaves __file__ unset, like a builtin module.
	Modules map[string]string

	// Registerer receives the runtime's Prometheus collectors. Nil keeps
	// them private.
	Registerer prometheus.Registerer

	// Version selects version-specific behavior: 2.x registers
	// StandardError and names the builtins module __builtin__.
	Version buildcfg.Version

	// MemoryLimitPages caps the header memory in 64KB pages.
	// 0 means the wazero default.
	MemoryLimitPages uint32

	// GIL makes Lock/Unlock take a runtime-wide mutex.
	GIL bool

	// RefDebug keeps a running total of all reference counts.
	RefDebug bool

	// TraceRefs logs every allocation and deallocation at debug level.
	TraceRefs bool

	// Windows registers WindowsError.
	Windows bool
}

// DefaultOptions returns options for a threaded 3.12 runtime on the host OS.
func DefaultOptions() Options {
	return Options{
		Version: buildcfg.Version{Major: 3, Minor: 12},
		GIL:     true,
		Windows: goruntime.GOOS == "windows",
	}
}

// OptionsFromConfig derives runtime options from a probed build
// configuration.
func OptionsFromConfig(cfg *buildcfg.Config) Options {
	opts := DefaultOptions()
	if cfg == nil {
		return opts
	}
	if !cfg.Version.IsZero() {
		opts.Version = cfg.Version
	}
	// WITH_THREAD is always on from 3.7 and no longer reported there.
	opts.GIL = cfg.Has("WITH_THREAD") || cfg.Version.Major >= 3
	opts.RefDebug = cfg.Has("Py_REF_DEBUG")
	opts.TraceRefs = cfg.Has("Py_TRACE_REFS")
	return opts
}

// Runtime is a minimal reference-counted object runtime. It implements
// capi.API and capi.Locker.
type Runtime struct {
	opts      Options
	headers   *wasmHeaders
	heap      *heap
	metrics   *metrics
	types     map[string]capi.Ptr
	registry  map[string]string
	imported  map[string]capi.Ptr
	observers []Observer
	err       errSlot
	typeType  capi.Ptr
	none      capi.Ptr
	memErr    capi.Ptr
	totalRefs atomic.Int64
	gil       sync.Mutex
	modMu     sync.Mutex
	obsMu     sync.RWMutex
	closed    atomic.Bool
}

var (
	_ capi.API    = (*Runtime)(nil)
	_ capi.Locker = (*Runtime)(nil)
)

// New creates a runtime. A nil opts uses DefaultOptions.
func New(ctx context.Context, opts *Options) (*Runtime, error) {
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	if o.Version.IsZero() {
		o.Version = DefaultOptions().Version
	}

	headers, err := newWasmHeaders(ctx, o.MemoryLimitPages)
	if err != nil {
		return nil, err
	}

	m, err := newMetrics(o.Registerer)
	if err != nil {
		_ = headers.Close(ctx)
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	r := &Runtime{
		opts:     o,
		headers:  headers,
		heap:     newHeap(),
		metrics:  m,
		types:    make(map[string]capi.Ptr),
		registry: make(map[string]string),
		imported: make(map[string]capi.Ptr),
	}

	if err := r.bootstrap(); err != nil {
		_ = headers.Close(ctx)
		return nil, err
	}

	r.registry[r.builtinsName()] = ""
	r.registry["sys"] = ""
	for name, file := range o.Modules {
		r.registry[name] = file
	}

	Logger().Debug("runtime created",
		zap.Stringer("version", o.Version),
		zap.Bool("gil", o.GIL),
		zap.Bool("ref_debug", o.RefDebug),
		zap.Int("types", len(r.types)))
	return r, nil
}

// Close releases the header memory. Every address handed out becomes
// invalid.
func (r *Runtime) Close(ctx context.Context) error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	Logger().Debug("runtime closing", zap.Int("live", r.heap.len()))
	r.heap.close()
	return r.headers.Close(ctx)
}

// Options returns the options the runtime was created with.
func (r *Runtime) Options() Options {
	return r.opts
}

// Lock takes the runtime lock when the GIL is enabled.
func (r *Runtime) Lock() {
	if r.opts.GIL {
		r.gil.Lock()
	}
}

// Unlock releases the runtime lock.
func (r *Runtime) Unlock() {
	if r.opts.GIL {
		r.gil.Unlock()
	}
}

// Live returns the number of allocated objects, immortals included.
func (r *Runtime) Live() int {
	return r.heap.len()
}

// TotalRefs returns the sum of all reference counts. It is only tracked
// with RefDebug.
func (r *Runtime) TotalRefs() (int64, bool) {
	return r.totalRefs.Load(), r.opts.RefDebug
}

// ObjectInfo is a snapshot of one live object.
type ObjectInfo struct {
	Type     string
	Repr     string
	Addr     capi.Ptr
	RefCount int64
	Immortal bool
}

// Objects returns a snapshot of every live object in address order.
func (r *Runtime) Objects() []ObjectInfo {
	addrs := r.heap.addrs()
	out := make([]ObjectInfo, 0, len(addrs))
	for _, p := range addrs {
		e, ok := r.heap.get(p)
		if !ok {
			continue
		}
		cnt, _ := r.headers.ReadU64(uint32(p) + objbridge.HeaderRefcnt)
		flags, _ := r.headers.ReadU32(uint32(p) + objbridge.HeaderFlags)
		out = append(out, ObjectInfo{
			Addr:     p,
			Type:     r.typeName(e.typ),
			RefCount: int64(cnt),
			Immortal: flags&flagImmortal != 0,
			Repr:     r.render(p, true),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Addr < out[j].Addr })
	return out
}

// alloc creates an object with a reference count of one. On memory
// exhaustion it sets MemoryError and returns Null.
func (r *Runtime) alloc(typ capi.Ptr, payload any, flags uint32) capi.Ptr {
	p := r.heap.create(typ, payload)
	if p == capi.Null {
		r.raiseMemoryError()
		return capi.Null
	}

	off := uint32(p)
	if err := r.ensure(off + objbridge.HeaderSize); err != nil {
		r.heap.drop(p)
		Logger().Warn("header memory exhausted", zap.Error(err))
		r.raiseMemoryError()
		return capi.Null
	}

	r.mustWrite(r.headers.WriteU64(off+objbridge.HeaderRefcnt, 1))
	r.mustWrite(r.headers.WriteU32(off+objbridge.HeaderType, uint32(typ)))
	r.mustWrite(r.headers.WriteU32(off+objbridge.HeaderFlags, flags))

	if r.opts.RefDebug {
		r.totalRefs.Add(1)
	}
	name := r.typeName(typ)
	r.metrics.allocated(name)
	if r.opts.TraceRefs {
		Logger().Debug("alloc", zap.String("type", name), zap.Uint64("addr", uint64(p)))
	}
	r.notify(Event{Type: EventAllocated, Addr: p, TypeName: name})
	return p
}

func (r *Runtime) ensure(end uint32) error {
	size := r.headers.Size()
	if end <= size {
		return nil
	}
	_, err := r.headers.Grow(end - size)
	return err
}

func (r *Runtime) mustWrite(err error) {
	if err != nil {
		Logger().Error("header write failed", zap.Error(err))
		panic(errors.Wrap(errors.PhaseRuntime, errors.KindInvalidData, err, "write object header"))
	}
}

// entry returns the slot for a live object, panicking on a dangling
// address.
func (r *Runtime) entry(p capi.Ptr) entry {
	e, ok := r.heap.get(p)
	if !ok {
		err := errors.UseAfterRelease(uint64(p))
		Logger().Error("access to dead object", zap.Uint64("addr", uint64(p)))
		panic(err)
	}
	return e
}

// IncRef adds one reference to p.
func (r *Runtime) IncRef(p capi.Ptr) {
	r.entry(p)
	if err := r.headers.IncRef(uint32(p)); err != nil {
		panic(errors.Wrap(errors.PhaseRefcount, errors.KindInvalidData, err, "incref"))
	}
	r.metrics.increfs.Inc()
	if r.opts.RefDebug {
		r.totalRefs.Add(1)
	}
}

// DecRef drops one reference to p and deallocates it at zero.
func (r *Runtime) DecRef(p capi.Ptr) {
	r.entry(p)
	n, err := r.headers.DecRef(uint32(p))
	if err != nil {
		panic(errors.Wrap(errors.PhaseRefcount, errors.KindInvalidData, err, "decref"))
	}
	r.metrics.decrefs.Inc()
	if r.opts.RefDebug {
		r.totalRefs.Add(-1)
	}

	if n > 0 {
		return
	}

	flags, _ := r.headers.ReadU32(uint32(p) + objbridge.HeaderFlags)
	if n < 0 || flags&flagImmortal != 0 {
		Logger().Error("reference count underflow",
			zap.Uint64("addr", uint64(p)),
			zap.Int64("refcnt", n),
			zap.Bool("immortal", flags&flagImmortal != 0))
		panic(errors.DoubleRelease(uint64(p)))
	}
	r.dealloc(p)
}

// RefCount returns the current reference count of p.
func (r *Runtime) RefCount(p capi.Ptr) int64 {
	r.entry(p)
	v, err := r.headers.ReadU64(uint32(p) + objbridge.HeaderRefcnt)
	if err != nil {
		panic(errors.Wrap(errors.PhaseRefcount, errors.KindInvalidData, err, "read refcount"))
	}
	return int64(v)
}

func (r *Runtime) dealloc(p capi.Ptr) {
	e, ok := r.heap.drop(p)
	if !ok {
		return
	}

	name := r.typeName(e.typ)
	r.metrics.deallocated(name)
	if r.opts.TraceRefs {
		Logger().Debug("dealloc", zap.String("type", name), zap.Uint64("addr", uint64(p)))
	}
	r.notify(Event{Type: EventDeallocated, Addr: p, TypeName: name})

	for _, child := range children(e.payload) {
		if child != capi.Null {
			r.DecRef(child)
		}
	}
}
