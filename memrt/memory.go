package memrt

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/objbridge"
)

const pageSize = 65536

// headerWasm exports a memory and the two refcount primitives:
//
//	(func $incref (param $p i32)
//	  (i64.store (local.get $p) (i64.add (i64.load (local.get $p)) (i64.const 1))))
//	(func $decref (param $p i32) (result i64) (local $n i64)
//	  (i64.store (local.get $p)
//	    (local.tee $n (i64.sub (i64.load (local.get $p)) (i64.const 1))))
//	  (local.get $n))
var headerWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	// type section: (i32)->(), (i32)->i64
	0x01, 0x0a, 0x02,
	0x60, 0x01, 0x7f, 0x00,
	0x60, 0x01, 0x7f, 0x01, 0x7e,
	// function section
	0x03, 0x03, 0x02, 0x00, 0x01,
	// memory section: min 1 page
	0x05, 0x03, 0x01, 0x00, 0x01,
	// export section
	0x07, 0x1c, 0x03,
	0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
	0x06, 'i', 'n', 'c', 'r', 'e', 'f', 0x00, 0x00,
	0x06, 'd', 'e', 'c', 'r', 'e', 'f', 0x00, 0x01,
	// code section
	0x0a, 0x27, 0x02,
	0x0f, 0x00,
	0x20, 0x00, 0x20, 0x00, 0x29, 0x03, 0x00, 0x42, 0x01, 0x7c, 0x37, 0x03, 0x00, 0x0b,
	0x15, 0x01, 0x01, 0x7e,
	0x20, 0x00, 0x20, 0x00, 0x29, 0x03, 0x00, 0x42, 0x01, 0x7d, 0x22, 0x01, 0x37, 0x03, 0x00,
	0x20, 0x01, 0x0b,
}

var (
	_ objbridge.HeaderStore  = (*wasmHeaders)(nil)
	_ objbridge.HeaderSizer  = (*wasmHeaders)(nil)
	_ objbridge.HeaderGrower = (*wasmHeaders)(nil)
)

// wasmHeaders keeps object headers in a wazero linear memory. Refcount
// updates run inside the module so the count is only ever written by the
// exported primitives.
type wasmHeaders struct {
	ctx    context.Context
	rt     wazero.Runtime
	mod    api.Module
	mem    api.Memory
	incref api.Function
	decref api.Function
	mu     sync.Mutex
}

func newWasmHeaders(ctx context.Context, limitPages uint32) (*wasmHeaders, error) {
	cfg := wazero.NewRuntimeConfig()
	if limitPages > 0 {
		cfg = cfg.WithMemoryLimitPages(limitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)

	mod, err := rt.Instantiate(ctx, headerWasm)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("instantiate header module: %w", err)
	}

	h := &wasmHeaders{
		ctx:    ctx,
		rt:     rt,
		mod:    mod,
		mem:    mod.Memory(),
		incref: mod.ExportedFunction("incref"),
		decref: mod.ExportedFunction("decref"),
	}
	if h.mem == nil || h.incref == nil || h.decref == nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("header module is missing exports")
	}
	return h, nil
}

func (h *wasmHeaders) ReadU32(offset uint32) (uint32, error) {
	v, ok := h.mem.ReadUint32Le(offset)
	if !ok {
		return 0, h.outOfRange(offset, 4)
	}
	return v, nil
}

func (h *wasmHeaders) ReadU64(offset uint32) (uint64, error) {
	v, ok := h.mem.ReadUint64Le(offset)
	if !ok {
		return 0, h.outOfRange(offset, 8)
	}
	return v, nil
}

func (h *wasmHeaders) WriteU32(offset uint32, value uint32) error {
	if !h.mem.WriteUint32Le(offset, value) {
		return h.outOfRange(offset, 4)
	}
	return nil
}

func (h *wasmHeaders) WriteU64(offset uint32, value uint64) error {
	if !h.mem.WriteUint64Le(offset, value) {
		return h.outOfRange(offset, 8)
	}
	return nil
}

func (h *wasmHeaders) IncRef(offset uint32) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.incref.Call(h.ctx, uint64(offset)); err != nil {
		return fmt.Errorf("incref 0x%x: %w", offset, err)
	}
	return nil
}

func (h *wasmHeaders) DecRef(offset uint32) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	res, err := h.decref.Call(h.ctx, uint64(offset))
	if err != nil {
		return 0, fmt.Errorf("decref 0x%x: %w", offset, err)
	}
	return int64(res[0]), nil
}

func (h *wasmHeaders) Size() uint32 {
	return h.mem.Size()
}

// Grow adds enough pages for n more bytes.
func (h *wasmHeaders) Grow(n uint32) (uint32, error) {
	prev := h.mem.Size()
	pages := (n + pageSize - 1) / pageSize
	if _, ok := h.mem.Grow(pages); !ok {
		return prev, fmt.Errorf("grow header memory by %d pages: limit reached", pages)
	}
	return prev, nil
}

func (h *wasmHeaders) Close(ctx context.Context) error {
	return h.rt.Close(ctx)
}

func (h *wasmHeaders) outOfRange(offset, n uint32) error {
	return fmt.Errorf("header access [0x%x, 0x%x) outside memory of %d bytes", offset, offset+n, h.mem.Size())
}
