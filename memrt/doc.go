// Package memrt is a small reference-counted object runtime that provides
// the capi surface without an installed interpreter.
//
// Object headers live in the linear memory of a tiny WebAssembly module
// run by wazero. Each header is 16 bytes:
//
//	+0   int64   reference count
//	+8   uint32  address of the type object
//	+12  uint32  flags (immortal)
//
// The module exports incref and decref, so every reference count change
// executes as a WASM call against the header. Addresses handed out through
// capi.Ptr are header offsets; the payload of each object (list items,
// dict entries, text bytes) is kept on the Go side in a slot table keyed by
// the same offset.
//
// # What is provided
//
//   - type, object, NoneType, str, list, dict and module
//   - the builtin exception hierarchy, including StandardError on 2.x and
//     WindowsError when Options.Windows is set
//   - a pending-error slot with fetch/restore semantics
//   - import of registered modules
//
// It does not execute code. Callers create objects through capi calls, or
// through NewType and NewInstance when a test needs a user-defined type.
//
// # Contract checking
//
// Using an address after its object was freed panics with an
// errors.KindUseAfterRelease error. Dropping a count below zero, or to zero
// on an immortal object, panics with errors.KindDoubleRelease.
//
// # Usage
//
//	rt, err := memrt.New(ctx, nil)
//	if err != nil {
//	    return err
//	}
//	defer rt.Close(ctx)
//
//	sess := object.Acquire(rt)
//	defer sess.Close()
//
// Lifecycle events are available through Subscribe, Prometheus collectors
// through Options.Registerer.
package memrt
