// Package objbridge provides a safe Go layer over a foreign, reference-counted
// interpreter object model.
//
// The foreign runtime owns every object: it allocates them, keeps their
// reference counts and type slots, and holds the process-wide "current
// error". This library never reimplements that model. It wraps raw foreign
// addresses in owned handles that release their reference exactly once, and
// refines those handles into typed wrappers after checking the foreign type.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	objbridge/           Root package with the object header ABI
//	├── capi/            Capability surface consumed from the foreign runtime
//	├── object/          Owned handles, typed downcasts, category wrappers
//	├── memrt/           Reference foreign runtime on wazero linear memory
//	├── buildcfg/        Interpreter discovery and build flag probing
//	├── errors/          Structured error types for debugging
//	└── cmd/objtool/     Probe, demo and heap inspector CLI
//
// # Quick Start
//
// Create a runtime, open a session and work with objects:
//
//	rt, err := memrt.New(ctx, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	s := object.Acquire(rt)
//	defer s.Close()
//
//	mod, err := object.NewModule(s, "demo")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mod.Release()
//
//	name, _ := object.NewStr(s, "value")
//	defer name.Release()
//	if err := mod.Add("x", name); err != nil {
//	    log.Fatal(err)
//	}
//
// # Ownership
//
// Every *object.Object owns exactly one reference. Go has no destructors, so
// scope end is written as defer o.Release(). Operations that consume a handle
// (downcasts, List.SetItem, Steal) leave the source in a released state,
// which makes the deferred Release a no-op.
//
// # Thread Safety
//
// Nothing in object locks. A *object.Session stands for the runtime's
// exclusion token and must be used by one goroutine at a time. Acquire takes
// the runtime's own lock when the runtime provides one.
//
// # Object Header
//
// Runtimes that store object headers in a flat byte-addressed memory follow
// the layout described by HeaderSize and the Header* offsets: a 64-bit
// reference count followed by the 32-bit address of the type object.
package objbridge
