// Package object provides owned handles and typed wrappers over a foreign,
// reference-counted object model reached through capi.
//
// # Ownership
//
// An *Object owns exactly one reference. Handles are created by adopting a
// new reference (FromOwned), by taking one on a borrowed address
// (FromBorrowed) or by cloning (Clone), and give it up exactly once through
// Release, Steal, or an operation that consumes them:
//
//	s := object.Acquire(rt)
//	defer s.Close()
//
//	o := object.FromOwned(s, rt.UnicodeFromString("x"))
//	defer o.Release()
//
// Consuming operations leave the handle released, so the deferred Release
// above is safe even if o is later moved into a list.
//
// # Typed wrappers
//
// List, Dict, Str, Module, Type and the exception wrappers embed Object and
// add operations of their category. Conversions come in four forms:
//
//	Cast[T](o)            checked, consumes o
//	CastAs[T](o)          checked, returns a view, o untouched
//	UncheckedCast[T](o)   caller-proven, consumes o
//	UncheckedCastAs[T](o) caller-proven view
//
// A failed checked cast returns a *DowncastError; Cast also releases o.
//
// List, Dict, Str and Type are checked with the runtime's fast-subclass
// flags. Module and every exception wrapper are checked with an instance
// test against their builtin type.
//
// # Exceptions
//
// Exc[K] wraps an instance of the builtin exception named by the kind tag K.
// The aliases TypeError, ValueError, ... cover the builtin hierarchy:
//
//	te, err := object.Cast[object.TypeError](o)
//
// Foreign failures surface as *Err, taken from the runtime's error slot by
// Fetch. Use ErrMatches to test the exception kind and Restore to hand the
// exception back to the runtime.
//
// # Fatal errors
//
// Out-of-range list indices, null addresses, use of a released handle and
// use of a closed session are caller bugs. They are logged and then panic
// with a *ContractViolation.
package object
