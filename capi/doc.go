// Package capi declares the capability surface objbridge consumes from a
// foreign interpreter runtime.
//
// The surface is deliberately small and mirrors the runtime's C-level
// conventions rather than Go ones:
//
//   - Functions that create objects return a new reference, or Null with
//     the runtime's current error set.
//   - Functions documented as "borrowed" return a reference owned elsewhere;
//     the caller must IncRef it to keep it.
//   - Functions documented as "steals" take over the caller's reference,
//     even when they fail.
//   - Functions returning int use 0 for success and -1 for failure with the
//     current error set.
//
// Nothing here is safe for concurrent use. Callers hold the runtime's
// exclusion token (see Locker) for the duration of every call.
package capi
