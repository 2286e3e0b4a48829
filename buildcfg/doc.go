// Package buildcfg discovers an installed interpreter and the compile-time
// configuration it was built with.
//
// The wrapper layer never depends on this package at run time. It exists to
// answer "does flag X hold" for the interpreter a program is built against:
// which exception variants exist, whether the runtime has an exclusion
// token, which debug bookkeeping is compiled in, and how to link to it.
//
// # Discovery
//
// Prober looks for the interpreter the way a build script would:
//
//  1. pkg-config's exec_prefix for python-X.Y, trying bin/pythonX.Y,
//     bin/pythonX and bin/python under it.
//  2. The python found on PATH, whose version must match.
//
// Setting PYTHON_X.Y_NO_PKG_CONFIG skips step 1.
//
// # Flags
//
// The sysconfig variables of interest are listed in SysconfigFlags (boolean)
// and SysconfigValues (valued). Valued entries are exposed as named flags by
// suffixing the value, so Py_UNICODE_SIZE=4 becomes Py_UNICODE_SIZE_4:
//
//	cfg, err := buildcfg.NewProber().Probe(ctx, buildcfg.Version{Major: 3, Minor: 12})
//	if cfg.Has("WITH_THREAD") {
//	    ...
//	}
//
// A probed Config round-trips through YAML so it can be cached next to a
// build and validated on load.
package buildcfg
