// Package errors provides structured error types for objbridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: attribute path, Go/foreign type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDowncast, errors.KindTypeMismatch).
//		GoType("*object.List").
//		ForeignType("str").
//		Detail("object is not a list").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch("list", "str")
//	err := errors.OutOfBounds([]string{"items"}, 10, 5)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
