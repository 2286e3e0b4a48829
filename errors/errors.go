package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDowncast Phase = "downcast" // typed-view checks
	PhaseDecode   Phase = "decode"   // foreign text to Go text
	PhaseForeign  Phase = "foreign"  // error reported by the foreign runtime
	PhaseRefcount Phase = "refcount" // reference count bookkeeping
	PhaseContract Phase = "contract" // caller broke an API precondition
	PhaseRuntime  Phase = "runtime"  // reference runtime operations
	PhaseProbe    Phase = "probe"    // interpreter discovery
	PhaseConfig   Phase = "config"   // build configuration handling
)

// Kind categorizes the error
type Kind string

const (
	KindTypeMismatch     Kind = "type_mismatch"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindInvalidData      Kind = "invalid_data"
	KindInvalidUTF8      Kind = "invalid_utf8"
	KindNilPointer       Kind = "nil_pointer"
	KindDoubleRelease    Kind = "double_release"
	KindUseAfterRelease  Kind = "use_after_release"
	KindSessionClosed    Kind = "session_closed"
	KindForeignException Kind = "foreign_exception"
	KindUnexpectedStatus Kind = "unexpected_status"
	KindNotFound         Kind = "not_found"
	KindInvalidInput     Kind = "invalid_input"
	KindAllocation       Kind = "allocation"
	KindProbeFailed      Kind = "probe_failed"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value       any
	Cause       error
	Phase       Phase
	Kind        Kind
	GoType      string
	ForeignType string
	Detail      string
	Path        []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.ForeignType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.ForeignType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", foreign type ")
			b.WriteString(e.ForeignType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("foreign type ")
			b.WriteString(e.ForeignType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.ForeignType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the attribute path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// ForeignType sets the foreign type name
func (b *Builder) ForeignType(t string) *Builder {
	b.err.ForeignType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TypeMismatch creates a failed downcast error
func TypeMismatch(expected, actual string) *Error {
	return &Error{
		Phase:       PhaseDowncast,
		Kind:        KindTypeMismatch,
		GoType:      expected,
		ForeignType: actual,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error. ValidUpTo is the length of
// the longest valid prefix.
func InvalidUTF8(path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence at byte %d: %x", ValidUpTo(data), preview),
		Value:  ValidUpTo(data),
	}
}

// ValidUpTo returns the length of the longest prefix of data that is
// valid UTF-8.
func ValidUpTo(data []byte) int {
	i := 0
	for i < len(data) {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return i
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(path []string, index, length int) *Error {
	return &Error{
		Phase:  PhaseContract,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// NilPointer creates a null handle error
func NilPointer(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Detail: fmt.Sprintf("null %s", what),
	}
}

// DoubleRelease creates an error for a reference released below zero
func DoubleRelease(addr uint64) *Error {
	return &Error{
		Phase:  PhaseRefcount,
		Kind:   KindDoubleRelease,
		Detail: fmt.Sprintf("reference count of 0x%x dropped below zero", addr),
		Value:  addr,
	}
}

// UseAfterRelease creates an error for access to a freed object
func UseAfterRelease(addr uint64) *Error {
	return &Error{
		Phase:  PhaseRefcount,
		Kind:   KindUseAfterRelease,
		Detail: fmt.Sprintf("object 0x%x is not live", addr),
		Value:  addr,
	}
}

// UnexpectedStatus creates an error for a foreign call that reported a
// failure status where the contract rules one out.
func UnexpectedStatus(call string, status int) *Error {
	return &Error{
		Phase:  PhaseContract,
		Kind:   KindUnexpectedStatus,
		Detail: fmt.Sprintf("%s returned %d", call, status),
		Value:  status,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// ProbeFailed creates an interpreter discovery error
func ProbeFailed(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseProbe,
		Kind:   KindProbeFailed,
		Detail: detail,
		Cause:  cause,
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
