package object

import (
	"github.com/wippyai/objbridge/capi"
)

// ExcKind names a builtin exception type. Kinds are zero-size tags used to
// instantiate Exc.
type ExcKind interface {
	ExcName() string
}

// Exc wraps an instance of the builtin exception type named by K. The check
// is an instance test against that type, never a flag test, so subclasses
// defined in the runtime match too.
type Exc[K ExcKind] struct {
	Object
}

func (*Exc[K]) typeName() string {
	var k K
	return k.ExcName()
}

func (*Exc[K]) matches(api capi.API, p capi.Ptr) bool {
	var k K
	t := api.StaticType(k.ExcName())
	return t != capi.Null && api.IsInstance(p, t)
}

type (
	BaseExceptionKind         struct{}
	ExceptionKind             struct{}
	StandardErrorKind         struct{}
	ArithmeticErrorKind       struct{}
	AssertionErrorKind        struct{}
	AttributeErrorKind        struct{}
	EOFErrorKind              struct{}
	EnvironmentErrorKind      struct{}
	FloatingPointErrorKind    struct{}
	IOErrorKind               struct{}
	ImportErrorKind           struct{}
	ModuleNotFoundErrorKind   struct{}
	IndexErrorKind            struct{}
	KeyErrorKind              struct{}
	KeyboardInterruptKind     struct{}
	LookupErrorKind           struct{}
	MemoryErrorKind           struct{}
	NameErrorKind             struct{}
	NotImplementedErrorKind   struct{}
	OSErrorKind               struct{}
	OverflowErrorKind         struct{}
	ReferenceErrorKind        struct{}
	RuntimeErrorKind          struct{}
	SyntaxErrorKind           struct{}
	SystemErrorKind           struct{}
	SystemExitKind            struct{}
	TypeErrorKind             struct{}
	ValueErrorKind            struct{}
	ZeroDivisionErrorKind     struct{}
	UnicodeErrorKind          struct{}
	UnicodeDecodeErrorKind    struct{}
	UnicodeEncodeErrorKind    struct{}
	UnicodeTranslateErrorKind struct{}
)

func (BaseExceptionKind) ExcName() string         { return "BaseException" }
func (ExceptionKind) ExcName() string             { return "Exception" }
func (StandardErrorKind) ExcName() string         { return "StandardError" }
func (ArithmeticErrorKind) ExcName() string       { return "ArithmeticError" }
func (AssertionErrorKind) ExcName() string        { return "AssertionError" }
func (AttributeErrorKind) ExcName() string        { return "AttributeError" }
func (EOFErrorKind) ExcName() string              { return "EOFError" }
func (EnvironmentErrorKind) ExcName() string      { return "EnvironmentError" }
func (FloatingPointErrorKind) ExcName() string    { return "FloatingPointError" }
func (IOErrorKind) ExcName() string               { return "IOError" }
func (ImportErrorKind) ExcName() string           { return "ImportError" }
func (ModuleNotFoundErrorKind) ExcName() string   { return "ModuleNotFoundError" }
func (IndexErrorKind) ExcName() string            { return "IndexError" }
func (KeyErrorKind) ExcName() string              { return "KeyError" }
func (KeyboardInterruptKind) ExcName() string     { return "KeyboardInterrupt" }
func (LookupErrorKind) ExcName() string           { return "LookupError" }
func (MemoryErrorKind) ExcName() string           { return "MemoryError" }
func (NameErrorKind) ExcName() string             { return "NameError" }
func (NotImplementedErrorKind) ExcName() string   { return "NotImplementedError" }
func (OSErrorKind) ExcName() string               { return "OSError" }
func (OverflowErrorKind) ExcName() string         { return "OverflowError" }
func (ReferenceErrorKind) ExcName() string        { return "ReferenceError" }
func (RuntimeErrorKind) ExcName() string          { return "RuntimeError" }
func (SyntaxErrorKind) ExcName() string           { return "SyntaxError" }
func (SystemErrorKind) ExcName() string           { return "SystemError" }
func (SystemExitKind) ExcName() string            { return "SystemExit" }
func (TypeErrorKind) ExcName() string             { return "TypeError" }
func (ValueErrorKind) ExcName() string            { return "ValueError" }
func (ZeroDivisionErrorKind) ExcName() string     { return "ZeroDivisionError" }
func (UnicodeErrorKind) ExcName() string          { return "UnicodeError" }
func (UnicodeDecodeErrorKind) ExcName() string    { return "UnicodeDecodeError" }
func (UnicodeEncodeErrorKind) ExcName() string    { return "UnicodeEncodeError" }
func (UnicodeTranslateErrorKind) ExcName() string { return "UnicodeTranslateError" }

type (
	BaseException         = Exc[BaseExceptionKind]
	Exception             = Exc[ExceptionKind]
	StandardError         = Exc[StandardErrorKind] // 2.x only
	ArithmeticError       = Exc[ArithmeticErrorKind]
	AssertionError        = Exc[AssertionErrorKind]
	AttributeError        = Exc[AttributeErrorKind]
	EOFError              = Exc[EOFErrorKind]
	EnvironmentError      = Exc[EnvironmentErrorKind]
	FloatingPointError    = Exc[FloatingPointErrorKind]
	IOError               = Exc[IOErrorKind]
	ImportError           = Exc[ImportErrorKind]
	ModuleNotFoundError   = Exc[ModuleNotFoundErrorKind] // 3.x only
	IndexError            = Exc[IndexErrorKind]
	KeyError              = Exc[KeyErrorKind]
	KeyboardInterrupt     = Exc[KeyboardInterruptKind]
	LookupError           = Exc[LookupErrorKind]
	MemoryError           = Exc[MemoryErrorKind]
	NameError             = Exc[NameErrorKind]
	NotImplementedError   = Exc[NotImplementedErrorKind]
	OSError               = Exc[OSErrorKind]
	OverflowError         = Exc[OverflowErrorKind]
	ReferenceError        = Exc[ReferenceErrorKind]
	RuntimeError          = Exc[RuntimeErrorKind]
	SyntaxError           = Exc[SyntaxErrorKind]
	SystemError           = Exc[SystemErrorKind]
	SystemExit            = Exc[SystemExitKind]
	TypeError             = Exc[TypeErrorKind]
	ValueError            = Exc[ValueErrorKind]
	ZeroDivisionError     = Exc[ZeroDivisionErrorKind]
	UnicodeError          = Exc[UnicodeErrorKind]
	UnicodeEncodeError    = Exc[UnicodeEncodeErrorKind]
	UnicodeTranslateError = Exc[UnicodeTranslateErrorKind]
)

var excKinds = []ExcKind{
	BaseExceptionKind{},
	ExceptionKind{},
	StandardErrorKind{},
	ArithmeticErrorKind{},
	AssertionErrorKind{},
	AttributeErrorKind{},
	EOFErrorKind{},
	EnvironmentErrorKind{},
	FloatingPointErrorKind{},
	IOErrorKind{},
	ImportErrorKind{},
	ModuleNotFoundErrorKind{},
	IndexErrorKind{},
	KeyErrorKind{},
	KeyboardInterruptKind{},
	LookupErrorKind{},
	MemoryErrorKind{},
	NameErrorKind{},
	NotImplementedErrorKind{},
	OSErrorKind{},
	OverflowErrorKind{},
	ReferenceErrorKind{},
	RuntimeErrorKind{},
	SyntaxErrorKind{},
	SystemErrorKind{},
	SystemExitKind{},
	TypeErrorKind{},
	ValueErrorKind{},
	ZeroDivisionErrorKind{},
	UnicodeErrorKind{},
	UnicodeDecodeErrorKind{},
	UnicodeEncodeErrorKind{},
	UnicodeTranslateErrorKind{},
}

// ExceptionNames lists the exception types wrapped by this package. A
// runtime may lack some of them; TypeObject returns nil for those.
func ExceptionNames() []string {
	names := make([]string, len(excKinds))
	for i, k := range excKinds {
		names[i] = k.ExcName()
	}
	return names
}

// NewError creates an exception of kind K carrying msg. Any pending error
// is replaced.
func NewError[K ExcKind](s *Session, msg string) *Err {
	var k K
	api := s.check()
	t := api.StaticType(k.ExcName())
	if t == capi.Null {
		t = api.StaticType(SystemErrorKind{}.ExcName())
		msg = "runtime has no " + k.ExcName() + ": " + msg
	}
	api.ErrSetString(t, msg)
	return Fetch(s)
}

// Raise sets the pending error to an exception of kind K.
func Raise[K ExcKind](s *Session, msg string) {
	NewError[K](s, msg).Restore()
}
