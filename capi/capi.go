package capi

// Ptr is the address of a foreign object. Null is never a live object.
type Ptr uintptr

// Null is the null address used by foreign calls to signal failure.
const Null Ptr = 0

// Flags are the type flag bits a runtime keeps per type object.
type Flags uint64

// Fast-subclass flags. A type carries the bit when it is, or derives from,
// the corresponding builtin type, so membership is one mask test.
const (
	TPFlagsHeapType        Flags = 1 << 9
	TPFlagsBaseType        Flags = 1 << 10
	TPFlagsLongSubclass    Flags = 1 << 24
	TPFlagsListSubclass    Flags = 1 << 25
	TPFlagsTupleSubclass   Flags = 1 << 26
	TPFlagsBytesSubclass   Flags = 1 << 27
	TPFlagsUnicodeSubclass Flags = 1 << 28
	TPFlagsDictSubclass    Flags = 1 << 29
	TPFlagsBaseExcSubclass Flags = 1 << 30
	TPFlagsTypeSubclass    Flags = 1 << 31
)

// SubclassFlags are inherited by every subtype.
const SubclassFlags = TPFlagsLongSubclass | TPFlagsListSubclass | TPFlagsTupleSubclass |
	TPFlagsBytesSubclass | TPFlagsUnicodeSubclass | TPFlagsDictSubclass |
	TPFlagsBaseExcSubclass | TPFlagsTypeSubclass

// Has reports whether all bits of mask are set.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

// Names of the builtin type objects every runtime must provide through
// StaticType. Exception types are looked up by their own names.
const (
	TypeObject = "object"
	TypeType   = "type"
	TypeNone   = "NoneType"
	TypeStr    = "str"
	TypeList   = "list"
	TypeDict   = "dict"
	TypeModule = "module"
)

// RefCounter manipulates reference counts.
type RefCounter interface {
	IncRef(p Ptr)
	DecRef(p Ptr)
	RefCount(p Ptr) int64
}

// TypeSystem answers type questions about objects.
type TypeSystem interface {
	// TypeOf returns the borrowed type object of p.
	TypeOf(p Ptr) Ptr
	TypeFlags(t Ptr) Flags
	TypeName(t Ptr) string
	IsSubtype(a, b Ptr) bool
	// IsInstance reports whether the type of p is t or a subtype of t.
	IsInstance(p, t Ptr) bool
	// StaticType returns the borrowed, immortal type object registered under
	// name, or Null if this runtime does not provide it.
	StaticType(name string) Ptr
}

// ErrorState is the runtime's process-wide current error slot.
type ErrorState interface {
	// ErrOccurred returns the borrowed type of the pending error, or Null.
	ErrOccurred() Ptr
	// ErrFetch returns new references to the pending error and clears the slot.
	// Any of the three may be Null.
	ErrFetch() (typ, value, traceback Ptr)
	// ErrRestore steals all three references into the slot.
	ErrRestore(typ, value, traceback Ptr)
	ErrSetString(typ Ptr, msg string)
	ErrSetObject(typ, value Ptr)
	ErrClear()
}

// Objects covers the generic object protocol.
type Objects interface {
	// None returns the borrowed None singleton.
	None() Ptr
	ObjectStr(p Ptr) Ptr
	GetAttrString(p Ptr, name string) Ptr
	SetAttrString(p Ptr, name string, v Ptr) int
}

// DecodeErrorInfo describes a text decoding failure.
type DecodeErrorInfo struct {
	Encoding string
	Reason   string
	Object   []byte
	Start    int
	End      int
}

// Text covers text objects and text codec errors.
type Text interface {
	UnicodeFromString(s string) Ptr
	// UnicodeAsUTF8 returns the runtime's encoded bytes of a text object.
	// The bytes are not validated.
	UnicodeAsUTF8(p Ptr) []byte
	UnicodeDecodeErrorCreate(encoding string, input []byte, start, end int, reason string) Ptr
	UnicodeDecodeErrorInfo(p Ptr) (DecodeErrorInfo, bool)
}

// Sequences covers list objects.
type Sequences interface {
	ListNew(n int) Ptr
	ListSize(p Ptr) int
	// ListGetItem returns a borrowed reference.
	ListGetItem(p Ptr, i int) Ptr
	// ListSetItem steals v.
	ListSetItem(p Ptr, i int, v Ptr) int
	ListInsert(p Ptr, i int, v Ptr) int
	ListAppend(p Ptr, v Ptr) int
}

// Mappings covers dict objects with text keys.
type Mappings interface {
	DictNew() Ptr
	DictSize(d Ptr) int
	// DictGetItemString returns a borrowed reference, or Null without
	// setting an error when key is absent.
	DictGetItemString(d Ptr, key string) Ptr
	DictSetItemString(d Ptr, key string, v Ptr) int
}

// Modules covers module objects and import.
type Modules interface {
	ModuleNew(name string) Ptr
	ImportModule(name string) Ptr
	// ModuleGetDict returns a borrowed reference to the module namespace.
	ModuleGetDict(m Ptr) Ptr
	ModuleGetName(m Ptr) []byte
	ModuleGetFilename(m Ptr) []byte
}

// API is the full capability surface.
type API interface {
	RefCounter
	TypeSystem
	ErrorState
	Objects
	Text
	Sequences
	Mappings
	Modules
}

// Locker is implemented by runtimes that provide their own exclusion
// token. Holding the lock is the precondition for every API call.
type Locker interface {
	Lock()
	Unlock()
}
