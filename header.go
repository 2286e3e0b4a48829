package objbridge

// Object header layout. Every object starts with a reference count
// followed by the address of its type object.
const (
	HeaderRefcnt uint32 = 0  // int64 reference count
	HeaderType   uint32 = 8  // uint32 address of the type object
	HeaderFlags  uint32 = 12 // uint32 runtime bookkeeping bits
	HeaderSize   uint32 = 16
)

// HeaderStore holds object headers in a flat, byte-addressed memory.
type HeaderStore interface {
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error

	// IncRef adds one to the reference count at offset.
	IncRef(offset uint32) error

	// DecRef subtracts one from the reference count at offset and returns the new count.
	DecRef(offset uint32) (int64, error)
}

// HeaderSizer provides the current size of the header store in bytes.
type HeaderSizer interface {
	Size() uint32
}

// HeaderGrower extends a header store.
type HeaderGrower interface {
	// Grow adds at least n bytes and returns the previous size.
	Grow(n uint32) (uint32, error)
}
