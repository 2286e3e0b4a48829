package memrt

import (
	"bytes"

	"github.com/wippyai/objbridge/capi"
)

// UnicodeFromString returns a new str holding the bytes of s as given.
func (r *Runtime) UnicodeFromString(s string) capi.Ptr {
	return r.alloc(r.types[capi.TypeStr], &strObj{data: []byte(s)}, 0)
}

// UnicodeAsUTF8 returns a copy of the bytes of str p. The bytes are not
// validated.
func (r *Runtime) UnicodeAsUTF8(p capi.Ptr) []byte {
	s, ok := r.entry(p).payload.(*strObj)
	if !ok {
		r.badArgument()
		return nil
	}
	return bytes.Clone(s.data)
}

// UnicodeDecodeErrorCreate returns a new UnicodeDecodeError instance.
func (r *Runtime) UnicodeDecodeErrorCreate(encoding string, input []byte, start, end int, reason string) capi.Ptr {
	info := &capi.DecodeErrorInfo{
		Encoding: encoding,
		Reason:   reason,
		Object:   bytes.Clone(input),
		Start:    start,
		End:      end,
	}
	return r.alloc(r.types["UnicodeDecodeError"], &excObj{decode: info}, 0)
}

// UnicodeDecodeErrorInfo returns the fields of a UnicodeDecodeError.
func (r *Runtime) UnicodeDecodeErrorInfo(p capi.Ptr) (capi.DecodeErrorInfo, bool) {
	exc, ok := r.entry(p).payload.(*excObj)
	if !ok || exc.decode == nil {
		return capi.DecodeErrorInfo{}, false
	}
	info := *exc.decode
	info.Object = bytes.Clone(info.Object)
	return info, true
}
