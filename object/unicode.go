package object

import (
	"unicode/utf8"

	"github.com/wippyai/objbridge/capi"
	"github.com/wippyai/objbridge/errors"
)

// UnicodeDecodeError wraps a UnicodeDecodeError instance and exposes its
// fields.
type UnicodeDecodeError struct {
	Exc[UnicodeDecodeErrorKind]
}

// NewUnicodeDecodeError creates a decode error for input[start:end].
func NewUnicodeDecodeError(s *Session, encoding string, input []byte, start, end int, reason string) (*UnicodeDecodeError, error) {
	api := s.check()
	p := api.UnicodeDecodeErrorCreate(cstr("encoding", encoding), input, start, end, cstr("reason", reason))
	if p == capi.Null {
		return nil, Fetch(s)
	}
	return UncheckedCast[UnicodeDecodeError](FromOwned(s, p)), nil
}

// NewUnicodeDecodeErrorUTF8 creates a decode error for input, which must
// not be valid UTF-8. The reported range is the first byte past the
// longest valid prefix.
func NewUnicodeDecodeErrorUTF8(s *Session, input []byte) (*UnicodeDecodeError, error) {
	pos := errors.ValidUpTo(input)
	if pos == len(input) {
		fatal(errors.New(errors.PhaseContract, errors.KindInvalidInput).
			Detail("input is valid UTF-8").
			Build())
	}
	return NewUnicodeDecodeError(s, "utf-8", input, pos, pos+1, "invalid utf-8")
}

func (u *UnicodeDecodeError) info() capi.DecodeErrorInfo {
	info, ok := u.api().UnicodeDecodeErrorInfo(u.ptr)
	if !ok {
		fatal(errors.New(errors.PhaseContract, errors.KindTypeMismatch).
			ForeignType(u.Type().Name()).
			Detail("not a UnicodeDecodeError").
			Build())
	}
	return info
}

// Encoding returns the codec name.
func (u *UnicodeDecodeError) Encoding() string { return u.info().Encoding }

// Input returns the bytes that failed to decode.
func (u *UnicodeDecodeError) Input() []byte { return u.info().Object }

// Start returns the offset of the first undecodable byte.
func (u *UnicodeDecodeError) Start() int { return u.info().Start }

// End returns the offset past the undecodable range.
func (u *UnicodeDecodeError) End() int { return u.info().End }

// Reason returns the human-readable reason.
func (u *UnicodeDecodeError) Reason() string { return u.info().Reason }

// decodeText converts foreign text bytes, reporting invalid UTF-8 as an *Err
// holding a UnicodeDecodeError.
func decodeText(s *Session, b []byte) (string, error) {
	if utf8.Valid(b) {
		return string(b), nil
	}
	exc, err := NewUnicodeDecodeErrorUTF8(s, b)
	if err != nil {
		return "", err
	}
	e := ErrFromValue(exc.AsObject())
	e.cause = errors.InvalidUTF8([]string{"str"}, b)
	return "", e
}
