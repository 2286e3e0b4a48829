package object

import (
	"slices"
	"testing"

	"github.com/wippyai/objbridge/capi"
	"github.com/wippyai/objbridge/errors"
)

func TestNewError(t *testing.T) {
	_, s := newSession(t)

	e := NewError[ValueErrorKind](s, "boom")
	defer e.Release()

	if e.Name() != "ValueError" || e.Message() != "boom" {
		t.Errorf("got %s / %s", e.Name(), e.Message())
	}
	if e.Error() != "ValueError: boom" {
		t.Errorf("Error() = %q", e.Error())
	}
	if !ErrMatches[ValueErrorKind](e) || !ErrMatches[ExceptionKind](e) || !ErrMatches[BaseExceptionKind](e) {
		t.Error("ValueError should match its ancestors")
	}
	if ErrMatches[TypeErrorKind](e) {
		t.Error("ValueError must not match TypeError")
	}
	if !errors.Is(e, errors.New(errors.PhaseForeign, errors.KindForeignException).Build()) {
		t.Error("Err should unwrap to a foreign exception error")
	}
	if !Check[ValueError](e.Value) {
		t.Error("value should be a ValueError instance")
	}
	if s.API().ErrOccurred() != capi.Null {
		t.Error("NewError must leave the error slot empty")
	}
}

func TestErr_MessageWithVerbs(t *testing.T) {
	_, s := newSession(t)

	msg := "100% done, %d left %s"
	e := NewError[ValueErrorKind](s, msg)
	defer e.Release()

	if e.Error() != "ValueError: "+msg {
		t.Errorf("Error() = %q", e.Error())
	}
	var structured *errors.Error
	if !errors.As(e, &structured) {
		t.Fatal("Err should unwrap to *errors.Error")
	}
	if structured.Detail != msg {
		t.Errorf("Detail = %q, want %q", structured.Detail, msg)
	}
	if structured.Cause != nil {
		t.Errorf("plain exceptions carry no cause, got %v", structured.Cause)
	}
}

func TestNewError_MissingType(t *testing.T) {
	_, s := newSession(t)

	e := NewError[StandardErrorKind](s, "legacy")
	defer e.Release()
	if e.Name() != "SystemError" {
		t.Errorf("Name() = %q", e.Name())
	}
	if e.Message() != "runtime has no StandardError: legacy" {
		t.Errorf("Message() = %q", e.Message())
	}
}

func TestRaiseFetchRestore(t *testing.T) {
	rt, s := newSession(t)

	Raise[KeyErrorKind](s, "k")
	if rt.ErrOccurred() == capi.Null {
		t.Fatal("Raise should set the pending error")
	}

	e := Fetch(s)
	if rt.ErrOccurred() != capi.Null {
		t.Error("Fetch should clear the error slot")
	}
	if !ErrMatches[LookupErrorKind](e) {
		t.Errorf("KeyError should match LookupError: %v", e)
	}
	valuePtr := e.Value.Ptr()

	e.Restore()
	if !e.Type.Released() || !e.Value.Released() {
		t.Error("Restore should give up the references")
	}

	again := Fetch(s)
	defer again.Release()
	if again.Value.Ptr() != valuePtr {
		t.Error("restored error should carry the same value")
	}
	if again.Error() != "KeyError: k" {
		t.Errorf("Error() = %q", again.Error())
	}
}

func TestFetch_NothingPending(t *testing.T) {
	_, s := newSession(t)

	e := Fetch(s)
	defer e.Release()
	if e.Name() != "SystemError" || e.Message() != "error return without exception set" {
		t.Errorf("got %v", e)
	}
}

func TestErrMatches_NonForeign(t *testing.T) {
	if ErrMatches[ValueErrorKind](nil) {
		t.Error("nil should not match")
	}
	if ErrMatches[ValueErrorKind](errors.TypeMismatch("list", "dict")) {
		t.Error("structured errors should not match")
	}
}

func TestErr_Matches(t *testing.T) {
	rt, s := newSession(t)

	myErr := rt.NewType("MyError", rt.StaticType("KeyError"))
	inst := rt.NewInstance(myErr)
	rt.ErrSetObject(myErr, inst)
	rt.DecRef(inst)
	e := Fetch(s)
	defer e.Release()

	if e.Name() != "MyError" {
		t.Errorf("Name() = %q", e.Name())
	}
	if !e.Matches(TypeObject[KeyError](s)) {
		t.Error("subclass should match its builtin base")
	}
	if e.Matches(nil) {
		t.Error("nil type should not match")
	}
	if !ErrMatches[KeyErrorKind](e) {
		t.Error("ErrMatches should walk the hierarchy")
	}
}

func TestErrFromValue(t *testing.T) {
	_, s := newSession(t)

	exc, err := NewUnicodeDecodeError(s, "latin-1", []byte("xyz"), 0, 2, "nope")
	if err != nil {
		t.Fatal(err)
	}
	e := ErrFromValue(exc.AsObject())
	defer e.Release()

	if !exc.Released() {
		t.Error("ErrFromValue should consume the value")
	}
	if e.Name() != "UnicodeDecodeError" {
		t.Errorf("Name() = %q", e.Name())
	}
	if e.Message() != "'latin-1' codec can't decode bytes in position 0-1: nope" {
		t.Errorf("Message() = %q", e.Message())
	}
}

func TestNewUnicodeDecodeErrorUTF8(t *testing.T) {
	_, s := newSession(t)

	tests := []struct {
		name  string
		input []byte
		start int
	}{
		{"leading", []byte{0xff, 'a'}, 0},
		{"after ascii", []byte("abc\xff"), 3},
		{"after multibyte", []byte("é\xc3"), 2},
		{"bad continuation", []byte("ok\xe2\x28\xa1"), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewUnicodeDecodeErrorUTF8(s, tt.input)
			if err != nil {
				t.Fatal(err)
			}
			defer u.Release()
			if u.Start() != tt.start || u.End() != tt.start+1 {
				t.Errorf("range = [%d, %d), want start %d", u.Start(), u.End(), tt.start)
			}
			if u.Encoding() != "utf-8" || u.Reason() != "invalid utf-8" {
				t.Errorf("fields = %s / %s", u.Encoding(), u.Reason())
			}
			if !slices.Equal(u.Input(), tt.input) {
				t.Errorf("Input() = %q", u.Input())
			}
			if !Check[UnicodeError](u) || !Check[ValueError](u) {
				t.Error("decode error should be a UnicodeError and a ValueError")
			}
		})
	}

	expectViolation(t, errors.KindInvalidInput, func() {
		_, _ = NewUnicodeDecodeErrorUTF8(s, []byte("fine"))
	})
}

func TestExceptionNames(t *testing.T) {
	_, s := newSession(t)

	names := ExceptionNames()
	for _, want := range []string{"BaseException", "TypeError", "UnicodeDecodeError", "ModuleNotFoundError"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing %s", want)
		}
	}

	for _, name := range names {
		if name == "StandardError" {
			continue
		}
		if s.API().StaticType(name) == capi.Null {
			t.Errorf("3.x runtime lacks %s", name)
		}
	}
}

func TestDict(t *testing.T) {
	_, s := newSession(t)

	d, err := NewDict(s)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Release()

	v := newStr(t, s, "v")
	defer v.Release()
	if err := d.SetItem("k", v); err != nil {
		t.Fatal(err)
	}
	if err := d.SetItem("k", v); err != nil {
		t.Fatal(err)
	}
	if d.Len() != 1 || v.RefCount() != 2 {
		t.Errorf("Len() = %d, refcount = %d", d.Len(), v.RefCount())
	}
	if got, _ := d.Str(); got != "{'k': 'v'}" {
		t.Errorf("str(dict) = %q", got)
	}
}
