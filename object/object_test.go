package object

import (
	"context"
	"testing"

	"github.com/wippyai/objbridge/capi"
	"github.com/wippyai/objbridge/errors"
	"github.com/wippyai/objbridge/memrt"
)

func newSession(t *testing.T) (*memrt.Runtime, *Session) {
	t.Helper()
	ctx := context.Background()
	rt, err := memrt.New(ctx, nil)
	if err != nil {
		t.Fatalf("memrt.New: %v", err)
	}
	s := Acquire(rt)
	t.Cleanup(func() {
		s.Close()
		_ = rt.Close(ctx)
	})
	return rt, s
}

func expectViolation(t *testing.T, kind errors.Kind, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		rec := recover()
		if rec == nil {
			t.Fatalf("expected contract violation %s", kind)
		}
		cv, ok := rec.(*ContractViolation)
		if !ok {
			t.Fatalf("panic value %T (%v), want *ContractViolation", rec, rec)
		}
		if cv.Err.Kind != kind {
			t.Fatalf("violation kind = %s, want %s", cv.Err.Kind, kind)
		}
	}()
	fn()
}

func newStr(t *testing.T, s *Session, text string) *Str {
	t.Helper()
	str, err := NewStr(s, text)
	if err != nil {
		t.Fatalf("NewStr: %v", err)
	}
	return str
}

func TestFromBorrowed_IncrementsAndReleaseRestores(t *testing.T) {
	rt, s := newSession(t)

	raw := rt.UnicodeFromString("borrowed")
	defer rt.DecRef(raw)
	before := rt.RefCount(raw)

	o := FromBorrowed(s, raw)
	if got := rt.RefCount(raw); got != before+1 {
		t.Fatalf("after borrow refcount = %d, want %d", got, before+1)
	}

	o.Release()
	if got := rt.RefCount(raw); got != before {
		t.Fatalf("after release refcount = %d, want %d", got, before)
	}
	if !o.Released() {
		t.Error("handle should be released")
	}

	o.Release()
	if got := rt.RefCount(raw); got != before {
		t.Fatalf("second release changed refcount to %d", got)
	}
}

func TestClone_ReleaseIsNeutral(t *testing.T) {
	rt, s := newSession(t)

	o := FromOwned(s, rt.DictNew())
	defer o.Release()
	before := o.RefCount()

	c := o.Clone()
	if !c.Is(o) {
		t.Error("clone should be the same object")
	}
	if o.RefCount() != before+1 {
		t.Errorf("clone refcount = %d, want %d", o.RefCount(), before+1)
	}
	c.Release()
	if o.RefCount() != before {
		t.Errorf("after releasing clone refcount = %d, want %d", o.RefCount(), before)
	}
}

func TestOptConstructors(t *testing.T) {
	_, s := newSession(t)

	if FromOwnedOpt(s, capi.Null) != nil {
		t.Error("FromOwnedOpt(Null) should be nil")
	}
	if FromBorrowedOpt(s, capi.Null) != nil {
		t.Error("FromBorrowedOpt(Null) should be nil")
	}
	expectViolation(t, errors.KindNilPointer, func() { FromOwned(s, capi.Null) })
	expectViolation(t, errors.KindNilPointer, func() { FromBorrowed(s, capi.Null) })
}

func TestSteal(t *testing.T) {
	rt, s := newSession(t)

	o := FromOwned(s, rt.DictNew())
	live := s.Live()
	p := o.Steal()
	if !o.Released() {
		t.Error("Steal should leave the handle released")
	}
	if s.Live() != live-1 {
		t.Errorf("Live() = %d, want %d", s.Live(), live-1)
	}
	if rt.RefCount(p) != 1 {
		t.Errorf("stolen refcount = %d, want 1", rt.RefCount(p))
	}
	o.Release()
	rt.DecRef(p)
}

func TestUseAfterRelease(t *testing.T) {
	rt, s := newSession(t)

	o := FromOwned(s, rt.DictNew())
	o.Release()
	expectViolation(t, errors.KindUseAfterRelease, func() { o.RefCount() })
	expectViolation(t, errors.KindUseAfterRelease, func() { o.Clone() })
}

func TestSession(t *testing.T) {
	ctx := context.Background()
	rt, err := memrt.New(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close(ctx)

	s := Acquire(rt)
	a := FromOwned(s, rt.DictNew())
	b := a.Clone()
	if s.Live() != 2 {
		t.Errorf("Live() = %d, want 2", s.Live())
	}
	a.Release()
	b.Release()
	if s.Live() != 0 {
		t.Errorf("Live() = %d, want 0", s.Live())
	}
	s.Close()
	s.Close()

	expectViolation(t, errors.KindSessionClosed, func() { None(s) })

	// The runtime lock was returned, so a new session can be acquired.
	s2 := Acquire(rt)
	defer s2.Close()
	n := None(s2)
	defer n.Release()
	if !n.IsNone() {
		t.Error("None should be None")
	}
}

func TestType(t *testing.T) {
	rt, s := newSession(t)

	str := newStr(t, s, "x")
	defer str.Release()

	typ := str.Type()
	if typ.Name() != capi.TypeStr {
		t.Errorf("Name() = %q", typ.Name())
	}
	if !typ.IsView() {
		t.Error("Type() should return a view")
	}
	before := rt.RefCount(typ.Ptr())
	typ.Release()
	if rt.RefCount(typ.Ptr()) != before {
		t.Error("releasing a view must not touch the count")
	}

	strType := TypeObject[Str](s)
	objType := TypeObject[Object](s)
	if !typ.Equal(strType) {
		t.Error("type(str) should equal TypeObject[Str]")
	}
	if !strType.IsSubtypeOf(objType) {
		t.Error("str should derive from object")
	}
	if objType.IsSubtypeOf(strType) {
		t.Error("object must not derive from str")
	}
	if !strType.IsInstance(str) || !objType.IsInstance(str) {
		t.Error("IsInstance should follow the hierarchy")
	}
	if !strType.Flags().Has(capi.TPFlagsUnicodeSubclass) {
		t.Error("str type should carry the unicode flag")
	}

	if TypeObject[StandardError](s) != nil {
		t.Error("3.x runtime has no StandardError")
	}

	owned := typ.Clone()
	if owned.IsView() {
		t.Error("Clone of a view should own")
	}
	owned.Release()
}

func TestAttributes(t *testing.T) {
	_, s := newSession(t)

	m, err := NewModule(s, "attrs")
	if err != nil {
		t.Fatal(err)
	}
	defer m.Release()

	v := newStr(t, s, "value")
	defer v.Release()

	if err := m.SetAttr("x", v); err != nil {
		t.Fatalf("SetAttr: %v", err)
	}
	got, err := m.GetAttr("x")
	if err != nil {
		t.Fatalf("GetAttr: %v", err)
	}
	defer got.Release()
	if !got.Is(v) {
		t.Error("GetAttr should return the stored object")
	}

	if err := m.DelAttr("x"); err != nil {
		t.Fatalf("DelAttr: %v", err)
	}
	_, err = m.GetAttr("x")
	if !ErrMatches[AttributeErrorKind](err) {
		t.Fatalf("expected AttributeError, got %v", err)
	}
	err.(*Err).Release()

	expectViolation(t, errors.KindInvalidInput, func() { _, _ = m.GetAttr("a\x00b") })
}

func TestStr(t *testing.T) {
	rt, s := newSession(t)

	str := newStr(t, s, "héllo")
	defer str.Release()

	text, err := str.Text()
	if err != nil || text != "héllo" {
		t.Fatalf("Text() = %q, %v", text, err)
	}
	if str.String() != "héllo" {
		t.Errorf("String() = %q", str.String())
	}

	l, err := NewList(s)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Release()
	if got, _ := l.Str(); got != "[]" {
		t.Errorf("str(list) = %q", got)
	}

	bad := UncheckedCast[Str](FromOwned(s, rt.UnicodeFromString("ok\xfe")))
	defer bad.Release()
	_, err = bad.Text()
	if !ErrMatches[UnicodeDecodeErrorKind](err) {
		t.Fatalf("expected UnicodeDecodeError, got %v", err)
	}
	err.(*Err).Release()
}

func TestString_Released(t *testing.T) {
	rt, s := newSession(t)
	o := FromOwned(s, rt.DictNew())
	o.Release()
	if o.String() != "<released>" {
		t.Errorf("String() = %q", o.String())
	}
}

func TestIs(t *testing.T) {
	_, s := newSession(t)

	str := newStr(t, s, "x")
	defer str.Release()

	view := UncheckedCastAs[Object](str)
	if !str.Is(view) || !view.Is(str) {
		t.Error("a view is the same object as its source")
	}

	other := newStr(t, s, "x")
	defer other.Release()
	if str.Is(other) {
		t.Error("distinct objects must not compare identical")
	}

	var nilList *List
	var nilObj *Object
	tests := []struct {
		name  string
		other Wrapper
	}{
		{"nil interface", nil},
		{"typed nil list", nilList},
		{"typed nil object", nilObj},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if str.Is(tt.other) {
				t.Error("Is should report false")
			}
		})
	}
}
