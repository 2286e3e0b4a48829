package object

import (
	"context"
	"slices"
	"testing"

	"github.com/wippyai/objbridge/capi"
	"github.com/wippyai/objbridge/errors"
	"github.com/wippyai/objbridge/memrt"
)

func TestNewList(t *testing.T) {
	rt, s := newSession(t)

	a := newStr(t, s, "a")
	b := newStr(t, s, "b")
	c := newStr(t, s, "c")
	ptrs := []uint64{uint64(a.Ptr()), uint64(b.Ptr()), uint64(c.Ptr())}

	l, err := NewList(s, a, b, c)
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}
	defer l.Release()

	for _, it := range []*Str{a, b, c} {
		if !it.Released() {
			t.Error("items should move into the list")
		}
	}
	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}
	for i, want := range ptrs {
		it := l.GetItem(i)
		if uint64(it.Ptr()) != want {
			t.Errorf("item %d = 0x%x, want 0x%x", i, uint64(it.Ptr()), want)
		}
		if rt.RefCount(it.Ptr()) != 2 {
			t.Errorf("item %d refcount = %d, want 2", i, rt.RefCount(it.Ptr()))
		}
		it.Release()
	}

	if got, _ := l.Str(); got != "['a', 'b', 'c']" {
		t.Errorf("str(list) = %q", got)
	}
}

func TestList_ReleaseFreesItems(t *testing.T) {
	rt, s := newSession(t)
	base := rt.Live()

	l, err := NewList(s, newStr(t, s, "x"), newStr(t, s, "y"))
	if err != nil {
		t.Fatal(err)
	}
	if rt.Live() != base+3 {
		t.Errorf("Live() = %d, want %d", rt.Live(), base+3)
	}
	l.Release()
	if rt.Live() != base {
		t.Errorf("after release Live() = %d, want %d", rt.Live(), base)
	}
}

func TestList_SetItem(t *testing.T) {
	rt, s := newSession(t)

	l, err := NewList(s, newStr(t, s, "old"))
	if err != nil {
		t.Fatal(err)
	}
	defer l.Release()

	old := l.GetItem(0)
	defer old.Release()

	v := newStr(t, s, "new")
	vp := v.Ptr()
	l.SetItem(0, v)
	if !v.Released() {
		t.Error("SetItem should consume its value")
	}
	if rt.RefCount(vp) != 1 {
		t.Errorf("stored item refcount = %d, want 1", rt.RefCount(vp))
	}
	if old.RefCount() != 1 {
		t.Errorf("replaced item refcount = %d, want 1", old.RefCount())
	}

	got := l.GetItem(0)
	defer got.Release()
	if got.Ptr() != vp {
		t.Error("GetItem should return the new item")
	}
}

func TestList_InsertAppend(t *testing.T) {
	_, s := newSession(t)

	l, err := NewList(s)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Release()

	l.Append(newStr(t, s, "b"))
	l.Insert(0, newStr(t, s, "a"))
	l.Insert(l.Len(), newStr(t, s, "d"))
	l.Insert(2, newStr(t, s, "c"))

	if got, _ := l.Str(); got != "['a', 'b', 'c', 'd']" {
		t.Errorf("str(list) = %q", got)
	}

	v := newStr(t, s, "e")
	l.Append(v)
	if !v.Released() {
		t.Error("Append should consume its value")
	}
	if l.Len() != 5 {
		t.Errorf("Len() = %d, want 5", l.Len())
	}
}

func TestList_IndexViolations(t *testing.T) {
	_, s := newSession(t)

	l, err := NewList(s, newStr(t, s, "only"))
	if err != nil {
		t.Fatal(err)
	}
	defer l.Release()

	x := newStr(t, s, "x")
	defer x.Release()

	tests := []struct {
		name string
		fn   func()
	}{
		{"get past end", func() { l.GetItem(1) }},
		{"get negative", func() { l.GetItem(-1) }},
		{"set past end", func() { l.SetItem(1, x) }},
		{"insert past end", func() { l.Insert(2, x) }},
		{"insert negative", func() { l.Insert(-1, x) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectViolation(t, errors.KindOutOfBounds, tt.fn)
		})
	}

	if l.Len() != 1 || x.Released() {
		t.Error("rejected calls must not change the list or consume the value")
	}
}

func TestList_All(t *testing.T) {
	_, s := newSession(t)

	l, err := NewList(s, newStr(t, s, "a"), newStr(t, s, "b"))
	if err != nil {
		t.Fatal(err)
	}
	defer l.Release()

	var seen []string
	for i, it := range l.All() {
		text, err := UncheckedCastAs[Str](it).Text()
		if err != nil {
			t.Fatal(err)
		}
		seen = append(seen, text)
		if i == 0 {
			l.Append(newStr(t, s, "c"))
		}
		it.Release()
	}
	if len(seen) != 3 || seen[2] != "c" {
		t.Errorf("iteration saw %v", seen)
	}

	count := 0
	for _, it := range l.All() {
		it.Release()
		count++
		break
	}
	if count != 1 {
		t.Errorf("break should stop iteration, count = %d", count)
	}
}

// shrinkingRuntime reports a shorter list once an item has been read, as if
// the loop body had deleted items.
type shrinkingRuntime struct {
	*memrt.Runtime
	read bool
	to   int
}

func (r *shrinkingRuntime) ListSize(p capi.Ptr) int {
	n := r.Runtime.ListSize(p)
	if r.read && n > r.to {
		return r.to
	}
	return n
}

func (r *shrinkingRuntime) ListGetItem(p capi.Ptr, i int) capi.Ptr {
	r.read = true
	return r.Runtime.ListGetItem(p, i)
}

func TestList_AllShrinking(t *testing.T) {
	ctx := context.Background()
	rt, err := memrt.New(ctx, nil)
	if err != nil {
		t.Fatalf("memrt.New: %v", err)
	}
	defer rt.Close(ctx)

	shrink := &shrinkingRuntime{Runtime: rt, to: 2}
	s := Acquire(shrink)
	defer s.Close()

	l, err := NewListFromStrings(s, []string{"a", "b", "c", "d"})
	if err != nil {
		t.Fatal(err)
	}
	defer l.Release()

	var seen []int
	for i, it := range l.All() {
		seen = append(seen, i)
		it.Release()
	}
	if !slices.Equal(seen, []int{0, 1}) {
		t.Errorf("iteration visited %v, want [0 1]", seen)
	}
}

func TestNewListFromStrings(t *testing.T) {
	_, s := newSession(t)

	tests := []struct {
		name  string
		items []string
	}{
		{"empty", nil},
		{"ascii", []string{"a", "b", "c"}},
		{"unicode", []string{"héllo", "", "日本"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewListFromStrings(s, tt.items)
			if err != nil {
				t.Fatalf("NewListFromStrings: %v", err)
			}
			defer l.Release()

			if l.Len() != len(tt.items) {
				t.Fatalf("Len() = %d, want %d", l.Len(), len(tt.items))
			}
			for i, it := range l.All() {
				if !Check[Str](it) {
					t.Errorf("item %d is %s, want str", i, it.Type().Name())
				}
				it.Release()
			}

			got, err := l.Strings()
			if err != nil {
				t.Fatalf("Strings: %v", err)
			}
			if !slices.Equal(got, tt.items) {
				t.Errorf("Strings() = %q, want %q", got, tt.items)
			}
			if s.Live() != 1 {
				t.Errorf("live handles = %d, want only the list", s.Live())
			}
		})
	}
}

func TestList_StringsWrongType(t *testing.T) {
	rt, s := newSession(t)

	l, err := NewList(s, newStr(t, s, "a"), FromOwned(s, rt.DictNew()), newStr(t, s, "c"))
	if err != nil {
		t.Fatal(err)
	}
	defer l.Release()

	got, err := l.Strings()
	if got != nil {
		t.Errorf("Strings() = %q, want nil", got)
	}
	var de *DowncastError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v (%T), want *DowncastError", err, err)
	}
	if de.Expected != capi.TypeStr || de.Actual != capi.TypeDict {
		t.Errorf("expected %s, actual %s", de.Expected, de.Actual)
	}
	if !errors.Is(err, errors.TypeMismatch(capi.TypeStr, capi.TypeDict)) {
		t.Error("err should unwrap to a type mismatch")
	}
	if s.Live() != 1 {
		t.Errorf("live handles = %d, a failed conversion must release its items", s.Live())
	}
}

func TestList_StringsInvalidText(t *testing.T) {
	rt, s := newSession(t)

	bad := FromOwned(s, rt.UnicodeFromString("ok\xfe"))
	l, err := NewList(s, newStr(t, s, "fine"), bad)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Release()

	_, err = l.Strings()
	if !ErrMatches[UnicodeDecodeErrorKind](err) {
		t.Fatalf("err = %v, want UnicodeDecodeError", err)
	}
	defer err.(*Err).Release()

	if !errors.Is(err, errors.InvalidUTF8(nil, nil)) {
		t.Error("decode failures should unwrap to invalid UTF-8")
	}
	if s.Live() != 3 {
		t.Errorf("live handles = %d, want the list and the error's type and value", s.Live())
	}
}

func TestExtract(t *testing.T) {
	_, s := newSession(t)

	l, err := NewListFromStrings(s, []string{"x", "y"})
	if err != nil {
		t.Fatal(err)
	}
	defer l.Release()

	strs, err := Extract[Str](l)
	if err != nil {
		t.Fatalf("Extract[Str]: %v", err)
	}
	if len(strs) != 2 {
		t.Fatalf("len = %d, want 2", len(strs))
	}
	for i, str := range strs {
		it := l.GetItem(i)
		if str.IsView() || !str.Is(it) {
			t.Errorf("item %d should be an owned handle to the list item", i)
		}
		it.Release()
	}
	for _, str := range strs {
		str.Release()
	}

	if _, err := Extract[List](l); err == nil {
		t.Fatal("str items should not extract as lists")
	}
	if s.Live() != 1 {
		t.Errorf("live handles = %d, want only the list", s.Live())
	}
}
