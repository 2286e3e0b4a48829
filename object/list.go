package object

import (
	"iter"

	"github.com/wippyai/objbridge/capi"
	"github.com/wippyai/objbridge/errors"
)

// List wraps a list object.
type List struct {
	Object
}

func (*List) typeName() string { return capi.TypeList }

func (*List) matches(api capi.API, p capi.Ptr) bool {
	return hasFlags(api, p, capi.TPFlagsListSubclass)
}

// NewList creates a list from items. Each item's reference moves into the
// list, including when creation fails.
func NewList(s *Session, items ...Wrapper) (*List, error) {
	api := s.check()
	p := api.ListNew(len(items))
	if p == capi.Null {
		for _, it := range items {
			it.AsObject().Release()
		}
		return nil, Fetch(s)
	}

	for i, it := range items {
		v := it.AsObject().Steal()
		if rc := api.ListSetItem(p, i, v); rc != 0 {
			fatal(errors.UnexpectedStatus("ListSetItem", rc))
		}
	}
	return UncheckedCast[List](FromOwned(s, p)), nil
}

// Len returns the number of items.
func (l *List) Len() int {
	n := l.api().ListSize(l.ptr)
	if n < 0 {
		fatal(errors.UnexpectedStatus("ListSize", n))
	}
	return n
}

// checkIndex enforces 0 <= i < n, or 0 <= i <= n when end is allowed.
func (l *List) checkIndex(op string, i, n int, end bool) {
	limit := n
	if end {
		limit++
	}
	if i < 0 || i >= limit {
		fatal(errors.OutOfBounds([]string{"List", op}, i, n))
	}
}

// GetItem returns a new reference to item i. i must be in [0, Len()).
func (l *List) GetItem(i int) *Object {
	l.checkIndex("GetItem", i, l.Len(), false)
	p := l.api().ListGetItem(l.ptr, i)
	if p == capi.Null {
		fatal(errors.NilPointer(errors.PhaseContract, "list item"))
	}
	return FromBorrowed(l.s, p)
}

// SetItem replaces item i with v, consuming v. i must be in [0, Len()).
func (l *List) SetItem(i int, v Wrapper) {
	l.checkIndex("SetItem", i, l.Len(), false)
	vp := v.AsObject().Steal()
	if rc := l.api().ListSetItem(l.ptr, i, vp); rc != 0 {
		fatal(errors.UnexpectedStatus("ListSetItem", rc))
	}
}

// Insert places v before index i, consuming v. i must be in [0, Len()].
// Unlike GetItem and SetItem, i == Len() is accepted on purpose and
// appends, matching the foreign insert.
func (l *List) Insert(i int, v Wrapper) {
	l.checkIndex("Insert", i, l.Len(), true)
	vo := v.AsObject()
	vo.api()
	if rc := l.api().ListInsert(l.ptr, i, vo.ptr); rc != 0 {
		fatal(errors.UnexpectedStatus("ListInsert", rc))
	}
	vo.Release()
}

// Append adds v at the end, consuming v.
func (l *List) Append(v Wrapper) {
	vo := v.AsObject()
	vo.api()
	if rc := l.api().ListAppend(l.ptr, vo.ptr); rc != 0 {
		fatal(errors.UnexpectedStatus("ListAppend", rc))
	}
	vo.Release()
}

// All iterates over the items. The length is re-read before every step,
// so the loop body may grow or shrink the list.
func (l *List) All() iter.Seq2[int, *Object] {
	return func(yield func(int, *Object) bool) {
		for i := 0; i < l.Len(); i++ {
			if !yield(i, l.GetItem(i)) {
				return
			}
		}
	}
}

// NewListFromStrings creates a list of str objects holding items.
func NewListFromStrings(s *Session, items []string) (*List, error) {
	objs := make([]Wrapper, 0, len(items))
	for _, text := range items {
		str, err := NewStr(s, text)
		if err != nil {
			for _, o := range objs {
				o.AsObject().Release()
			}
			return nil, err
		}
		objs = append(objs, str)
	}
	return NewList(s, objs...)
}

// Extract casts every item to a T. The result owns one reference per item.
// On the first mismatch the items taken so far are released and the
// *DowncastError is returned.
func Extract[T any, P Wrapped[T]](l *List) ([]*T, error) {
	out := make([]*T, 0, l.Len())
	for _, it := range l.All() {
		v, err := Cast[T, P](it)
		if err != nil {
			for _, o := range out {
				P(o).AsObject().Release()
			}
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Strings converts a list of str objects into Go strings. A non-str item
// yields a *DowncastError; undecodable text yields an *Err holding a
// UnicodeDecodeError.
func (l *List) Strings() ([]string, error) {
	strs, err := Extract[Str](l)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, str := range strs {
			str.Release()
		}
	}()

	out := make([]string, len(strs))
	for i, str := range strs {
		text, err := str.Text()
		if err != nil {
			return nil, err
		}
		out[i] = text
	}
	return out, nil
}
