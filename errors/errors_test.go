package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:       PhaseDowncast,
				Kind:        KindTypeMismatch,
				Path:        []string{"mod", "attr", "items"},
				GoType:      "*object.List",
				ForeignType: "str",
				Detail:      "cannot downcast",
			},
			contains: []string{"[downcast]", "type_mismatch", "mod.attr.items", "*object.List", "str", "cannot downcast"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseContract,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[contract]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseRuntime,
				Kind:   KindAllocation,
				Detail: "heap full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[runtime]", "allocation", "heap full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseProbe,
		Kind:  KindProbeFailed,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseDowncast,
		Kind:  KindTypeMismatch,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseDowncast, Kind: KindTypeMismatch}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindTypeMismatch}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseDowncast, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseDowncast, Kind: KindTypeMismatch}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseDowncast, KindTypeMismatch).
		Path("module", "name").
		GoType("*object.Str").
		ForeignType("int").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "str", "int").
		Build()

	if err.Phase != PhaseDowncast {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseDowncast)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 2 || err.Path[0] != "module" || err.Path[1] != "name" {
		t.Errorf("Path = %v, want [module name]", err.Path)
	}
	if err.GoType != "*object.Str" {
		t.Errorf("GoType = %v, want '*object.Str'", err.GoType)
	}
	if err.ForeignType != "int" {
		t.Errorf("ForeignType = %v, want 'int'", err.ForeignType)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected str, got int" {
		t.Errorf("Detail = %v, want 'expected str, got int'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch("list", "str")
		if err.Phase != PhaseDowncast || err.Kind != KindTypeMismatch {
			t.Errorf("Phase=%v Kind=%v", err.Phase, err.Kind)
		}
		if err.GoType != "list" || err.ForeignType != "str" {
			t.Errorf("GoType=%v ForeignType=%v", err.GoType, err.ForeignType)
		}
	})

	t.Run("InvalidUTF8", func(t *testing.T) {
		err := InvalidUTF8([]string{"name"}, []byte("ab\xffc"))
		if err.Kind != KindInvalidUTF8 {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidUTF8)
		}
		if err.Value != 2 {
			t.Errorf("Value = %v, want 2", err.Value)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds([]string{"list"}, 10, 5)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("NilPointer", func(t *testing.T) {
		err := NilPointer(PhaseContract, "handle")
		if err.Kind != KindNilPointer {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNilPointer)
		}
	})

	t.Run("DoubleRelease", func(t *testing.T) {
		err := DoubleRelease(0x40)
		if err.Kind != KindDoubleRelease {
			t.Errorf("Kind = %v, want %v", err.Kind, KindDoubleRelease)
		}
		if !strings.Contains(err.Detail, "0x40") {
			t.Errorf("Detail = %v, should contain address", err.Detail)
		}
	})

	t.Run("UnexpectedStatus", func(t *testing.T) {
		err := UnexpectedStatus("list_set_item", -1)
		if err.Kind != KindUnexpectedStatus || err.Value != -1 {
			t.Errorf("Kind=%v Value=%v", err.Kind, err.Value)
		}
	})

	t.Run("ProbeFailed", func(t *testing.T) {
		cause := errors.New("exec: not found")
		err := ProbeFailed("run python", cause)
		if !errors.Is(err, cause) {
			t.Error("ProbeFailed should wrap cause")
		}
	})
}

func TestValidUpTo(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"hello", 5},
		{"héllo", 6},
		{"abc\xff", 3},
		{"\xffabc", 0},
		{"ab\xe2\x82", 2},
		{"\xef\xbf\xbd", 3},
		{"a\xed\xa0\x80", 1},
	}

	for _, tt := range tests {
		if got := ValidUpTo([]byte(tt.in)); got != tt.want {
			t.Errorf("ValidUpTo(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
