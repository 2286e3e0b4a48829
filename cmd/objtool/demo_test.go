package main

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"

	"github.com/wippyai/objbridge/memrt"
	"github.com/wippyai/objbridge/object"
)

func TestFitWidth(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		width int
		cut   bool
	}{
		{"fits", "0x10 str 1 'a'", 80, false},
		{"no terminal", strings.Repeat("x", 200), 0, false},
		{"ascii", strings.Repeat("x", 20), 10, true},
		{"accented", "0x10 str 1 'héllo wörld café'", 16, true},
		{"wide", "0x10 str 1 '日本語のテキスト'", 15, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fitWidth(tt.line, tt.width)
			if !utf8.ValidString(got) {
				t.Fatalf("fitWidth split a character: %q", got)
			}
			if !tt.cut {
				if got != tt.line {
					t.Errorf("fitWidth = %q, want unchanged", got)
				}
				return
			}
			if w := ansi.StringWidth(got); w > tt.width {
				t.Errorf("width = %d, want <= %d (%q)", w, tt.width, got)
			}
			if !strings.HasSuffix(got, "…") {
				t.Errorf("fitWidth = %q, want trailing ellipsis", got)
			}
		})
	}
}

func TestBuildScene_ReleasesEverything(t *testing.T) {
	ctx := context.Background()
	rt, err := memrt.New(ctx, nil)
	if err != nil {
		t.Fatalf("memrt.New: %v", err)
	}
	defer rt.Close(ctx)

	s := object.Acquire(rt)
	defer s.Close()

	sc, err := buildScene(s)
	if err != nil {
		t.Fatalf("buildScene: %v", err)
	}
	if len(sc.log) == 0 {
		t.Error("scene should log its steps")
	}
	if s.Live() != len(sc.handles) {
		t.Errorf("live handles = %d, want %d", s.Live(), len(sc.handles))
	}

	sc.release()
	if s.Live() != 0 {
		t.Errorf("live handles after release = %d", s.Live())
	}
}
