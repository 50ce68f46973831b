package main

import (
	"strings"
	"testing"
)

func TestOverlayAtPlacesBox(t *testing.T) {
	base := strings.Join([]string{
		"..........",
		"..........",
		"..........",
	}, "\n")
	got := strings.Split(overlayAt(base, "XX", 4, 1, 10, 3), "\n")
	if got[1] != "....XX...." {
		t.Fatalf("row 1 = %q", got[1])
	}
	if got[0] != ".........." || got[2] != ".........." {
		t.Fatalf("untouched rows changed: %q / %q", got[0], got[2])
	}
}

func TestOverlayAtDropsRowsOutsideGrid(t *testing.T) {
	if got := overlayAt("ab", "X\nY", 0, 1, 2, 2); got != "ab" {
		t.Fatalf("got %q", got)
	}
}

func TestSpliceLinePreservesTail(t *testing.T) {
	if got := spliceLine("abcdefgh", "XY", 2, 8); got != "abXYefgh" {
		t.Fatalf("got %q", got)
	}
}

func TestTruncateAndPadRight(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Fatalf("truncate = %q", got)
	}
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight = %q", got)
	}
	if got := padRight("abcd", 2); got != "abcd" {
		t.Fatalf("padRight past width = %q", got)
	}
}
