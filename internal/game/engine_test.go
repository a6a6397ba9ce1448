package game

import (
	"errors"
	"slices"
	"testing"
	"time"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func mustToggle(t *testing.T, s State, cell int, now time.Time) (State, bool) {
	t.Helper()
	next, won, err := s.Toggle(cell, now)
	if err != nil {
		t.Fatalf("Toggle(%d): %v", cell, err)
	}
	return next, won
}

func TestNewState(t *testing.T) {
	s := NewState("c1", t0)
	if !slices.Equal(s.Marked, []int{FreeCell}) {
		t.Errorf("marked = %v", s.Marked)
	}
	if s.Won() || s.CompletedAt != nil || !s.StartedAt.Equal(t0) || s.CardID != "c1" {
		t.Errorf("unexpected fresh state %+v", s)
	}
}

func TestToggleRowWinAndUnmark(t *testing.T) {
	s := NewState("c1", t0)
	var newWin bool
	for i, cell := range []int{0, 1, 2, 3, 4} {
		s, newWin = mustToggle(t, s, cell, t0.Add(time.Duration(i+1)*time.Minute))
		if cell < 4 && (newWin || s.Won()) {
			t.Fatalf("won too early after cell %d: %v", cell, s.WonPatterns)
		}
	}
	if !newWin {
		t.Error("completing row 0 should report a new win")
	}
	if !slices.Contains(s.WonPatterns, "row-0") {
		t.Fatalf("wonPatterns = %v, want row-0", s.WonPatterns)
	}
	firstWin := t0.Add(5 * time.Minute)
	if s.CompletedAt == nil || !s.CompletedAt.Equal(firstWin) {
		t.Fatalf("completedAt = %v, want %v", s.CompletedAt, firstWin)
	}

	s, newWin = mustToggle(t, s, 0, t0.Add(time.Hour))
	if newWin || s.Won() || slices.Contains(s.WonPatterns, "row-0") {
		t.Errorf("unmarking 0 should clear row-0: %v", s.WonPatterns)
	}
	if s.CompletedAt == nil || !s.CompletedAt.Equal(firstWin) {
		t.Errorf("completedAt changed after unmark: %v", s.CompletedAt)
	}

	// Winning again is a new win event but keeps the first completion time.
	s, newWin = mustToggle(t, s, 0, t0.Add(2*time.Hour))
	if !newWin {
		t.Error("re-completing row 0 should report a new win")
	}
	if !s.CompletedAt.Equal(firstWin) {
		t.Errorf("completedAt overwritten: %v", s.CompletedAt)
	}
}

func TestToggleAdditionalPatternIsNotNewWin(t *testing.T) {
	s := NewState("c1", t0)
	for _, c := range []int{0, 1, 2, 3, 4} {
		s, _ = mustToggle(t, s, c, t0)
	}
	var newWin bool
	for _, c := range []int{5, 10, 15} {
		s, newWin = mustToggle(t, s, c, t0)
	}
	s, newWin = mustToggle(t, s, 20, t0)
	if newWin {
		t.Error("second pattern while already won is not a new win")
	}
	if !slices.Equal(s.WonPatterns, []string{"row-0", "col-0"}) {
		t.Errorf("wonPatterns = %v", s.WonPatterns)
	}
}

func TestToggleIsItsOwnInverse(t *testing.T) {
	base := NewState("c1", t0)
	base, _ = mustToggle(t, base, 7, t0)
	base, _ = mustToggle(t, base, 19, t0)
	for cell := range CellCount {
		if cell == FreeCell {
			continue
		}
		once, _ := mustToggle(t, base, cell, t0)
		twice, _ := mustToggle(t, once, cell, t0)
		if !slices.Equal(twice.Marked, base.Marked) {
			t.Errorf("cell %d: %v -> %v", cell, base.Marked, twice.Marked)
		}
	}
}

func TestFreeCellAlwaysMarked(t *testing.T) {
	s := NewState("c1", t0)
	for range 3 {
		var newWin bool
		s, newWin = mustToggle(t, s, FreeCell, t0)
		if newWin {
			t.Error("toggling the free cell cannot win")
		}
		if !slices.Contains(s.Marked, FreeCell) || !s.IsMarked(FreeCell) {
			t.Fatalf("free cell unmarked: %v", s.Marked)
		}
	}
	if !slices.Equal(s.Marked, []int{FreeCell}) {
		t.Errorf("marked = %v", s.Marked)
	}
}

func TestToggleInvalidIndex(t *testing.T) {
	s := NewState("c1", t0)
	s, _ = mustToggle(t, s, 3, t0)
	for _, cell := range []int{-1, 25, 100} {
		next, newWin, err := s.Toggle(cell, t0)
		var ie *InvalidIndexError
		if !errors.As(err, &ie) || ie.Index != cell {
			t.Errorf("Toggle(%d): expected InvalidIndexError, got %v", cell, err)
		}
		if newWin || !slices.Equal(next.Marked, s.Marked) {
			t.Errorf("Toggle(%d) changed state: %v", cell, next.Marked)
		}
	}
}

func TestToggleDoesNotMutateReceiver(t *testing.T) {
	s := NewState("c1", t0)
	s, _ = mustToggle(t, s, 1, t0)
	before := slices.Clone(s.Marked)
	_, _ = mustToggle(t, s, 2, t0)
	_, _ = mustToggle(t, s, 1, t0)
	if !slices.Equal(s.Marked, before) {
		t.Errorf("receiver mutated: %v -> %v", before, s.Marked)
	}
}

func TestNormalizeRepairsLegacyState(t *testing.T) {
	// Older clients started sessions with no marks at all.
	legacy := State{CardID: "c1", Marked: []int{4, 0, 3, 2, 1, 1, 42}, WonPatterns: []string{"diag-1"}}
	n := legacy.Normalize()
	if !slices.Equal(n.Marked, []int{0, 1, 2, 3, 4, FreeCell}) {
		t.Errorf("marked = %v", n.Marked)
	}
	if !slices.Equal(n.WonPatterns, []string{"row-0"}) {
		t.Errorf("wonPatterns = %v", n.WonPatterns)
	}

	// The first toggle on a legacy state does not report the row it already had.
	next, newWin := mustToggle(t, legacy, 9, t0)
	if newWin {
		t.Error("existing win reported as new")
	}
	if next.CompletedAt != nil {
		t.Errorf("completedAt set by a non-edge toggle: %v", next.CompletedAt)
	}
}

func TestWinningCells(t *testing.T) {
	s := NewState("c1", t0)
	for _, c := range []int{0, 6, 18, 24, 2, 7, 17, 22} {
		s, _ = mustToggle(t, s, c, t0)
	}
	if !slices.Equal(s.WonPatterns, []string{"col-2", "diag-0"}) {
		t.Fatalf("wonPatterns = %v", s.WonPatterns)
	}
	want := []int{0, 2, 6, 7, 12, 17, 18, 22, 24}
	if got := s.WinningCells(); !slices.Equal(got, want) {
		t.Errorf("WinningCells = %v, want %v", got, want)
	}
}
