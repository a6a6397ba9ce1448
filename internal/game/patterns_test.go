package game

import (
	"fmt"
	"slices"
	"testing"
)

func TestPatternCatalog(t *testing.T) {
	ps := Patterns()
	if len(ps) != 12 {
		t.Fatalf("expected 12 patterns, got %d", len(ps))
	}

	covered := make([]bool, CellCount)
	ids := map[string]bool{}
	for _, p := range ps {
		seen := map[int]bool{}
		for _, c := range p.Cells {
			if c < 0 || c >= CellCount {
				t.Errorf("%s: cell %d out of range", p.ID(), c)
			}
			if seen[c] {
				t.Errorf("%s: duplicate cell %d", p.ID(), c)
			}
			seen[c] = true
			covered[c] = true
		}
		if ids[p.ID()] {
			t.Errorf("duplicate pattern id %s", p.ID())
		}
		ids[p.ID()] = true
	}
	for i, ok := range covered {
		if !ok {
			t.Errorf("cell %d not covered by any pattern", i)
		}
	}
}

func TestPatternCells(t *testing.T) {
	tests := []struct {
		id    string
		cells [GridSize]int
	}{
		{"row-0", [5]int{0, 1, 2, 3, 4}},
		{"row-4", [5]int{20, 21, 22, 23, 24}},
		{"col-0", [5]int{0, 5, 10, 15, 20}},
		{"col-3", [5]int{3, 8, 13, 18, 23}},
		{"diag-0", [5]int{0, 6, 12, 18, 24}},
		{"diag-1", [5]int{4, 8, 12, 16, 20}},
	}
	for _, tc := range tests {
		t.Run(tc.id, func(t *testing.T) {
			p, ok := PatternByID(tc.id)
			if !ok {
				t.Fatalf("pattern %s not found", tc.id)
			}
			if p.Cells != tc.cells {
				t.Errorf("expected %v, got %v", tc.cells, p.Cells)
			}
		})
	}
}

func TestPatternOrder(t *testing.T) {
	var got []string
	for _, p := range Patterns() {
		got = append(got, p.ID())
	}
	var want []string
	for _, k := range []string{"row", "col"} {
		for i := range GridSize {
			want = append(want, fmt.Sprintf("%s-%d", k, i))
		}
	}
	want = append(want, "diag-0", "diag-1")
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestPatternsReturnsCopy(t *testing.T) {
	ps := Patterns()
	ps[0].Cells[0] = 99
	if Patterns()[0].Cells[0] != 0 {
		t.Error("mutating the returned slice changed the catalog")
	}
}

func TestPatternByIDUnknown(t *testing.T) {
	for _, id := range []string{"", "row", "row-5", "diag-2", "square-0", "row-x"} {
		if _, ok := PatternByID(id); ok {
			t.Errorf("PatternByID(%q) should not resolve", id)
		}
	}
}

func TestWonPatterns(t *testing.T) {
	tests := []struct {
		name   string
		marked []int
		want   []string
	}{
		{"free only", []int{12}, []string{}},
		{"row 0", []int{0, 1, 2, 3, 4, 12}, []string{"row-0"}},
		{"col 2 via free", []int{2, 7, 12, 17, 22}, []string{"col-2"}},
		{"both diagonals", []int{0, 4, 6, 8, 12, 16, 18, 20, 24}, []string{"diag-0", "diag-1"}},
		{"out of range ignored", []int{-1, 25, 0, 1, 2, 3, 4}, []string{"row-0"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := WonPatterns(tc.marked)
			if !slices.Equal(got, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
