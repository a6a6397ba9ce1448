// internal/game/patterns.go
//
// Catalog of the 12 winning lines of a 5x5 grid:
// 5 rows, 5 columns, then the two diagonals.
// Cells are row-major (row*5+col).

package game

import (
	"strconv"
	"strings"
)

var catalog = buildCatalog()

func buildCatalog() []Pattern {
	out := make([]Pattern, 0, 2*GridSize+2)
	for row := range GridSize {
		p := Pattern{Kind: KindRow, Index: row}
		for col := range GridSize {
			p.Cells[col] = row*GridSize + col
		}
		out = append(out, p)
	}
	for col := range GridSize {
		p := Pattern{Kind: KindCol, Index: col}
		for row := range GridSize {
			p.Cells[row] = row*GridSize + col
		}
		out = append(out, p)
	}
	down, up := Pattern{Kind: KindDiag, Index: 0}, Pattern{Kind: KindDiag, Index: 1}
	for i := range GridSize {
		down.Cells[i] = i*GridSize + i
		up.Cells[i] = i*GridSize + (GridSize - 1 - i)
	}
	return append(out, down, up)
}

// Patterns returns the winning lines in catalog order.
func Patterns() []Pattern {
	return append([]Pattern(nil), catalog...)
}

// ID is the stable "<kind>-<index>" identifier, e.g. "row-0" or "diag-1".
func (p Pattern) ID() string {
	return string(p.Kind) + "-" + strconv.Itoa(p.Index)
}

// Covered reports whether every cell of p is in marked.
func (p Pattern) Covered(marked []bool) bool {
	for _, c := range p.Cells {
		if !marked[c] {
			return false
		}
	}
	return true
}

// PatternByID resolves an identifier produced by Pattern.ID.
func PatternByID(id string) (Pattern, bool) {
	kind, idx, ok := strings.Cut(id, "-")
	if !ok {
		return Pattern{}, false
	}
	for _, p := range catalog {
		if string(p.Kind) == kind && strconv.Itoa(p.Index) == idx {
			return p, true
		}
	}
	return Pattern{}, false
}

// WonPatterns returns the IDs of all patterns fully covered by marked, in catalog order.
// Indices outside the grid are ignored.
func WonPatterns(marked []int) []string {
	set := markSet(marked)
	won := []string{}
	for _, p := range catalog {
		if p.Covered(set) {
			won = append(won, p.ID())
		}
	}
	return won
}

func markSet(marked []int) []bool {
	set := make([]bool, CellCount)
	for _, i := range marked {
		if i >= 0 && i < CellCount {
			set[i] = true
		}
	}
	return set
}
