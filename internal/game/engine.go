// internal/game/engine.go
//
// Game state machine for a single play session.
// Responsibilities:
//   - Create fresh sessions with only the free cell marked.
//   - Toggle cells, recomputing won patterns from the catalog every time.
//   - Report the not-won → won edge so callers can celebrate.
//   - Record the first completion time exactly once.
//
// Notes:
//   - States are values; Toggle never mutates its receiver.
//   - A state is "won" while WonPatterns is non-empty. Unmarking can return it to
//     in-progress, and the next completed line is reported as a new win again,
//     but CompletedAt keeps the first one.

package game

import (
	"slices"
	"time"
)

// NewState returns a fresh session for cardID (also used to reset a card).
func NewState(cardID string, now time.Time) State {
	return State{
		CardID:      cardID,
		Marked:      []int{FreeCell},
		WonPatterns: []string{},
		StartedAt:   now,
	}
}

// Toggle flips cell and returns the next state plus whether this toggle
// produced a new win (zero won patterns before, at least one after).
//
// Toggling FreeCell is ignored: the free cell can never be unmarked.
// Out-of-range cells fail with *InvalidIndexError and leave s untouched.
func (s State) Toggle(cell int, now time.Time) (State, bool, error) {
	if cell < 0 || cell >= CellCount {
		return s, false, &InvalidIndexError{Index: cell}
	}
	prev := s.Normalize()
	next := prev.clone()
	if cell != FreeCell {
		if i, found := slices.BinarySearch(next.Marked, cell); found {
			next.Marked = slices.Delete(next.Marked, i, i+1)
		} else {
			next.Marked = slices.Insert(next.Marked, i, cell)
		}
	}
	next.WonPatterns = WonPatterns(next.Marked)

	newWin := len(prev.WonPatterns) == 0 && len(next.WonPatterns) > 0
	if newWin && next.CompletedAt == nil {
		t := now
		next.CompletedAt = &t
	}
	return next, newWin, nil
}

// Normalize returns a copy of s with a sorted, de-duplicated, in-range mark set
// that contains FreeCell, and WonPatterns re-derived from it.
// Persisted states written by older clients may lack the free cell.
func (s State) Normalize() State {
	n := s.clone()
	marked := make([]int, 0, len(n.Marked)+1)
	marked = append(marked, FreeCell)
	for _, i := range n.Marked {
		if i >= 0 && i < CellCount {
			marked = append(marked, i)
		}
	}
	slices.Sort(marked)
	n.Marked = slices.Compact(marked)
	n.WonPatterns = WonPatterns(n.Marked)
	return n
}

// Won reports whether at least one pattern is currently complete.
func (s State) Won() bool { return len(s.WonPatterns) > 0 }

// IsMarked reports whether cell is marked. The free cell always is.
func (s State) IsMarked(cell int) bool {
	return cell == FreeCell || slices.Contains(s.Marked, cell)
}

// WinningCells returns the sorted union of cells covered by the won patterns.
func (s State) WinningCells() []int {
	set := make([]bool, CellCount)
	for _, id := range s.WonPatterns {
		if p, ok := PatternByID(id); ok {
			for _, c := range p.Cells {
				set[c] = true
			}
		}
	}
	out := []int{}
	for i, ok := range set {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

func (s State) clone() State {
	c := s
	c.Marked = slices.Clone(s.Marked)
	c.WonPatterns = slices.Clone(s.WonPatterns)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return c
}
