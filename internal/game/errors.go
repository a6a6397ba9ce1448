// internal/game/errors.go
//
// Typed errors returned by card generation and the toggle state machine.

package game

import "fmt"

// ValidationError reports card input that cannot be turned into a card.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidIndexError reports a toggle outside the 5x5 grid.
type InvalidIndexError struct {
	Index int
}

func (e *InvalidIndexError) Error() string {
	return fmt.Sprintf("cell index %d out of range [0,%d]", e.Index, CellCount-1)
}
