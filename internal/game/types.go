// internal/game/types.go
//
// Core type definitions for the bingo engine.
// Defines:
//   - Card: a generated 5x5 layout with a title and 25 labels.
//   - State: the per-play record of marked cells and satisfied patterns.
//   - Pattern: one of the 12 fixed winning lines.

package game

import "time"

const (
	GridSize    = 5
	CellCount   = GridSize * GridSize
	FreeCell    = 12  // center cell, always marked, never shuffled
	MaxTitleLen = 100 // runes
	MaxItemLen  = 200 // runes
)

// Card is immutable once generated; play statistics change only through Played.
type Card struct {
	ID           string            `json:"id"`
	Owner        string            `json:"-"` // collection the card belongs to
	Title        string            `json:"title"`
	Cells        [CellCount]string `json:"cells"`
	CreatedAt    time.Time         `json:"createdAt"`
	LastPlayedAt time.Time         `json:"lastPlayedAt"`
	PlayCount    int               `json:"playCount"`
	Imported     bool              `json:"imported,omitempty"`
}

// Played returns a copy of c recording the start of a fresh play session.
func (c Card) Played(now time.Time) Card {
	c.PlayCount++
	c.LastPlayedAt = now
	return c
}

// State holds the progress of a single play session of a card.
//
// WonPatterns is derived from Marked and never set independently.
// CompletedAt is set once, the first time WonPatterns becomes non-empty.
type State struct {
	CardID      string     `json:"cardId"`
	Marked      []int      `json:"marked"`
	WonPatterns []string   `json:"wonPatterns"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// PatternKind distinguishes rows, columns and diagonals.
type PatternKind string

const (
	KindRow  PatternKind = "row"
	KindCol  PatternKind = "col"
	KindDiag PatternKind = "diag"
)

// Pattern is a winning line: five cells that, once all marked, constitute a bingo.
type Pattern struct {
	Kind  PatternKind   `json:"kind"`
	Index int           `json:"index"`
	Cells [GridSize]int `json:"cells"`
}
