// internal/game/card.go
//
// Card generation.
// Responsibilities:
//   - Validate the raw title/items supplied by a creator or a share token.
//   - Assign a fresh uuid.
//   - Keep the free cell label in place and shuffle the other 24 labels
//     (Fisher–Yates over the non-free slots only).
//
// Every generation reshuffles, so two players opening the same shared link
// see different layouts.

package game

import (
	"math/rand/v2"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Generator builds cards. The zero value is not usable; use NewGenerator.
type Generator struct {
	intN  func(n int) int
	now   func() time.Time
	newID func() string
}

// Option customises a Generator.
type Option func(*Generator)

// WithRand makes shuffles draw from r (useful for deterministic tests).
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.intN = r.IntN }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithIDs replaces the uuid source.
func WithIDs(newID func() string) Option {
	return func(g *Generator) { g.newID = newID }
}

// NewGenerator returns a generator backed by math/rand/v2, the wall clock and uuid v4.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		intN:  rand.IntN,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

var defaultGenerator = NewGenerator()

// Generate builds a card with the default generator.
func Generate(title string, items []string, imported bool) (Card, error) {
	return defaultGenerator.Generate(title, items, imported)
}

// Generate validates title and items and returns a freshly shuffled card.
//
// Fails with *ValidationError when len(items) != 25, the title is longer than
// MaxTitleLen runes, or any string is not valid UTF-8. Items longer than MaxItemLen runes are truncated.
func (g *Generator) Generate(title string, items []string, imported bool) (Card, error) {
	if len(items) != CellCount {
		return Card{}, &ValidationError{Field: "items", Reason: "need exactly " + strconv.Itoa(CellCount) + ", got " + strconv.Itoa(len(items))}
	}
	if !utf8.ValidString(title) {
		return Card{}, &ValidationError{Field: "title", Reason: "not valid UTF-8"}
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return Card{}, &ValidationError{Field: "title", Reason: "must be " + strconv.Itoa(MaxTitleLen) + " characters or less"}
	}
	for i, it := range items {
		if !utf8.ValidString(it) {
			return Card{}, &ValidationError{Field: "items", Reason: "item " + strconv.Itoa(i) + " is not valid UTF-8"}
		}
	}

	now := g.now()
	c := Card{
		ID:           g.newID(),
		Title:        title,
		CreatedAt:    now,
		LastPlayedAt: now,
		Imported:     imported,
	}
	for i, it := range items {
		c.Cells[i] = Truncate(it, MaxItemLen)
	}
	g.shuffle(&c.Cells)
	return c, nil
}

// shuffle permutes every cell except FreeCell, uniformly.
func (g *Generator) shuffle(cells *[CellCount]string) {
	slots := make([]int, 0, CellCount-1)
	for i := range CellCount {
		if i != FreeCell {
			slots = append(slots, i)
		}
	}
	for i := len(slots) - 1; i > 0; i-- {
		j := g.intN(i + 1)
		a, b := slots[i], slots[j]
		cells[a], cells[b] = cells[b], cells[a]
	}
}

// Truncate cuts s to at most n runes. It never pads.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
