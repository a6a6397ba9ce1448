// internal/store/store.go
//
// Persistence for cards and their play state.
// The game engine never touches storage; handlers load a Card/State pair,
// run the engine on the values, and store the results. Last write wins.

package store

import (
	"context"
	"errors"
	"sort"

	"github.com/robalobadob/bingo/internal/game"
)

// ErrNotFound is returned when a card or state does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for cards and game states.
// Implementations: memory (this package) and SQL (sqlite).
type Store interface {
	// LoadCard retrieves a card by ID.
	LoadCard(ctx context.Context, id string) (game.Card, error)

	// StoreCard inserts or replaces a card by ID.
	StoreCard(ctx context.Context, c game.Card) error

	// DeleteCard removes a card together with its game state.
	DeleteCard(ctx context.Context, id string) error

	// ListCards returns the cards of one collection, most recently played first.
	ListCards(ctx context.Context, owner string) ([]game.Card, error)

	// LoadState retrieves the game state of a card.
	LoadState(ctx context.Context, cardID string) (game.State, error)

	// StoreState inserts or replaces the game state of an existing card.
	StoreState(ctx context.Context, s game.State) error
}

// sortByLastPlayed orders cards most recently played first; ties by creation, then ID.
func sortByLastPlayed(cards []game.Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		a, b := cards[i], cards[j]
		if !a.LastPlayedAt.Equal(b.LastPlayedAt) {
			return a.LastPlayedAt.After(b.LastPlayedAt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
