// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Used for ephemeral sessions, primarily in development/testing, or when
// durability is not required (STORE=memory).
//
// Characteristics:
//   - Cards and states keyed by ID in maps.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Values are copied in and out, so callers never share slices with the store.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"slices"
	"sync"

	"github.com/robalobadob/bingo/internal/game"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu     sync.RWMutex          // guards both maps
	cards  map[string]game.Card  // keyed by Card.ID
	states map[string]game.State // keyed by State.CardID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		cards:  make(map[string]game.Card),
		states: make(map[string]game.State),
	}
}

func (m *memory) LoadCard(ctx context.Context, id string) (game.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.cards[id]; ok {
		return c, nil
	}
	return game.Card{}, ErrNotFound
}

func (m *memory) StoreCard(ctx context.Context, c game.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards[c.ID] = c
	return nil
}

// DeleteCard removes the card and its state. Deleting a missing card is not an error.
func (m *memory) DeleteCard(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cards, id)
	delete(m.states, id)
	return nil
}

func (m *memory) ListCards(ctx context.Context, owner string) ([]game.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []game.Card{}
	for _, c := range m.cards {
		if c.Owner == owner {
			out = append(out, c)
		}
	}
	sortByLastPlayed(out)
	return out, nil
}

func (m *memory) LoadState(ctx context.Context, cardID string) (game.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.states[cardID]
	if !ok {
		return game.State{}, ErrNotFound
	}
	return copyState(s), nil
}

func (m *memory) StoreState(ctx context.Context, s game.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cards[s.CardID]; !ok {
		return ErrNotFound
	}
	m.states[s.CardID] = copyState(s)
	return nil
}

func copyState(s game.State) game.State {
	s.Marked = slices.Clone(s.Marked)
	s.WonPatterns = slices.Clone(s.WonPatterns)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		s.CompletedAt = &t
	}
	return s
}
