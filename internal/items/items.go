// internal/items/items.go
//
// Helpers for the card-creation form.
//
// Responsibilities:
//   - Parse a bulk paste (one item per line) into card items.
//   - Apply the form rules before a card is generated: trimmed, non-empty
//     title and exactly 25 non-empty items, each capped at 200 characters.
//   - Supply an embedded sample card to pre-fill the form.
//
// Lengths are counted in runes.

package items

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/robalobadob/bingo/assets"
	"github.com/robalobadob/bingo/internal/game"
)

// ParseLines splits a paste into items: lines are trimmed, blank lines
// dropped, each item capped at game.MaxItemLen, and at most 25 kept.
func ParseLines(text string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		s := strings.TrimSpace(line)
		if s == "" {
			continue
		}
		out = append(out, game.Truncate(s, game.MaxItemLen))
		if len(out) == game.CellCount {
			break
		}
	}
	return out
}

// ErrTitleRequired is returned by Sanitize for a blank title.
var ErrTitleRequired = errors.New("title is required")

// Sanitize applies the creation-form rules: the title is trimmed and must not
// be blank, items are trimmed, blank items are dropped, and overlong values
// are cut to their limits. Exactly 25 items must remain.
func Sanitize(title string, raw []string) (string, []string, error) {
	title = game.Truncate(strings.TrimSpace(title), game.MaxTitleLen)
	if title == "" {
		return "", nil, ErrTitleRequired
	}
	out := make([]string, 0, len(raw))
	for _, it := range raw {
		if s := strings.TrimSpace(it); s != "" {
			out = append(out, game.Truncate(s, game.MaxItemLen))
		}
	}
	if len(out) != game.CellCount {
		return "", nil, fmt.Errorf("need exactly %d non-empty items, got %d", game.CellCount, len(out))
	}
	return title, out, nil
}

var (
	sampleOnce  sync.Once
	sampleTitle string
	sampleItems []string
	sampleErr   error
)

// Sample returns the embedded example card (title + 25 items).
// Loaded once; the returned slice is a copy.
func Sample() (string, []string, error) {
	sampleOnce.Do(func() {
		lines, err := assets.SampleLines()
		if err != nil {
			sampleErr = err
			return
		}
		if len(lines) != game.CellCount+1 {
			sampleErr = fmt.Errorf("items: sample has %d lines, want %d", len(lines), game.CellCount+1)
			return
		}
		sampleTitle = lines[0]
		sampleItems = lines[1:]
	})
	if sampleErr != nil {
		return "", nil, sampleErr
	}
	return sampleTitle, append([]string(nil), sampleItems...), nil
}
