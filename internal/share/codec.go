// internal/share/codec.go
//
// Share tokens: a card's title and 25 labels packed into a URL-safe string,
// so the link itself carries the card and nothing is stored server-side.
//
// Token layout (outermost first):
//   url.QueryEscape( base64url-nopad( snappy( json{"title","items"} ) ) )
//
// Snappy's back-references collapse the repeated `","` runs of a JSON string
// array. The alphabet of unpadded base64url is already query-safe, so the
// escape step is normally a no-op; it stays so tokens embedded elsewhere
// still round-trip.

package share

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/golang/snappy"

	"github.com/robalobadob/bingo/internal/game"
)

// Shared is the portion of a card that travels in a link.
type Shared struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// DecodeError reports a token that is malformed, cannot be inverted,
// or does not describe a 25-item card.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return "share: " + e.Reason + ": " + e.Err.Error()
	}
	return "share: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ErrInvalidUTF8 is returned by Encode for a card holding malformed text.
var ErrInvalidUTF8 = errors.New("not valid UTF-8")

var enc = base64.RawURLEncoding

// maxDecodedLen bounds the JSON a token may expand to. A full card of
// 200-rune labels is well under this even with every rune escaped.
const maxDecodedLen = 64 << 10

// Encode packs the card's title and current cell order into a token.
// Strings that are not valid UTF-8 are rejected, since JSON would replace
// their bad bytes and the token would no longer decode to the same card.
func Encode(c game.Card) (string, error) {
	if !utf8.ValidString(c.Title) {
		return "", fmt.Errorf("share: title: %w", ErrInvalidUTF8)
	}
	for i, it := range c.Cells {
		if !utf8.ValidString(it) {
			return "", fmt.Errorf("share: cell %d: %w", i, ErrInvalidUTF8)
		}
	}
	raw, err := json.Marshal(Shared{Title: c.Title, Items: c.Cells[:]})
	if err != nil {
		return "", fmt.Errorf("share: marshal: %w", err)
	}
	return pack(raw), nil
}

func pack(raw []byte) string {
	return url.QueryEscape(enc.EncodeToString(snappy.Encode(nil, raw)))
}

// Decode reverses Encode and validates the result.
// Title and items are truncated to game.MaxTitleLen / game.MaxItemLen runes.
func Decode(token string) (Shared, error) {
	unescaped, err := url.QueryUnescape(strings.TrimSpace(token))
	if err != nil {
		return Shared{}, &DecodeError{Reason: "percent-decoding", Err: err}
	}
	if unescaped == "" {
		return Shared{}, &DecodeError{Reason: "empty token"}
	}
	compressed, err := enc.DecodeString(unescaped)
	if err != nil {
		return Shared{}, &DecodeError{Reason: "base64", Err: err}
	}
	n, err := snappy.DecodedLen(compressed)
	if err != nil {
		return Shared{}, &DecodeError{Reason: "decompress", Err: err}
	}
	if n > maxDecodedLen {
		return Shared{}, &DecodeError{Reason: fmt.Sprintf("decoded size %d exceeds %d", n, maxDecodedLen)}
	}
	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return Shared{}, &DecodeError{Reason: "decompress", Err: err}
	}

	var s Shared
	if err := json.Unmarshal(raw, &s); err != nil {
		return Shared{}, &DecodeError{Reason: "malformed card", Err: err}
	}
	if s.Title == "" {
		return Shared{}, &DecodeError{Reason: "missing title"}
	}
	if len(s.Items) != game.CellCount {
		return Shared{}, &DecodeError{Reason: fmt.Sprintf("expected %d items, got %d", game.CellCount, len(s.Items))}
	}

	s.Title = game.Truncate(s.Title, game.MaxTitleLen)
	for i, it := range s.Items {
		s.Items[i] = game.Truncate(it, game.MaxItemLen)
	}
	return s, nil
}

// IsValid reports whether token decodes to a titled 25-item card. It never panics.
func IsValid(token string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	s, err := Decode(token)
	return err == nil && s.Title != "" && len(s.Items) == game.CellCount
}

// URL builds the share link for c: <base>/play?data=<token>.
func URL(base string, c game.Card) (string, error) {
	tok, err := Encode(c)
	if err != nil {
		return "", err
	}
	return URLFor(base, tok), nil
}

// URLFor builds the share link for an already encoded token.
func URLFor(base, token string) string {
	return strings.TrimRight(base, "/") + "/play?data=" + token
}

// IsDecodeError reports whether err came from a bad token.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
