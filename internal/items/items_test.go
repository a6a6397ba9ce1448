package items

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/robalobadob/bingo/internal/game"
)

func TestParseLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"simple", "a\nb\nc", []string{"a", "b", "c"}},
		{"trim and drop blanks", "  a  \n\n\t\nb\r\n  \nc  ", []string{"a", "b", "c"}},
		{"empty", "", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseLines(tc.in); !slices.Equal(got, tc.want) {
				t.Errorf("ParseLines = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseLinesCaps(t *testing.T) {
	var lines []string
	for i := range 30 {
		lines = append(lines, fmt.Sprintf("item %d", i))
	}
	lines[0] = strings.Repeat("z", game.MaxItemLen+10)
	got := ParseLines(strings.Join(lines, "\n"))
	if len(got) != game.CellCount {
		t.Fatalf("kept %d items, want %d", len(got), game.CellCount)
	}
	if len(got[0]) != game.MaxItemLen {
		t.Errorf("first item length = %d", len(got[0]))
	}
	if got[24] != "item 24" {
		t.Errorf("last item = %q", got[24])
	}
}

func TestSanitize(t *testing.T) {
	raw := make([]string, 0, 27)
	for i := range 25 {
		raw = append(raw, fmt.Sprintf("  item %d ", i))
	}
	raw = append(raw, "", "   ")

	title, out, err := Sanitize("  Office Bingo  ", raw)
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if title != "Office Bingo" {
		t.Errorf("title = %q", title)
	}
	if len(out) != 25 || out[0] != "item 0" {
		t.Errorf("items = %q", out)
	}

	if _, _, err := Sanitize("   ", raw); !errors.Is(err, ErrTitleRequired) {
		t.Errorf("blank title: got %v", err)
	}
	if _, _, err := Sanitize("x", raw[:24]); err == nil {
		t.Error("24 items accepted")
	}

	long, _, err := Sanitize(strings.Repeat("t", 150), raw)
	if err != nil || len(long) != game.MaxTitleLen {
		t.Errorf("long title: %d runes, err %v", len(long), err)
	}
}

func TestSample(t *testing.T) {
	title, list, err := Sample()
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if title != "Meeting Bingo" || len(list) != game.CellCount {
		t.Fatalf("sample = %q with %d items", title, len(list))
	}
	if list[game.FreeCell] != "FREE" {
		t.Errorf("free cell label = %q", list[game.FreeCell])
	}
	list[0] = "changed"
	_, again, _ := Sample()
	if again[0] == "changed" {
		t.Error("Sample returned shared storage")
	}
	if _, err := game.Generate(title, again, false); err != nil {
		t.Errorf("sample does not generate: %v", err)
	}
}
