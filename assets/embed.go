package assets

import (
	"bufio"
	"embed"
	"io/fs"
	"strings"
)

//go:embed sample_items.txt sql/*.sql
var FS embed.FS

// Migrations exposes the embedded sql/ directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		panic(err) // embedded path is fixed at compile time
	}
	return sub
}

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// SampleLines returns the sample card: its title followed by its items.
func SampleLines() ([]string, error) {
	return readLines("sample_items.txt")
}
