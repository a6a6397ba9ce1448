// internal/store/sqlite.go
//
// SQLite-backed Store.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying embedded migrations (idempotent, recorded in _migrations).
//   - Card/state persistence with upserts; deleting a card cascades to its state.
//
// Timestamps are stored as fixed-width UTC text so they sort lexically.
// Cells, marks and pattern IDs are stored as JSON arrays.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bingo/internal/game"
)

const tsLayout = "2006-01-02T15:04:05.000000000Z"

// OpenSQLite opens (and creates if missing) a SQLite database file.
//
// Ensures the parent directory exists for relative paths (e.g. ./data/bingo.db).
// Foreign keys are enabled through the DSN so every pooled connection has them.
func OpenSQLite(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}
	return db, nil
}

// Migrate applies *.sql files from migrations in lexical order.
// Applied files are recorded in _migrations and skipped on later runs.
func Migrate(db *sql.DB, migrations fs.FS) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	var files []string
	if err := fs.WalkDir(migrations, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("walk migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := fs.ReadFile(migrations, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// sqlStore implements Store on a migrated *sql.DB.
type sqlStore struct {
	db *sql.DB
}

// NewSQLStore wraps a database that has been migrated with Migrate.
func NewSQLStore(db *sql.DB) Store {
	return &sqlStore{db: db}
}

const cardColumns = `id, owner, title, cells, created_at, last_played_at, play_count, imported`

func (s *sqlStore) LoadCard(ctx context.Context, id string) (game.Card, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id=?`, id)
	return scanCard(row)
}

func (s *sqlStore) StoreCard(ctx context.Context, c game.Card) error {
	cells, err := json.Marshal(c.Cells)
	if err != nil {
		return fmt.Errorf("marshal cells: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO cards (`+cardColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            owner=excluded.owner,
            title=excluded.title,
            cells=excluded.cells,
            created_at=excluded.created_at,
            last_played_at=excluded.last_played_at,
            play_count=excluded.play_count,
            imported=excluded.imported`,
		c.ID, c.Owner, c.Title, string(cells), formatTS(c.CreatedAt), formatTS(c.LastPlayedAt), c.PlayCount, c.Imported,
	)
	return err
}

func (s *sqlStore) DeleteCard(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id=?`, id)
	return err
}

func (s *sqlStore) ListCards(ctx context.Context, owner string) ([]game.Card, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+cardColumns+`
        FROM cards
        WHERE owner=?
        ORDER BY last_played_at DESC, created_at DESC, id ASC`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []game.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *sqlStore) LoadState(ctx context.Context, cardID string) (game.State, error) {
	var (
		st                 game.State
		marked, won, start string
		completed          sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
        SELECT card_id, marked, won_patterns, started_at, completed_at
        FROM states WHERE card_id=?`, cardID,
	).Scan(&st.CardID, &marked, &won, &start, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return game.State{}, ErrNotFound
	}
	if err != nil {
		return game.State{}, err
	}
	if err := json.Unmarshal([]byte(marked), &st.Marked); err != nil {
		return game.State{}, fmt.Errorf("decode marked: %w", err)
	}
	if err := json.Unmarshal([]byte(won), &st.WonPatterns); err != nil {
		return game.State{}, fmt.Errorf("decode won_patterns: %w", err)
	}
	st.StartedAt = parseTS(start)
	if completed.Valid {
		t := parseTS(completed.String)
		st.CompletedAt = &t
	}
	return st, nil
}

func (s *sqlStore) StoreState(ctx context.Context, st game.State) error {
	marked, err := json.Marshal(nonNil(st.Marked))
	if err != nil {
		return err
	}
	won, err := json.Marshal(nonNil(st.WonPatterns))
	if err != nil {
		return err
	}
	var completed sql.NullString
	if st.CompletedAt != nil {
		completed = sql.NullString{String: formatTS(*st.CompletedAt), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM cards WHERE id=?`, st.CardID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO states (card_id, marked, won_patterns, started_at, completed_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(card_id) DO UPDATE SET
            marked=excluded.marked,
            won_patterns=excluded.won_patterns,
            started_at=excluded.started_at,
            completed_at=excluded.completed_at`,
		st.CardID, string(marked), string(won), formatTS(st.StartedAt), completed,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (game.Card, error) {
	var (
		c                 game.Card
		cells             string
		created, lastPlay string
	)
	err := row.Scan(&c.ID, &c.Owner, &c.Title, &cells, &created, &lastPlay, &c.PlayCount, &c.Imported)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Card{}, ErrNotFound
	}
	if err != nil {
		return game.Card{}, err
	}
	if err := json.Unmarshal([]byte(cells), &c.Cells); err != nil {
		return game.Card{}, fmt.Errorf("decode cells of %s: %w", c.ID, err)
	}
	c.CreatedAt = parseTS(created)
	c.LastPlayedAt = parseTS(lastPlay)
	return c, nil
}

func formatTS(t time.Time) string { return t.UTC().Format(tsLayout) }

// parseTS parses stored timestamps; on error returns zero time.
func parseTS(s string) time.Time {
	t, _ := time.Parse(tsLayout, s)
	return t
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
