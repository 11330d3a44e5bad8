// Package sqlite stores game snapshots in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/contaminados/internal/game"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	status     TEXT NOT NULL,
	state      BLOB NOT NULL,
	version    INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS games_status_idx ON games (status);
`

// Store persists games in SQLite, one JSON snapshot per row.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateGame inserts a new game row.
func (s *Store) CreateGame(ctx context.Context, g *game.Game) error {
	state, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal game %s: %w", g.ID, err)
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO games (id, name, status, state, version, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID.String(), g.Name, string(g.Status), state, g.Version, toMillis(g.CreatedAt), toMillis(g.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return game.ErrDuplicateGameName
	}
	if err != nil {
		return fmt.Errorf("insert game %s: %w", g.ID, err)
	}
	return nil
}

// LoadGame reads and decodes a game snapshot along with its version.
func (s *Store) LoadGame(ctx context.Context, id uuid.UUID) (*game.Game, error) {
	var (
		state   []byte
		version int64
	)
	err := s.sqlDB.QueryRowContext(ctx, `SELECT state, version FROM games WHERE id = ?`, id.String()).Scan(&state, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, game.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", id, err)
	}
	g, err := decode(state)
	if err != nil {
		return nil, err
	}
	g.Version = version
	return g, nil
}

// SaveGame replaces a game snapshot if its version still matches the stored
// one; otherwise it returns game.ErrStaleGame.
func (s *Store) SaveGame(ctx context.Context, g *game.Game) error {
	next := *g
	next.Version = g.Version + 1
	state, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("marshal game %s: %w", g.ID, err)
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE games SET status = ?, state = ?, version = ?, updated_at = ? WHERE id = ? AND version = ?`,
		string(g.Status), state, next.Version, toMillis(g.UpdatedAt), g.ID.String(), g.Version,
	)
	if err != nil {
		return fmt.Errorf("update game %s: %w", g.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update game %s: %w", g.ID, err)
	}
	if n == 1 {
		g.Version = next.Version
		return nil
	}

	var exists bool
	err = s.sqlDB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM games WHERE id = ?)`, g.ID.String()).Scan(&exists)
	if err != nil {
		return fmt.Errorf("update game %s: %w", g.ID, err)
	}
	if !exists {
		return game.ErrGameNotFound
	}
	return game.ErrStaleGame
}

// SearchGames filters on the indexed columns and pages in creation order.
func (s *Store) SearchGames(ctx context.Context, f game.Filter) ([]*game.Game, error) {
	f = f.Normalize()
	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT state FROM games
		WHERE (?1 = '' OR instr(name, ?1) > 0)
		  AND (?2 = '' OR status = ?2)
		ORDER BY created_at, rowid
		LIMIT ?3 OFFSET ?4`,
		f.Name, string(f.Status), f.Limit, f.Page*f.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search games: %w", err)
	}
	defer rows.Close()

	out := make([]*game.Game, 0, f.Limit)
	for rows.Next() {
		var state []byte
		if err := rows.Scan(&state); err != nil {
			return nil, fmt.Errorf("search games: %w", err)
		}
		g, err := decode(state)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search games: %w", err)
	}
	return out, nil
}

func decode(state []byte) (*game.Game, error) {
	var g game.Game
	if err := json.Unmarshal(state, &g); err != nil {
		return nil, fmt.Errorf("decode game state: %w", err)
	}
	return &g, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
