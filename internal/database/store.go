// internal/database/store.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/contaminados/internal/game"
)

const uniqueViolation = "23505"

// Store keeps one JSONB snapshot per game in the games table.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store backed by pool. Call EnsureSchema first.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CreateGame inserts a new game row.
func (s *Store) CreateGame(ctx context.Context, g *game.Game) error {
	state, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal game %s: %w", g.ID, err)
	}
	q := `
		INSERT INTO games (id, name, status, state, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.pool.Exec(ctx, q, g.ID, g.Name, string(g.Status), state, g.Version, g.CreatedAt, g.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return game.ErrDuplicateGameName
	}
	if err != nil {
		return fmt.Errorf("insert game %s: %w", g.ID, err)
	}
	return nil
}

// LoadGame reads and decodes a game snapshot. The version column wins over
// the one embedded in the snapshot.
func (s *Store) LoadGame(ctx context.Context, id uuid.UUID) (*game.Game, error) {
	var (
		state   []byte
		version int64
	)
	err := s.pool.QueryRow(ctx, `SELECT state, version FROM games WHERE id = $1`, id).Scan(&state, &version)
	if errors.Is(err, pgx.ErrNoRows) {
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

// SaveGame replaces a game snapshot only if nobody saved it since g was
// loaded, and returns game.ErrStaleGame otherwise. This keeps servers that
// share the database from overwriting each other's moves.
func (s *Store) SaveGame(ctx context.Context, g *game.Game) error {
	next := *g
	next.Version = g.Version + 1
	state, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("marshal game %s: %w", g.ID, err)
	}
	err = pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			UPDATE games
			SET status = $2, state = $3, version = $4, updated_at = $5
			WHERE id = $1 AND version = $6
		`
		tag, err := tx.Exec(ctx, q, g.ID, string(g.Status), state, next.Version, g.UpdatedAt, g.Version)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 1 {
			return nil
		}
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM games WHERE id = $1)`, g.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return game.ErrGameNotFound
		}
		return game.ErrStaleGame
	})
	if err != nil {
		return err
	}
	g.Version = next.Version
	return nil
}

// SearchGames filters on the indexed columns and pages in creation order.
func (s *Store) SearchGames(ctx context.Context, f game.Filter) ([]*game.Game, error) {
	f = f.Normalize()
	q := `
		SELECT state FROM games
		WHERE ($1 = '' OR strpos(name, $1) > 0)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at, id
		LIMIT $3 OFFSET $4
	`
	rows, err := s.pool.Query(ctx, q, f.Name, string(f.Status), f.Limit, f.Page*f.Limit)
	if err != nil {
		return nil, fmt.Errorf("search games: %w", err)
	}
	states, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("search games: %w", err)
	}

	out := make([]*game.Game, 0, len(states))
	for _, state := range states {
		g, err := decode(state)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
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
