package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/contaminados/internal/cache"
	"github.com/jason-s-yu/contaminados/internal/game"
)

// Archive is the historian's write side: an append-only event log plus one
// history row per game.
type Archive struct {
	pool *pgxpool.Pool
}

// NewArchive returns an Archive backed by pool.
func NewArchive(pool *pgxpool.Pool) *Archive {
	return &Archive{pool: pool}
}

// ArchiveEvents writes a batch of event records in one transaction.
func (a *Archive) ArchiveEvents(ctx context.Context, records []cache.EventRecord) error {
	return pgx.BeginTxFunc(ctx, a.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range records {
			if err := insertEventTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insertEventTx: %w", err)
			}
		}
		return nil
	})
}

// MarkAbandoned closes the history of a game that went quiet before ending.
func (a *Archive) MarkAbandoned(ctx context.Context, gameID uuid.UUID) error {
	q := `
		UPDATE game_history
		SET status = 'abandoned', ended_at = NOW()
		WHERE game_id = $1 AND status = 'in_progress'
	`
	_, err := a.pool.Exec(ctx, q, gameID)
	return err
}

func insertEventTx(ctx context.Context, tx pgx.Tx, rec cache.EventRecord) error {
	at := time.UnixMilli(rec.Timestamp).UTC()
	upsertQ := `
		INSERT INTO game_history (game_id, status, started_at, last_event_at)
		VALUES ($1, 'in_progress', $2, $2)
		ON CONFLICT (game_id)
		DO UPDATE SET last_event_at = GREATEST(game_history.last_event_at, $2)
	`
	if _, err := tx.Exec(ctx, upsertQ, rec.GameID, at); err != nil {
		return err
	}

	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return err
	}
	var roundID *uuid.UUID
	if rec.RoundID != uuid.Nil {
		roundID = &rec.RoundID
	}
	insertQ := `
		INSERT INTO game_events (game_id, round_id, event_type, player, payload, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
	`
	if _, err := tx.Exec(ctx, insertQ, rec.GameID, roundID, rec.EventType, rec.Player, payload, at); err != nil {
		return err
	}

	if rec.EventType == string(game.EventGameEnded) {
		winner, _ := rec.Payload["winner"].(string)
		finalizeQ := `
			UPDATE game_history
			SET status = 'completed', winner = $2, ended_at = $3
			WHERE game_id = $1 AND status = 'in_progress'
		`
		if _, err := tx.Exec(ctx, finalizeQ, rec.GameID, winner, at); err != nil {
			return err
		}
	}
	return nil
}
