package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/contaminados/internal/cache"
	"github.com/jason-s-yu/contaminados/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, EnsureSchema(ctx, pool))
	return pool
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore(testPool(t))

	g, err := game.NewGame("pg-"+uuid.NewString(), "ana", "")
	require.NoError(t, err)
	require.NoError(t, s.CreateGame(ctx, g))

	dup, err := game.NewGame(g.Name, "bea", "")
	require.NoError(t, err)
	assert.ErrorIs(t, s.CreateGame(ctx, dup), game.ErrDuplicateGameName)

	loaded, err := s.LoadGame(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.Name, loaded.Name)
	assert.Equal(t, []string{"ana"}, loaded.Roster.Names())

	_, err = loaded.Join("bea")
	require.NoError(t, err)
	require.NoError(t, s.SaveGame(ctx, loaded))

	again, err := s.LoadGame(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Roster.Len())

	_, err = s.LoadGame(ctx, uuid.New())
	assert.ErrorIs(t, err, game.ErrGameNotFound)
	assert.ErrorIs(t, s.SaveGame(ctx, dup), game.ErrGameNotFound)

	found, err := s.SearchGames(ctx, game.Filter{Name: g.Name, Status: game.StatusLobby})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, g.ID, found[0].ID)
}

func TestStoreRejectsStaleSaves(t *testing.T) {
	ctx := context.Background()
	s := NewStore(testPool(t))
	g, err := game.NewGame("pg-"+uuid.NewString(), "ana", "")
	require.NoError(t, err)
	require.NoError(t, s.CreateGame(ctx, g))

	a, err := s.LoadGame(ctx, g.ID)
	require.NoError(t, err)
	b, err := s.LoadGame(ctx, g.ID)
	require.NoError(t, err)

	_, err = a.Join("bea")
	require.NoError(t, err)
	require.NoError(t, s.SaveGame(ctx, a))

	_, err = b.Join("caro")
	require.NoError(t, err)
	assert.ErrorIs(t, s.SaveGame(ctx, b), game.ErrStaleGame)

	stored, err := s.LoadGame(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ana", "bea"}, stored.Roster.Names())
	assert.Equal(t, int64(1), stored.Version)
}

func TestArchiveEvents(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t)
	a := NewArchive(pool)
	gameID := uuid.New()
	now := time.Now()

	require.NoError(t, a.ArchiveEvents(ctx, []cache.EventRecord{
		{GameID: gameID, EventType: string(game.EventGameCreated), Player: "ana", Timestamp: now.UnixMilli()},
		{GameID: gameID, EventType: string(game.EventGameEnded), Payload: map[string]interface{}{"winner": "citizens"}, Timestamp: now.UnixMilli()},
	}))

	var status, winner string
	err := pool.QueryRow(ctx, `SELECT status, winner FROM game_history WHERE game_id = $1`, gameID).Scan(&status, &winner)
	require.NoError(t, err)
	assert.Equal(t, "completed", status)
	assert.Equal(t, "citizens", winner)

	require.NoError(t, a.MarkAbandoned(ctx, gameID))
	err = pool.QueryRow(ctx, `SELECT status FROM game_history WHERE game_id = $1`, gameID).Scan(&status)
	require.NoError(t, err)
	assert.Equal(t, "completed", status, "finished games are never abandoned")
}
