package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("STORE", "memory")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("RANDOM_SEED", "0")
	t.Setenv("HISTORIAN_QUEUE_NAME", "contaminados_events")
	t.Setenv("HISTORIAN_FLUSH_MS", "500")
	t.Setenv("HISTORIAN_BATCH_SIZE", "20")
	t.Setenv("GAME_INACTIVITY_TIMEOUT_SEC", "600")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "contaminados_events", cfg.HistorianQueue)
	assert.Equal(t, 500*time.Millisecond, cfg.FlushDelay())
	assert.Equal(t, 10*time.Minute, cfg.InactivityTimeout())
	assert.Equal(t, logrus.InfoLevel, cfg.NewLogger().GetLevel())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORE", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("HISTORIAN_BATCH_SIZE", "5")
	t.Setenv("RANDOM_SEED", "42")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
	assert.Equal(t, 5, cfg.HistorianBatchSize)
	assert.Equal(t, int64(42), cfg.RandomSeed)
	assert.Equal(t, logrus.DebugLevel, cfg.NewLogger().GetLevel())
}

func TestValidate(t *testing.T) {
	base := Config{Store: StoreMemory, LogLevel: "info", HistorianBatchSize: 1, HistorianFlushMs: 1}
	require.NoError(t, base.Validate())

	pg := base
	pg.Store = StorePostgres
	assert.Error(t, pg.Validate())
	pg.DatabaseURL = "postgres://localhost/x"
	assert.NoError(t, pg.Validate())

	bad := base
	bad.Store = "mongo"
	assert.Error(t, bad.Validate())

	bad = base
	bad.LogLevel = "loud"
	assert.Error(t, bad.Validate())

	bad = base
	bad.HistorianBatchSize = 0
	assert.Error(t, bad.Validate())
}
