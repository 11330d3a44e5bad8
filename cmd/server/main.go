// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/contaminados/internal/auth"
	"github.com/jason-s-yu/contaminados/internal/cache"
	"github.com/jason-s-yu/contaminados/internal/config"
	"github.com/jason-s-yu/contaminados/internal/database"
	"github.com/jason-s-yu/contaminados/internal/events"
	"github.com/jason-s-yu/contaminados/internal/game"
	"github.com/jason-s-yu/contaminados/internal/handlers"
	"github.com/jason-s-yu/contaminados/internal/session"
	"github.com/jason-s-yu/contaminados/internal/sqlite"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatalf("server exited: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config, logger *logrus.Logger) error {
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	ttl, err := auth.ParseTTL(cfg.TokenExpireTime)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokens(ttl)
	if err != nil {
		return err
	}

	hub := events.NewHub(logger)
	sinks := events.Multi{events.NewLogSink(logger), hub}
	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		sinks = append(sinks, cache.NewPublisher(rdb, cfg.HistorianQueue))
		logger.Infof("Publishing game events to Redis queue %s", cfg.HistorianQueue)
	}

	opts := []session.Option{
		session.WithSink(sinks),
		session.WithTokens(tokens),
		session.WithLogger(logger),
	}
	if cfg.RandomSeed != 0 {
		opts = append(opts, session.WithRand(game.NewSeededRand(cfg.RandomSeed)))
	}
	svc := session.NewService(store, opts...)

	gs := &handlers.GameServer{Service: svc, Hub: hub, Tokens: tokens, Logger: logger}
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           gs.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore picks the game store named by STORE.
func openStore(ctx context.Context, cfg config.Config, logger *logrus.Logger) (session.Store, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("Using PostgreSQL game store")
		return database.NewStore(pool), pool.Close, nil
	case config.StoreSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Infof("Using SQLite game store at %s", cfg.SQLitePath)
		return s, func() { _ = s.Close() }, nil
	default:
		logger.Info("Using in-memory game store")
		return game.NewGameStore(), func() {}, nil
	}
}
