// Package historian drains the Redis event queue into the Postgres archive and
// marks games abandoned once they go quiet.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/contaminados/internal/cache"
	"github.com/jason-s-yu/contaminados/internal/game"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Writer persists archived events.
type Writer interface {
	ArchiveEvents(ctx context.Context, records []cache.EventRecord) error
	MarkAbandoned(ctx context.Context, gameID uuid.UUID) error
}

// Options tune batching and abandonment. MaxPending caps the records held
// while the writer keeps failing; the oldest are dropped beyond it.
type Options struct {
	Queue      string
	BatchSize  int
	MaxPending int
	FlushDelay time.Duration
	Inactivity time.Duration
}

// Service pops event records from Redis, writes them in batches, and tracks
// the last activity of every game it has seen.
type Service struct {
	rdb    *redis.Client
	writer Writer
	opts   Options
	logger *logrus.Logger

	lastActivity sync.Map // map[uuid.UUID]time.Time

	batchMu sync.Mutex
	batch   []cache.EventRecord
}

// New builds a Service. rdb may be nil when only Handle and Flush are used.
func New(rdb *redis.Client, writer Writer, opts Options, logger *logrus.Logger) *Service {
	if opts.Queue == "" {
		opts.Queue = cache.DefaultQueueName
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.MaxPending < opts.BatchSize {
		opts.MaxPending = 50 * opts.BatchSize
	}
	if opts.FlushDelay <= 0 {
		opts.FlushDelay = 500 * time.Millisecond
	}
	if opts.Inactivity <= 0 {
		opts.Inactivity = 10 * time.Minute
	}
	return &Service{
		rdb:    rdb,
		writer: writer,
		opts:   opts,
		logger: logger,
		batch:  make([]cache.EventRecord, 0, opts.BatchSize),
	}
}

// Run blocks until ctx is cancelled, then flushes what is left.
func (s *Service) Run(ctx context.Context) error {
	s.logger.WithField("queue", s.opts.Queue).Info("historian started")
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.readLoop(gctx) })
	g.Go(func() error { return s.flushLoop(gctx) })
	g.Go(func() error { return s.inactivityLoop(gctx) })
	err := g.Wait()

	s.Flush(context.Background())
	s.logger.Info("historian stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Service) readLoop(ctx context.Context) error {
	for {
		// BLPop with a timeout so cancellation is noticed.
		res, err := s.rdb.BLPop(ctx, 3*time.Second, s.opts.Queue).Result()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				s.logger.WithError(err).Error("BLPop failed")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(res) < 2 {
			continue
		}
		// res[0] is the queue name and res[1] the payload.
		s.Handle(ctx, []byte(res[1]))
	}
}

func (s *Service) flushLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.FlushDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Flush(ctx)
		}
	}
}

func (s *Service) inactivityLoop(ctx context.Context) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			s.Sweep(ctx, now)
		}
	}
}

// Handle decodes one queued payload and adds it to the batch, flushing when the
// batch is full.
func (s *Service) Handle(ctx context.Context, payload []byte) {
	var rec cache.EventRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		s.logger.WithError(err).Warn("invalid event record")
		return
	}

	if rec.EventType == string(game.EventGameEnded) {
		s.lastActivity.Delete(rec.GameID)
	} else {
		s.lastActivity.Store(rec.GameID, time.UnixMilli(rec.Timestamp))
	}

	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	s.batch = append(s.batch, rec)
	if over := len(s.batch) - s.opts.MaxPending; over > 0 {
		s.logger.WithField("dropped", over).Warn("archive backlog full, dropping oldest events")
		s.batch = append(s.batch[:0], s.batch[over:]...)
	}
	if len(s.batch) >= s.opts.BatchSize {
		s.flushLocked(ctx)
	}
}

// Flush writes the pending batch.
func (s *Service) Flush(ctx context.Context) {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	s.flushLocked(ctx)
}

// flushLocked writes the pending records in chunks of BatchSize; the caller
// holds batchMu. It stops at the first failed chunk, which stays pending with
// everything after it for the next flush.
func (s *Service) flushLocked(ctx context.Context) {
	written := 0
	for written < len(s.batch) {
		end := min(written+s.opts.BatchSize, len(s.batch))
		chunk := s.batch[written:end]
		if err := s.writer.ArchiveEvents(ctx, chunk); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"size":    len(chunk),
				"pending": len(s.batch) - written,
			}).Error("failed to archive events")
			break
		}
		written = end
	}
	if written == 0 {
		return
	}
	s.logger.Debugf("archived %d events", written)
	s.batch = append(make([]cache.EventRecord, 0, s.opts.BatchSize), s.batch[written:]...)
}

// Pending returns how many records wait for the next flush.
func (s *Service) Pending() int {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return len(s.batch)
}

// Sweep marks every game whose last event is older than the inactivity window
// as abandoned.
func (s *Service) Sweep(ctx context.Context, now time.Time) {
	s.lastActivity.Range(func(key, val interface{}) bool {
		gameID, ok1 := key.(uuid.UUID)
		last, ok2 := val.(time.Time)
		if !ok1 || !ok2 || now.Sub(last) <= s.opts.Inactivity {
			return true
		}
		if err := s.writer.MarkAbandoned(ctx, gameID); err != nil {
			s.logger.WithError(err).WithField("game_id", gameID).Error("failed to mark game abandoned")
			return true
		}
		s.logger.WithField("game_id", gameID).Info("marked game abandoned after inactivity")
		s.lastActivity.Delete(gameID)
		return true
	})
}
