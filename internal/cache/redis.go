// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/contaminados/internal/game"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list (queue) name for game event records.
const DefaultQueueName = "contaminados_events"

// EventRecord holds the minimal info needed by the historian.
type EventRecord struct {
	GameID    uuid.UUID              `json:"game_id"`
	RoundID   uuid.UUID              `json:"round_id"`
	EventType string                 `json:"event_type"`
	Player    string                 `json:"player,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// RecordFor converts a game event into its queue form.
func RecordFor(e game.Event) EventRecord {
	return EventRecord{
		GameID:    e.GameID,
		RoundID:   e.RoundID,
		EventType: string(e.Type),
		Player:    e.Player,
		Payload:   e.Payload,
		Timestamp: e.At.UnixMilli(),
	}
}

// ConnectRedis opens a client for addr/db and pings it.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// Publisher pushes committed game events onto a Redis list for the historian.
type Publisher struct {
	rdb   *redis.Client
	queue string
}

// NewPublisher returns a Publisher for queue, or DefaultQueueName when empty.
func NewPublisher(rdb *redis.Client, queue string) *Publisher {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &Publisher{rdb: rdb, queue: queue}
}

// Publish serializes the events and pushes them to the queue in one RPUSH, so
// the events of one operation stay contiguous.
func (p *Publisher) Publish(ctx context.Context, events []game.Event) error {
	if len(events) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(events))
	for _, e := range events {
		data, err := json.Marshal(RecordFor(e))
		if err != nil {
			return fmt.Errorf("failed to marshal EventRecord: %w", err)
		}
		values = append(values, data)
	}
	if err := p.rdb.RPush(ctx, p.queue, values...).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", p.queue, err)
	}
	return nil
}
