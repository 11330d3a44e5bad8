package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/contaminados/internal/game"
	"github.com/sirupsen/logrus"
)

// subscriberBuffer is how many events a slow subscriber may lag behind before
// events are dropped for it.
const subscriberBuffer = 64

// Subscription is one listener on a game's event stream.
type Subscription struct {
	C      <-chan game.Event
	Player string

	ch     chan game.Event
	gameID uuid.UUID
}

// Hub routes published events to the subscribers of each game.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]map[*Subscription]struct{}
	logger *logrus.Logger
}

// NewHub returns an empty Hub.
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		subs:   make(map[uuid.UUID]map[*Subscription]struct{}),
		logger: logger,
	}
}

// Subscribe registers player as a listener on gameID.
func (h *Hub) Subscribe(gameID uuid.UUID, player string) *Subscription {
	ch := make(chan game.Event, subscriberBuffer)
	sub := &Subscription{C: ch, Player: player, ch: ch, gameID: gameID}

	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[gameID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[gameID] = set
	}
	set[sub] = struct{}{}
	return sub
}

// Unsubscribe removes sub and closes its channel. It is safe to call twice.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[sub.gameID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	close(sub.ch)
	if len(set) == 0 {
		delete(h.subs, sub.gameID)
	}
}

// Subscribers returns how many listeners gameID has.
func (h *Hub) Subscribers(gameID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[gameID])
}

// Publish hands events to every subscriber of their game without blocking. A
// subscriber whose buffer is full misses the event.
func (h *Hub) Publish(_ context.Context, events []game.Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, e := range events {
		for sub := range h.subs[e.GameID] {
			select {
			case sub.ch <- e:
			default:
				h.logger.WithFields(logrus.Fields{
					"game_id": e.GameID,
					"player":  sub.Player,
					"type":    e.Type,
				}).Warn("subscriber lagging, dropped event")
			}
		}
	}
	return nil
}
