package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/contaminados/internal/game"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubRoutesByGame(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hub := NewHub(logger)
	g1, g2 := uuid.New(), uuid.New()

	a := hub.Subscribe(g1, "ana")
	b := hub.Subscribe(g2, "bea")
	assert.Equal(t, 1, hub.Subscribers(g1))

	require.NoError(t, hub.Publish(context.Background(), []game.Event{
		{Type: game.EventVoteCast, GameID: g1},
		{Type: game.EventRoundEnded, GameID: g1},
	}))

	assert.Equal(t, game.EventVoteCast, (<-a.C).Type)
	assert.Equal(t, game.EventRoundEnded, (<-a.C).Type)
	select {
	case e := <-b.C:
		t.Fatalf("unexpected event for other game: %v", e.Type)
	default:
	}

	hub.Unsubscribe(a)
	hub.Unsubscribe(a)
	_, open := <-a.C
	assert.False(t, open)
	assert.Zero(t, hub.Subscribers(g1))
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	logger, hook := test.NewNullLogger()
	hub := NewHub(logger)
	id := uuid.New()
	sub := hub.Subscribe(id, "ana")

	events := make([]game.Event, subscriberBuffer+1)
	for i := range events {
		events[i] = game.Event{Type: game.EventVoteCast, GameID: id}
	}
	require.NoError(t, hub.Publish(context.Background(), events))
	assert.Len(t, sub.C, subscriberBuffer)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

type failingSink struct{ err error }

func (s failingSink) Publish(context.Context, []game.Event) error { return s.err }

func TestMultiTriesEverySink(t *testing.T) {
	logger, hook := test.NewNullLogger()
	boom := errors.New("boom")
	m := Multi{failingSink{err: boom}, NewLogSink(logger)}

	err := m.Publish(context.Background(), []game.Event{{
		Type:    game.EventRoundEnded,
		GameID:  uuid.New(),
		RoundID: uuid.New(),
		Payload: map[string]interface{}{"outcome": "citizens"},
	}})
	assert.ErrorIs(t, err, boom)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "citizens", hook.LastEntry().Data["outcome"])
	assert.Equal(t, game.EventRoundEnded, hook.LastEntry().Data["type"])
}
