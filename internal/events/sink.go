// Package events delivers committed game events to the outside world.
package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jason-s-yu/contaminados/internal/game"
	"github.com/sirupsen/logrus"
)

// Sink receives the events of one committed operation, in order.
type Sink interface {
	Publish(ctx context.Context, events []game.Event) error
}

// LogSink writes every event to the audit log.
type LogSink struct {
	Logger *logrus.Logger
}

// NewLogSink returns a LogSink writing to logger.
func NewLogSink(logger *logrus.Logger) *LogSink {
	return &LogSink{Logger: logger}
}

// Publish logs each event at info level.
func (s *LogSink) Publish(_ context.Context, events []game.Event) error {
	for _, e := range events {
		fields := logrus.Fields{
			"game_id": e.GameID,
			"type":    e.Type,
		}
		if e.RoundID != uuid.Nil {
			fields["round_id"] = e.RoundID
		}
		if e.Player != "" {
			fields["player"] = e.Player
		}
		for k, v := range e.Payload {
			fields[k] = v
		}
		s.Logger.WithFields(fields).Info("game event")
	}
	return nil
}

// Multi fans events out to several sinks. Every sink is tried; the errors are
// joined.
type Multi []Sink

// Publish forwards events to each sink in order.
func (m Multi) Publish(ctx context.Context, events []game.Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
