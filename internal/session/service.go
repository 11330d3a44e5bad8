// Package session runs game operations against stored games, one game at a
// time: every mutating call loads, changes, and saves a game inside that game's
// critical section, then publishes the resulting events.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/contaminados/internal/auth"
	"github.com/jason-s-yu/contaminados/internal/game"
	"github.com/sirupsen/logrus"
)

// Store persists games. LoadGame must return a copy the caller may mutate
// freely; nothing is visible to other callers until SaveGame.
type Store interface {
	CreateGame(ctx context.Context, g *game.Game) error
	LoadGame(ctx context.Context, id uuid.UUID) (*game.Game, error)
	SaveGame(ctx context.Context, g *game.Game) error
	SearchGames(ctx context.Context, f game.Filter) ([]*game.Game, error)
}

// Secrets seals new game passwords and matches supplied ones.
type Secrets interface {
	game.SecretMatcher
	Seal(secret string) (string, error)
}

// EventSink receives the events of each committed operation, in order.
type EventSink interface {
	Publish(ctx context.Context, events []game.Event) error
}

// Credentials identify the caller of a game operation.
type Credentials struct {
	Player string
	Secret string
}

// Service is the entry point for all game operations.
type Service struct {
	store   Store
	secrets Secrets
	rng     game.Rand
	sink    EventSink
	tokens  *auth.Tokens
	log     *logrus.Logger
	locks   *gameLocks
}

// Option configures a Service.
type Option func(*Service)

// WithSecrets replaces the default Argon2id password sealing.
func WithSecrets(s Secrets) Option {
	return func(svc *Service) { svc.secrets = s }
}

// WithRand sets the randomness used for roles and leaders.
func WithRand(r game.Rand) Option {
	return func(svc *Service) { svc.rng = r }
}

// WithSink sets where committed events go.
func WithSink(sink EventSink) Option {
	return func(svc *Service) { svc.sink = sink }
}

// WithTokens makes create and join hand out player tokens.
func WithTokens(t *auth.Tokens) Option {
	return func(svc *Service) { svc.tokens = t }
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(svc *Service) { svc.log = l }
}

// NewService builds a Service over store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   logrus.StandardLogger(),
		locks: newGameLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.secrets == nil {
		s.secrets = auth.NewSecrets()
	}
	if s.rng == nil {
		rng, err := game.NewRand()
		if err != nil {
			s.log.WithError(err).Warn("crypto seed unavailable, seeding from clock")
			rng = game.NewSeededRand(time.Now().UnixNano())
		}
		s.rng = rng
	}
	return s
}

// mutate runs fn on a fresh copy of the game inside the game's critical
// section and saves the result. Nothing is saved or published if fn fails.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn func(g *game.Game) error) (*game.Game, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	g, err := s.store.LoadGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(g); err != nil {
		s.log.WithFields(logrus.Fields{
			"game_id": id,
			"code":    errCode(err),
		}).Debugf("operation rejected: %v", err)
		return nil, err
	}
	events := g.DrainEvents()
	if err := s.store.SaveGame(ctx, g); err != nil {
		return nil, fmt.Errorf("save game %s: %w", id, err)
	}
	s.publish(ctx, events)
	return g, nil
}

func (s *Service) publish(ctx context.Context, events []game.Event) {
	if s.sink == nil || len(events) == 0 {
		return
	}
	if err := s.sink.Publish(ctx, events); err != nil {
		s.log.WithError(err).WithField("game_id", events[0].GameID).Warn("failed to publish game events")
	}
}

func (s *Service) token(id uuid.UUID, player string) string {
	if s.tokens == nil {
		return ""
	}
	tok, err := s.tokens.CreatePlayerToken(id, player)
	if err != nil {
		s.log.WithError(err).WithField("game_id", id).Warn("failed to sign player token")
		return ""
	}
	return tok
}

// CreateGame opens a new lobby with owner as its first player.
func (s *Service) CreateGame(ctx context.Context, name, owner, secret string) (*Created, error) {
	sealed, err := s.secrets.Seal(secret)
	if err != nil {
		return nil, fmt.Errorf("seal game secret: %w", err)
	}
	g, err := game.NewGame(name, owner, sealed)
	if err != nil {
		return nil, err
	}
	events := g.DrainEvents()
	if err := s.store.CreateGame(ctx, g); err != nil {
		return nil, err
	}
	s.publish(ctx, events)
	return &Created{Game: viewFor(g, owner), Token: s.token(g.ID, owner)}, nil
}

// SearchGames lists games matching f.
func (s *Service) SearchGames(ctx context.Context, f game.Filter) ([]GameSummary, error) {
	games, err := s.store.SearchGames(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]GameSummary, 0, len(games))
	for _, g := range games {
		out = append(out, summarize(g))
	}
	return out, nil
}

// GetGame returns the game as who may see it. who.Player may be empty for an
// anonymous view; a named player must belong to the game.
func (s *Service) GetGame(ctx context.Context, id uuid.UUID, who Credentials) (*GameView, error) {
	g, err := s.store.LoadGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if who.Player == "" {
		err = g.CheckSecret(who.Secret, s.secrets)
	} else {
		err = g.Authorize(who.Player, who.Secret, s.secrets)
	}
	if err != nil {
		return nil, err
	}
	v := viewFor(g, who.Player)
	return &v, nil
}

// JoinGame adds who.Player to a lobby.
func (s *Service) JoinGame(ctx context.Context, id uuid.UUID, who Credentials) (*Joined, error) {
	var joined *game.Player
	g, err := s.mutate(ctx, id, func(g *game.Game) error {
		if err := g.CheckSecret(who.Secret, s.secrets); err != nil {
			return err
		}
		p, err := g.Join(who.Player)
		joined = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Joined{
		Player: PlayerView{ID: joined.ID, Name: joined.Name},
		Game:   viewFor(g, who.Player),
		Token:  s.token(g.ID, who.Player),
	}, nil
}

// StartGame assigns roles and opens the first round.
func (s *Service) StartGame(ctx context.Context, id uuid.UUID, who Credentials) (*GameView, error) {
	g, err := s.mutate(ctx, id, func(g *game.Game) error {
		return g.Start(who.Player, who.Secret, s.secrets, s.rng)
	})
	if err != nil {
		return nil, err
	}
	v := viewFor(g, who.Player)
	return &v, nil
}

// CheckMember fails unless player belongs to the game. It skips the password,
// so only call it for callers already authenticated some other way.
func (s *Service) CheckMember(ctx context.Context, id uuid.UUID, player string) error {
	g, err := s.store.LoadGame(ctx, id)
	if err != nil {
		return err
	}
	if !g.Roster.Has(player) {
		return game.ErrNotMember
	}
	return nil
}

// ListRounds returns every round of the game in creation order.
func (s *Service) ListRounds(ctx context.Context, id uuid.UUID, who Credentials) ([]RoundSummary, error) {
	g, err := s.store.LoadGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := g.CheckSecret(who.Secret, s.secrets); err != nil {
		return nil, err
	}
	out := make([]RoundSummary, 0, len(g.Rounds))
	for _, r := range g.Rounds {
		out = append(out, summarizeRound(r))
	}
	return out, nil
}

// GetRound returns one round to a member of the game.
func (s *Service) GetRound(ctx context.Context, id, roundID uuid.UUID, who Credentials) (*RoundDetail, error) {
	g, err := s.store.LoadGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := g.Authorize(who.Player, who.Secret, s.secrets); err != nil {
		return nil, err
	}
	r, err := g.Round(roundID)
	if err != nil {
		return nil, err
	}
	d := detailRound(r, g.Roster.Len())
	return &d, nil
}

// ProposeGroup submits the round leader's group.
func (s *Service) ProposeGroup(ctx context.Context, id, roundID uuid.UUID, who Credentials, group []string) (*RoundDetail, error) {
	return s.roundOp(ctx, id, roundID, who, func(g *game.Game) error {
		return g.ProposeGroup(roundID, who.Player, group)
	})
}

// CastVote records who's vote on the current proposal.
func (s *Service) CastVote(ctx context.Context, id, roundID uuid.UUID, who Credentials, approve bool) (*RoundDetail, error) {
	return s.roundOp(ctx, id, roundID, who, func(g *game.Game) error {
		return g.CastVote(roundID, who.Player, approve, s.rng)
	})
}

// SubmitAction records a group member's action; false is sabotage.
func (s *Service) SubmitAction(ctx context.Context, id, roundID uuid.UUID, who Credentials, success bool) (*RoundDetail, error) {
	return s.roundOp(ctx, id, roundID, who, func(g *game.Game) error {
		return g.SubmitAction(roundID, who.Player, success, s.rng)
	})
}

func (s *Service) roundOp(ctx context.Context, id, roundID uuid.UUID, who Credentials, fn func(g *game.Game) error) (*RoundDetail, error) {
	g, err := s.mutate(ctx, id, func(g *game.Game) error {
		if err := g.Authorize(who.Player, who.Secret, s.secrets); err != nil {
			return err
		}
		return fn(g)
	})
	if err != nil {
		return nil, err
	}
	r, err := g.Round(roundID)
	if err != nil {
		return nil, err
	}
	d := detailRound(r, g.Roster.Len())
	return &d, nil
}

func errCode(err error) string {
	if e, ok := err.(*game.Error); ok {
		return e.Code
	}
	return string(game.KindOf(err))
}
