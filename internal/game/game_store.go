// internal/game/game_store.go
package game

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultSearchLimit caps search pages when no limit is given.
const DefaultSearchLimit = 50

// Filter narrows a game search. Name matches as a case-sensitive substring and
// Status exactly; empty fields match everything. Page is zero-based.
type Filter struct {
	Name   string
	Status Status
	Page   int
	Limit  int
}

// Normalize clamps paging to sane values.
func (f Filter) Normalize() Filter {
	if f.Limit <= 0 || f.Limit > DefaultSearchLimit {
		f.Limit = DefaultSearchLimit
	}
	if f.Page < 0 {
		f.Page = 0
	}
	return f
}

// Matches reports whether g passes the name and status filters.
func (f Filter) Matches(g *Game) bool {
	if f.Name != "" && !strings.Contains(g.Name, f.Name) {
		return false
	}
	if f.Status != "" && g.Status != f.Status {
		return false
	}
	return true
}

// GameStore keeps games in memory. It hands out and stores copies, so a caller
// never observes another caller's half-applied changes.
type GameStore struct {
	mu    sync.RWMutex
	games map[uuid.UUID]*Game
	order []uuid.UUID
}

// NewGameStore returns an empty in-memory store.
func NewGameStore() *GameStore {
	return &GameStore{
		games: make(map[uuid.UUID]*Game),
	}
}

// CreateGame stores a new game, refusing duplicate names.
func (s *GameStore) CreateGame(_ context.Context, g *Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.games {
		if existing.Name == g.Name {
			return ErrDuplicateGameName
		}
	}
	s.games[g.ID] = g.Clone()
	s.order = append(s.order, g.ID)
	return nil
}

// LoadGame returns a private copy of the stored game.
func (s *GameStore) LoadGame(_ context.Context, id uuid.UUID) (*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return g.Clone(), nil
}

// SaveGame replaces the stored snapshot of an existing game if g was loaded
// from the current one.
func (s *GameStore) SaveGame(_ context.Context, g *Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.games[g.ID]
	if !ok {
		return ErrGameNotFound
	}
	if stored.Version != g.Version {
		return ErrStaleGame
	}
	g.Version++
	s.games[g.ID] = g.Clone()
	return nil
}

// SearchGames returns copies of matching games in creation order.
func (s *GameStore) SearchGames(_ context.Context, f Filter) ([]*Game, error) {
	f = f.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()

	skip := f.Page * f.Limit
	out := make([]*Game, 0, f.Limit)
	for _, id := range s.order {
		g := s.games[id]
		if !f.Matches(g) {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		out = append(out, g.Clone())
		if len(out) == f.Limit {
			break
		}
	}
	return out, nil
}
