// internal/game/game.go
package game

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a game.
type Status string

const (
	StatusLobby  Status = "lobby"
	StatusActive Status = "rounds"
	StatusEnded  Status = "ended"
)

// SecretMatcher reports whether a supplied secret opens a sealed one. A game
// with an empty sealed secret needs no password.
type SecretMatcher interface {
	Match(supplied, sealed string) bool
}

// Game is the session aggregate. It owns its roster and rounds; rounds refer to
// players by name.
type Game struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Status Status    `json:"status"`
	Owner  string    `json:"owner"`
	Secret string    `json:"secret"`

	Roster Roster   `json:"roster"`
	Rounds []*Round `json:"rounds"`

	// Decade is the number the next round will be created with. It starts at 1
	// and is bumped right after each round is appended.
	Decade        int     `json:"decade"`
	CitizenScore  int     `json:"citizen_score"`
	SaboteurScore int     `json:"saboteur_score"`
	Winner        Outcome `json:"winner"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Version counts saved snapshots. Stores only accept a save whose Version
	// matches the stored one and bump it on success.
	Version int64 `json:"version"`

	pending []Event
}

// NewGame builds a lobby owned by owner, who joins as the first player.
// sealedSecret is stored as is; an empty one means no password.
func NewGame(name, owner, sealedSecret string) (*Game, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrMissingField.WithMessage("game name is required")
	}
	if strings.TrimSpace(owner) == "" {
		return nil, ErrMissingField.WithMessage("owner is required")
	}
	now := time.Now().UTC()
	g := &Game{
		ID:        uuid.New(),
		Name:      name,
		Status:    StatusLobby,
		Owner:     owner,
		Secret:    sealedSecret,
		Rounds:    []*Round{},
		Decade:    1,
		Winner:    OutcomeNone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := g.Roster.Add(owner); err != nil {
		return nil, err
	}
	g.record(EventGameCreated, uuid.Nil, owner, map[string]interface{}{"name": name})
	g.record(EventPlayerJoined, uuid.Nil, owner, nil)
	return g, nil
}

// HasSecret reports whether the game is password protected.
func (g *Game) HasSecret() bool {
	return g.Secret != ""
}

// CheckSecret fails with ErrWrongSecret unless secret opens the game.
func (g *Game) CheckSecret(secret string, m SecretMatcher) error {
	if g.Secret == "" || m.Match(secret, g.Secret) {
		return nil
	}
	return ErrWrongSecret
}

// Authorize checks the secret and that player belongs to the game.
func (g *Game) Authorize(player, secret string, m SecretMatcher) error {
	if err := g.CheckSecret(secret, m); err != nil {
		return err
	}
	if strings.TrimSpace(player) == "" {
		return ErrMissingField.WithMessage("player name is required")
	}
	if !g.Roster.Has(player) {
		return ErrNotMember.WithMessage(fmt.Sprintf("player %q does not belong to the game", player))
	}
	return nil
}

// Join adds a player while the game is still in the lobby.
func (g *Game) Join(name string) (*Player, error) {
	if g.Status != StatusLobby {
		return nil, ErrGameNotJoinable
	}
	p, err := g.Roster.Add(name)
	if err != nil {
		return nil, err
	}
	g.touch()
	g.record(EventPlayerJoined, uuid.Nil, name, nil)
	return p, nil
}

// Start assigns roles and opens the first round. Only the owner can start a
// lobby with at least MinPlayers players.
func (g *Game) Start(requester, secret string, m SecretMatcher, rng Rand) error {
	if requester != g.Owner {
		return ErrForbidden
	}
	if err := g.CheckSecret(secret, m); err != nil {
		return err
	}
	if g.Status != StatusLobby {
		return ErrInvalidState.WithMessage("game already started or ended")
	}
	if g.Roster.Len() < MinPlayers {
		return ErrNotEnoughPlayers.WithMessage(fmt.Sprintf("at least %d players are required, have %d", MinPlayers, g.Roster.Len()))
	}
	if err := g.Roster.AssignRoles(rng); err != nil {
		return err
	}
	g.Status = StatusActive
	g.record(EventRolesAssigned, uuid.Nil, "", map[string]interface{}{
		"players":   g.Roster.Len(),
		"saboteurs": len(g.Roster.Saboteurs()),
	})
	g.startDecade(rng)
	g.touch()
	return nil
}

// Round returns the round with the given id.
func (g *Game) Round(id uuid.UUID) (*Round, error) {
	for _, r := range g.Rounds {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, ErrRoundNotFound
}

// CurrentRound returns the most recently created round, or nil before start.
func (g *Game) CurrentRound() *Round {
	if len(g.Rounds) == 0 {
		return nil
	}
	return g.Rounds[len(g.Rounds)-1]
}

// ProposeGroup forwards the leader's proposal to the round.
func (g *Game) ProposeGroup(roundID uuid.UUID, leader string, names []string) error {
	r, err := g.Round(roundID)
	if err != nil {
		return err
	}
	if err := r.ProposeGroup(leader, names, &g.Roster); err != nil {
		return err
	}
	g.touch()
	g.record(EventGroupProposed, r.ID, leader, map[string]interface{}{
		"group":   slices.Clone(r.Group),
		"attempt": r.Attempts + 1,
	})
	return nil
}

// CastVote records a player's vote and applies whatever the tally decides.
func (g *Game) CastVote(roundID uuid.UUID, voter string, value bool, rng Rand) error {
	r, err := g.Round(roundID)
	if err != nil {
		return err
	}
	if !g.Roster.Has(voter) {
		return ErrNotMember.WithMessage(fmt.Sprintf("player %q does not belong to the game", voter))
	}
	approve, reject := r.Tally()
	if err := r.CastVote(voter, value, g.Roster.Len()); err != nil {
		return err
	}
	if value {
		approve++
	} else {
		reject++
	}
	g.touch()
	g.record(EventVoteCast, r.ID, voter, map[string]interface{}{"vote": value})
	if r.Phase == PhaseVoting {
		return nil
	}

	tally := map[string]interface{}{
		"approve":  approve,
		"reject":   reject,
		"attempts": r.Attempts,
	}
	if r.Phase == PhaseWaitingOnGroup {
		tally["group"] = slices.Clone(r.Group)
		g.record(EventProposalApproved, r.ID, "", tally)
		return nil
	}
	g.record(EventProposalRejected, r.ID, "", tally)
	if r.Ended() {
		g.roundEnded(r, rng)
	}
	return nil
}

// SubmitAction records a group member's action. Only saboteurs may sabotage.
func (g *Game) SubmitAction(roundID uuid.UUID, actor string, value bool, rng Rand) error {
	r, err := g.Round(roundID)
	if err != nil {
		return err
	}
	p := g.Roster.Find(actor)
	if p == nil {
		return ErrNotMember.WithMessage(fmt.Sprintf("player %q does not belong to the game", actor))
	}
	if err := r.CanAct(actor); err != nil {
		return err
	}
	if !value && p.Role != RoleSaboteur {
		return ErrRoleViolation
	}
	if err := r.SubmitAction(actor, value); err != nil {
		return err
	}
	g.touch()
	g.record(EventActionSubmitted, r.ID, actor, map[string]interface{}{
		"submitted": len(r.Actions),
		"expected":  len(r.Group),
	})
	if r.Ended() {
		g.roundEnded(r, rng)
	}
	return nil
}

// roundEnded scores a finished round, then either ends the game or opens the
// next decade.
func (g *Game) roundEnded(r *Round, rng Rand) {
	switch r.Outcome {
	case OutcomeCitizens:
		g.CitizenScore++
	case OutcomeSaboteurs:
		g.SaboteurScore++
	}
	g.record(EventRoundEnded, r.ID, "", map[string]interface{}{
		"outcome":        string(r.Outcome),
		"sabotages":      r.Sabotages(),
		"citizen_score":  g.CitizenScore,
		"saboteur_score": g.SaboteurScore,
	})

	switch {
	case g.CitizenScore >= WinningScore:
		g.end(OutcomeCitizens)
	case g.SaboteurScore >= WinningScore:
		g.end(OutcomeSaboteurs)
	default:
		g.startDecade(rng)
	}
}

func (g *Game) end(winner Outcome) {
	g.Status = StatusEnded
	g.Winner = winner
	g.record(EventGameEnded, uuid.Nil, "", map[string]interface{}{
		"winner":         string(winner),
		"citizen_score":  g.CitizenScore,
		"saboteur_score": g.SaboteurScore,
		"saboteurs":      g.Roster.Saboteurs(),
	})
}

// startDecade appends a round with a random leader, built with the current
// decade number; the counter is bumped afterwards.
func (g *Game) startDecade(rng Rand) {
	leader := g.Roster.Players[rng.Intn(g.Roster.Len())].Name
	r := NewRound(g.Decade, leader)
	g.Rounds = append(g.Rounds, r)
	g.record(EventRoundStarted, r.ID, leader, map[string]interface{}{"decade": r.Decade})
	g.Decade++
}

func (g *Game) touch() {
	g.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy without pending events.
func (g *Game) Clone() *Game {
	cp := *g
	cp.Roster = g.Roster.clone()
	cp.Rounds = make([]*Round, len(g.Rounds))
	for i, r := range g.Rounds {
		cp.Rounds[i] = r.clone()
	}
	cp.pending = nil
	return &cp
}
