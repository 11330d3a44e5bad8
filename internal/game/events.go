// internal/game/events.go
package game

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a state transition worth telling the outside world about.
type EventType string

const (
	EventGameCreated      EventType = "game_created"
	EventPlayerJoined     EventType = "player_joined"
	EventRolesAssigned    EventType = "roles_assigned"
	EventRoundStarted     EventType = "round_started"
	EventGroupProposed    EventType = "group_proposed"
	EventVoteCast         EventType = "vote_cast"
	EventProposalRejected EventType = "proposal_rejected"
	EventProposalApproved EventType = "proposal_approved"
	EventActionSubmitted  EventType = "action_submitted"
	EventRoundEnded       EventType = "round_ended"
	EventGameEnded        EventType = "game_ended"
)

// Event is a structured record of one transition. Payloads never carry
// individual action values, and roles only once the game has ended.
type Event struct {
	Type    EventType              `json:"type"`
	GameID  uuid.UUID              `json:"game_id"`
	RoundID uuid.UUID              `json:"round_id"`
	Player  string                 `json:"player,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	At      time.Time              `json:"at"`
}

// record appends an event to the game's pending list.
func (g *Game) record(typ EventType, roundID uuid.UUID, player string, payload map[string]interface{}) {
	g.pending = append(g.pending, Event{
		Type:    typ,
		GameID:  g.ID,
		RoundID: roundID,
		Player:  player,
		Payload: payload,
		At:      time.Now().UTC(),
	})
}

// DrainEvents returns the events recorded since the last drain and forgets them.
func (g *Game) DrainEvents() []Event {
	evs := g.pending
	g.pending = nil
	return evs
}
