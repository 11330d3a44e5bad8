// internal/game/roster.go
package game

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Role is a player's hidden faction.
type Role string

const (
	RoleUnassigned Role = ""
	RoleLoyal      Role = "citizen"
	RoleSaboteur   Role = "saboteur"
)

// Player is a member of a single game. Names are unique within the game and
// compared case-sensitively.
type Player struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role Role      `json:"role"`
}

// Roster is the ordered player list of one game. Order is join order.
type Roster struct {
	Players []*Player `json:"players"`
}

// Len returns the number of players.
func (r *Roster) Len() int {
	return len(r.Players)
}

// Find returns the player with the exact given name, or nil.
func (r *Roster) Find(name string) *Player {
	for _, p := range r.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Has reports whether a player with the exact given name exists.
func (r *Roster) Has(name string) bool {
	return r.Find(name) != nil
}

// Names returns player names in join order.
func (r *Roster) Names() []string {
	names := make([]string, len(r.Players))
	for i, p := range r.Players {
		names[i] = p.Name
	}
	return names
}

// Add appends a new unassigned player.
func (r *Roster) Add(name string) (*Player, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrMissingField.WithMessage("player name is required")
	}
	if len(r.Players) >= MaxPlayers {
		return nil, ErrCapacityExceeded
	}
	if r.Has(name) {
		return nil, ErrDuplicateName.WithMessage(fmt.Sprintf("a player named %q already joined", name))
	}
	p := &Player{
		ID:   uuid.New(),
		Name: name,
		Role: RoleUnassigned,
	}
	r.Players = append(r.Players, p)
	return p, nil
}

// AssignRoles draws SaboteurCount(n) distinct saboteurs uniformly at random and
// makes everyone else loyal. It refuses to run twice.
func (r *Roster) AssignRoles(rng Rand) error {
	n := len(r.Players)
	if n == 0 {
		return ErrEmptyRoster
	}
	for _, p := range r.Players {
		if p.Role != RoleUnassigned {
			return ErrRolesAssigned
		}
	}
	count, err := SaboteurCount(n)
	if err != nil {
		return err
	}

	for _, p := range r.Players {
		p.Role = RoleLoyal
	}
	for _, i := range sample(rng, n, count) {
		r.Players[i].Role = RoleSaboteur
	}
	return nil
}

// Saboteurs returns the names of saboteur players in join order.
func (r *Roster) Saboteurs() []string {
	var names []string
	for _, p := range r.Players {
		if p.Role == RoleSaboteur {
			names = append(names, p.Name)
		}
	}
	return names
}

func (r *Roster) clone() Roster {
	out := Roster{Players: make([]*Player, len(r.Players))}
	for i, p := range r.Players {
		cp := *p
		out.Players[i] = &cp
	}
	return out
}
