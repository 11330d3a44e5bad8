package session

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jason-s-yu/contaminados/internal/game"
)

// PlayerView is a player as one viewer is allowed to see them. Role is only
// filled for the viewer's own entry, or for everyone once the game has ended.
type PlayerView struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role game.Role `json:"role,omitempty"`
}

// GameSummary is a search result.
type GameSummary struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Status       game.Status  `json:"status"`
	Password     bool         `json:"password"`
	CurrentRound string       `json:"currentRound"`
	Players      []PlayerView `json:"players"`
}

// GameView is the full game state as seen by one viewer.
type GameView struct {
	GameSummary
	Owner         string       `json:"owner"`
	Decade        int          `json:"decade"`
	CitizenScore  int          `json:"citizenScore"`
	SaboteurScore int          `json:"saboteurScore"`
	Winner        game.Outcome `json:"winner"`

	// Enemies lists the saboteurs. Saboteurs know each other; everyone else
	// only learns the list when the game ends.
	Enemies []string `json:"enemies"`
}

// RoundSummary is a round as listed for a game.
type RoundSummary struct {
	ID     uuid.UUID    `json:"id"`
	Leader string       `json:"leader"`
	Status game.Phase   `json:"status"`
	Result game.Outcome `json:"result"`
	Phase  string       `json:"phase"`
	Decade int          `json:"decade"`
}

// RoundDetail is a single round with its proposal, votes, and action progress.
// Individual actions stay hidden; only the sabotage count of an ended round is
// shown.
type RoundDetail struct {
	RoundSummary
	Group            []string    `json:"group"`
	GroupSize        int         `json:"groupSize"`
	Votes            []game.Vote `json:"votes"`
	Attempts         int         `json:"attempts"`
	ActionsSubmitted int         `json:"actionsSubmitted"`
	Sabotages        *int        `json:"sabotages,omitempty"`
}

// Created is returned by CreateGame.
type Created struct {
	Game  GameView `json:"game"`
	Token string   `json:"token,omitempty"`
}

// Joined is returned by JoinGame.
type Joined struct {
	Player PlayerView `json:"player"`
	Game   GameView   `json:"game"`
	Token  string     `json:"token,omitempty"`
}

func summarize(g *game.Game) GameSummary {
	sum := GameSummary{
		ID:       g.ID,
		Name:     g.Name,
		Status:   g.Status,
		Password: g.HasSecret(),
		Players:  make([]PlayerView, 0, g.Roster.Len()),
	}
	if r := g.CurrentRound(); r != nil {
		sum.CurrentRound = r.ID.String()
	}
	for _, p := range g.Roster.Players {
		sum.Players = append(sum.Players, PlayerView{ID: p.ID, Name: p.Name})
	}
	return sum
}

// viewFor projects g for viewer; an empty viewer sees no roles until the end.
func viewFor(g *game.Game, viewer string) GameView {
	v := GameView{
		GameSummary:   summarize(g),
		Owner:         g.Owner,
		Decade:        g.Decade,
		CitizenScore:  g.CitizenScore,
		SaboteurScore: g.SaboteurScore,
		Winner:        g.Winner,
		Enemies:       []string{},
	}
	ended := g.Status == game.StatusEnded
	for i, p := range g.Roster.Players {
		if ended || (viewer != "" && p.Name == viewer) {
			v.Players[i].Role = p.Role
		}
	}
	if me := g.Roster.Find(viewer); ended || (me != nil && me.Role == game.RoleSaboteur) {
		v.Enemies = append(v.Enemies, g.Roster.Saboteurs()...)
	}
	return v
}

func summarizeRound(r *game.Round) RoundSummary {
	return RoundSummary{
		ID:     r.ID,
		Leader: r.Leader,
		Status: r.Phase,
		Result: r.Outcome,
		Phase:  fmt.Sprintf("vote%d", min(r.Attempts+1, game.MaxProposalAttempts)),
		Decade: r.Decade,
	}
}

func detailRound(r *game.Round, playerCount int) RoundDetail {
	d := RoundDetail{
		RoundSummary:     summarizeRound(r),
		Group:            slices.Clone(r.Group),
		Votes:            slices.Clone(r.Votes),
		Attempts:         r.Attempts,
		ActionsSubmitted: len(r.Actions),
	}
	if d.Group == nil {
		d.Group = []string{}
	}
	if d.Votes == nil {
		d.Votes = []game.Vote{}
	}
	if size, err := game.GroupSize(r.Decade, playerCount); err == nil {
		d.GroupSize = size
	}
	if r.Ended() {
		n := r.Sabotages()
		d.Sabotages = &n
	}
	return d
}
