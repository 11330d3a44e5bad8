// internal/game/round.go
package game

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Phase is the state of a single round.
type Phase string

const (
	PhaseWaitingOnLeader Phase = "waiting-on-leader"
	PhaseVoting          Phase = "voting"
	PhaseWaitingOnGroup  Phase = "waiting-on-group"
	PhaseEnded           Phase = "ended"
)

// Outcome is the faction that won a round.
type Outcome string

const (
	OutcomeNone      Outcome = "none"
	OutcomeCitizens  Outcome = "citizens"
	OutcomeSaboteurs Outcome = "saboteurs"
)

// Vote is one player's approval (true) or rejection (false) of a proposed group.
type Vote struct {
	Player string `json:"player"`
	Value  bool   `json:"value"`
}

// Action is one group member's contribution: true for success, false for sabotage.
type Action struct {
	Player string `json:"player"`
	Value  bool   `json:"value"`
}

// Round is one decade of play: a fixed leader proposes groups until one is
// approved or the attempts run out, then the approved group acts.
type Round struct {
	ID       uuid.UUID `json:"id"`
	Decade   int       `json:"decade"`
	Leader   string    `json:"leader"`
	Phase    Phase     `json:"phase"`
	Group    []string  `json:"group"`
	Votes    []Vote    `json:"votes"`
	Actions  []Action  `json:"actions"`
	Attempts int       `json:"attempts"`
	Outcome  Outcome   `json:"outcome"`
}

// NewRound opens a round led by leader in the given decade.
func NewRound(decade int, leader string) *Round {
	return &Round{
		ID:      uuid.New(),
		Decade:  decade,
		Leader:  leader,
		Phase:   PhaseWaitingOnLeader,
		Group:   []string{},
		Votes:   []Vote{},
		Actions: []Action{},
		Outcome: OutcomeNone,
	}
}

// Ended reports whether the round has an outcome.
func (r *Round) Ended() bool {
	return r.Phase == PhaseEnded
}

// InGroup reports whether name is in the proposed group.
func (r *Round) InGroup(name string) bool {
	return slices.Contains(r.Group, name)
}

// HasVoted reports whether name already voted on the current proposal.
func (r *Round) HasVoted(name string) bool {
	for _, v := range r.Votes {
		if v.Player == name {
			return true
		}
	}
	return false
}

// HasActed reports whether name already submitted an action.
func (r *Round) HasActed(name string) bool {
	for _, a := range r.Actions {
		if a.Player == name {
			return true
		}
	}
	return false
}

// Tally returns approve and reject counts for the current proposal.
func (r *Round) Tally() (approve, reject int) {
	for _, v := range r.Votes {
		if v.Value {
			approve++
		} else {
			reject++
		}
	}
	return approve, reject
}

// Sabotages returns how many recorded actions are sabotage.
func (r *Round) Sabotages() int {
	n := 0
	for _, a := range r.Actions {
		if !a.Value {
			n++
		}
	}
	return n
}

// requirePhase checks the round is in want, reporting an ended round as a
// conflict rather than a precondition failure.
func (r *Round) requirePhase(want Phase) error {
	if r.Phase == want {
		return nil
	}
	if r.Phase == PhaseEnded {
		return ErrRoundEnded
	}
	return ErrInvalidPhase.WithMessage(fmt.Sprintf("round is %s, expected %s", r.Phase, want))
}

// ProposeGroup stores the leader's group and opens voting. The group must name
// distinct roster players and match GroupSize for the round's decade.
func (r *Round) ProposeGroup(by string, names []string, roster *Roster) error {
	if by != r.Leader {
		return ErrWrongLeader
	}
	if err := r.requirePhase(PhaseWaitingOnLeader); err != nil {
		return err
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if !roster.Has(name) {
			return ErrUnknownPlayer.WithMessage(fmt.Sprintf("player %q is not part of the game", name))
		}
		if seen[name] {
			return ErrDuplicateMember.WithMessage(fmt.Sprintf("player %q is listed twice", name))
		}
		seen[name] = true
	}
	size, err := GroupSize(r.Decade, roster.Len())
	if err != nil {
		return err
	}
	if len(names) != size {
		return ErrSizeMismatch.WithMessage(fmt.Sprintf("group must have exactly %d players, got %d", size, len(names)))
	}

	r.Group = slices.Clone(names)
	r.Votes = []Vote{}
	r.Phase = PhaseVoting
	return nil
}

// CastVote records voter's vote. Once playerCount votes are in, the proposal is
// resolved: strictly more approvals than rejections moves the group to act,
// anything else counts as a failed attempt. The third failed attempt ends the
// round in the saboteurs' favour.
func (r *Round) CastVote(voter string, value bool, playerCount int) error {
	if err := r.requirePhase(PhaseVoting); err != nil {
		return err
	}
	if r.HasVoted(voter) {
		return ErrDuplicateVote.WithMessage(fmt.Sprintf("player %q already voted", voter))
	}
	r.Votes = append(r.Votes, Vote{Player: voter, Value: value})
	if len(r.Votes) < playerCount {
		return nil
	}

	approve, reject := r.Tally()
	if approve > reject {
		r.Phase = PhaseWaitingOnGroup
		return nil
	}
	r.Attempts++
	if r.Attempts >= MaxProposalAttempts {
		r.Phase = PhaseEnded
		r.Outcome = OutcomeSaboteurs
		return nil
	}
	r.Votes = []Vote{}
	r.Phase = PhaseWaitingOnLeader
	return nil
}

// CanAct reports why actor may not submit an action right now, or nil.
func (r *Round) CanAct(actor string) error {
	if err := r.requirePhase(PhaseWaitingOnGroup); err != nil {
		return err
	}
	if r.HasActed(actor) {
		return ErrDuplicateAction.WithMessage(fmt.Sprintf("player %q already acted", actor))
	}
	if !r.InGroup(actor) {
		return ErrNotInGroup.WithMessage(fmt.Sprintf("player %q is not in the group", actor))
	}
	return nil
}

// SubmitAction records a group member's action. When every member has acted the
// round ends: any sabotage hands it to the saboteurs. Role checks are the
// caller's job since a round does not know roles.
func (r *Round) SubmitAction(actor string, value bool) error {
	if err := r.CanAct(actor); err != nil {
		return err
	}
	r.Actions = append(r.Actions, Action{Player: actor, Value: value})
	if len(r.Actions) < len(r.Group) {
		return nil
	}

	r.Phase = PhaseEnded
	if r.Sabotages() > 0 {
		r.Outcome = OutcomeSaboteurs
	} else {
		r.Outcome = OutcomeCitizens
	}
	return nil
}

func (r *Round) clone() *Round {
	cp := *r
	cp.Group = slices.Clone(r.Group)
	cp.Votes = slices.Clone(r.Votes)
	cp.Actions = slices.Clone(r.Actions)
	return &cp
}
