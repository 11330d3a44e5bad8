// internal/game/errors.go
package game

import "errors"

// Kind classifies a domain error for the transport layer.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindForbidden          Kind = "forbidden"
	KindConflict           Kind = "conflict"
	KindPreconditionFailed Kind = "precondition_failed"
	KindValidation         Kind = "validation"
	KindInternal           Kind = "internal"
)

// Error is a domain error carrying a machine-readable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithMessage returns a copy of e with a more specific message. The copy still
// matches e under errors.Is.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: msg}
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

var (
	// Roster
	ErrCapacityExceeded = newError(KindConflict, "CAPACITY_EXCEEDED", "game already has the maximum number of players")
	ErrDuplicateName    = newError(KindConflict, "DUPLICATE_NAME", "a player with that name already joined")
	ErrRolesAssigned    = newError(KindConflict, "ROLES_ASSIGNED", "roles were already assigned")
	ErrEmptyRoster      = newError(KindPreconditionFailed, "EMPTY_ROSTER", "no players to assign roles to")

	// Round
	ErrWrongLeader      = newError(KindForbidden, "WRONG_LEADER", "only the round leader can propose a group")
	ErrInvalidPhase     = newError(KindPreconditionFailed, "INVALID_PHASE", "round is not in the required phase")
	ErrRoundEnded       = newError(KindConflict, "ROUND_ENDED", "round has already ended")
	ErrUnknownPlayer    = newError(KindValidation, "UNKNOWN_PLAYER", "proposed player is not part of the game")
	ErrDuplicateMember  = newError(KindValidation, "DUPLICATE_MEMBER", "proposed group lists a player twice")
	ErrSizeMismatch     = newError(KindValidation, "SIZE_MISMATCH", "proposed group has the wrong size")
	ErrDuplicateVote    = newError(KindConflict, "DUPLICATE_VOTE", "player already voted on this proposal")
	ErrDuplicateAction  = newError(KindConflict, "DUPLICATE_ACTION", "player already acted in this round")
	ErrNotInGroup       = newError(KindForbidden, "NOT_IN_GROUP", "player is not part of the proposed group")
	ErrRoleViolation    = newError(KindForbidden, "ROLE_VIOLATION", "only saboteurs can sabotage")
	ErrRoundNotFound    = newError(KindNotFound, "ROUND_NOT_FOUND", "round not found")
	ErrNotMember        = newError(KindForbidden, "NOT_MEMBER", "player does not belong to the game")
	ErrMissingField     = newError(KindValidation, "MISSING_FIELD", "required field is missing")
	ErrOutOfRange       = newError(KindInternal, "OUT_OF_RANGE", "lookup outside the role table")
	ErrInvalidState     = newError(KindConflict, "INVALID_STATE", "game is not in the required state")

	// Game
	ErrGameNotJoinable   = newError(KindConflict, "GAME_NOT_JOINABLE", "game already started")
	ErrForbidden         = newError(KindForbidden, "FORBIDDEN", "only the game owner can do this")
	ErrWrongSecret       = newError(KindForbidden, "WRONG_SECRET", "wrong game password")
	ErrNotEnoughPlayers  = newError(KindPreconditionFailed, "NOT_ENOUGH_PLAYERS", "at least 5 players are required")
	ErrGameNotFound      = newError(KindNotFound, "GAME_NOT_FOUND", "game not found")
	ErrDuplicateGameName = newError(KindConflict, "DUPLICATE_GAME_NAME", "a game with that name already exists")
	ErrStaleGame         = newError(KindConflict, "STALE_GAME", "game changed since it was loaded, retry")
)

// KindOf returns the kind of the first domain error in err's chain, or
// KindInternal if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
