// internal/handlers/rounds.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jason-s-yu/contaminados/internal/game"
	"github.com/jason-s-yu/contaminados/internal/session"
)

// ProposeGroupRequest is the body of PATCH .../rounds/{roundId}.
type ProposeGroupRequest struct {
	Group []string `json:"group"`
}

// VoteRequest is the body of POST .../rounds/{roundId}.
type VoteRequest struct {
	Vote *bool `json:"vote"`
}

// ActionRequest is the body of PUT .../rounds/{roundId}.
type ActionRequest struct {
	Action *bool `json:"action"`
}

// ListRoundsHandler lists the rounds of a game.
func ListRoundsHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "gameId")
		if err != nil {
			gs.writeError(w, r, err)
			return
		}
		rounds, err := gs.Service.ListRounds(r.Context(), id, credentials(r))
		if err != nil {
			gs.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, fmt.Sprintf("%d rounds", len(rounds)), rounds)
	}
}

// GetRoundHandler shows one round to a player of the game.
func GetRoundHandler(gs *GameServer) http.HandlerFunc {
	return roundHandler(gs, "round found", func(r *http.Request, gameID, roundID uuid.UUID, who session.Credentials) (*session.RoundDetail, error) {
		return gs.Service.GetRound(r.Context(), gameID, roundID, who)
	})
}

// ProposeGroupHandler lets the round leader propose a group.
func ProposeGroupHandler(gs *GameServer) http.HandlerFunc {
	return roundHandler(gs, "group proposed", func(r *http.Request, gameID, roundID uuid.UUID, who session.Credentials) (*session.RoundDetail, error) {
		var req ProposeGroupRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		}
		if req.Group == nil {
			return nil, game.ErrMissingField.WithMessage("group is required")
		}
		return gs.Service.ProposeGroup(r.Context(), gameID, roundID, who, req.Group)
	})
}

// CastVoteHandler records a player's vote on the current proposal.
func CastVoteHandler(gs *GameServer) http.HandlerFunc {
	return roundHandler(gs, "vote recorded", func(r *http.Request, gameID, roundID uuid.UUID, who session.Credentials) (*session.RoundDetail, error) {
		var req VoteRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		}
		if req.Vote == nil {
			return nil, game.ErrMissingField.WithMessage("vote is required")
		}
		return gs.Service.CastVote(r.Context(), gameID, roundID, who, *req.Vote)
	})
}

// SubmitActionHandler records a group member's action.
func SubmitActionHandler(gs *GameServer) http.HandlerFunc {
	return roundHandler(gs, "action recorded", func(r *http.Request, gameID, roundID uuid.UUID, who session.Credentials) (*session.RoundDetail, error) {
		var req ActionRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		}
		if req.Action == nil {
			return nil, game.ErrMissingField.WithMessage("action is required")
		}
		return gs.Service.SubmitAction(r.Context(), gameID, roundID, who, *req.Action)
	})
}

type roundFunc func(r *http.Request, gameID, roundID uuid.UUID, who session.Credentials) (*session.RoundDetail, error)

func roundHandler(gs *GameServer, okMsg string, fn roundFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, err := pathID(r, "gameId")
		if err != nil {
			gs.writeError(w, r, err)
			return
		}
		roundID, err := uuid.Parse(r.PathValue("roundId"))
		if err != nil {
			gs.writeError(w, r, game.ErrRoundNotFound)
			return
		}
		detail, err := fn(r, gameID, roundID, credentials(r))
		if err != nil {
			gs.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, okMsg, detail)
	}
}
