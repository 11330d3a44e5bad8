// internal/handlers/games.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jason-s-yu/contaminados/internal/game"
)

// CreateGameRequest is the body of POST /api/games.
type CreateGameRequest struct {
	Name     string `json:"name"`
	Owner    string `json:"owner"`
	Password string `json:"password"`
}

// JoinGameRequest is the body of PUT /api/games/{gameId}. The player header is
// used when the body names nobody.
type JoinGameRequest struct {
	Player string `json:"player"`
}

// SearchGamesHandler lists games filtered by ?name, ?status, ?page and ?limit.
func SearchGamesHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := game.Filter{
			Name:   q.Get("name"),
			Status: game.Status(q.Get("status")),
		}
		var err error
		if f.Page, err = intParam(q.Get("page"), 0); err != nil {
			gs.writeError(w, r, err)
			return
		}
		if f.Limit, err = intParam(q.Get("limit"), game.DefaultSearchLimit); err != nil {
			gs.writeError(w, r, err)
			return
		}

		result, err := gs.Service.SearchGames(r.Context(), f)
		if err != nil {
			gs.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, fmt.Sprintf("search returned %d results", len(result)), result)
	}
}

// CreateGameHandler opens a new game with the owner as first player.
func CreateGameHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateGameRequest
		if err := decodeBody(r, &req); err != nil {
			gs.writeError(w, r, err)
			return
		}
		created, err := gs.Service.CreateGame(r.Context(), strings.TrimSpace(req.Name), strings.TrimSpace(req.Owner), req.Password)
		if err != nil {
			gs.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, "game created", created)
	}
}

// GetGameHandler returns the game as seen by the player header, if any.
func GetGameHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "gameId")
		if err != nil {
			gs.writeError(w, r, err)
			return
		}
		view, err := gs.Service.GetGame(r.Context(), id, credentials(r))
		if err != nil {
			gs.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, "game found", view)
	}
}

// JoinGameHandler adds a player to a game still in the lobby.
func JoinGameHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "gameId")
		if err != nil {
			gs.writeError(w, r, err)
			return
		}
		var req JoinGameRequest
		if err := decodeBody(r, &req); err != nil {
			gs.writeError(w, r, err)
			return
		}
		who := credentials(r)
		if name := strings.TrimSpace(req.Player); name != "" {
			who.Player = name
		}
		joined, err := gs.Service.JoinGame(r.Context(), id, who)
		if err != nil {
			gs.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, "joined game", joined)
	}
}

// StartGameHandler starts the game and returns the owner's view of it.
func StartGameHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "gameId")
		if err != nil {
			gs.writeError(w, r, err)
			return
		}
		view, err := gs.Service.StartGame(r.Context(), id, credentials(r))
		if err != nil {
			gs.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, "game started", view)
	}
}

// StartGameHeadHandler starts the game without a body; the outcome is carried
// by the status code and the X-msg header.
func StartGameHeadHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "gameId")
		if err == nil {
			_, err = gs.Service.StartGame(r.Context(), id, credentials(r))
		}
		if err != nil {
			status := statusFor(err)
			msg := err.Error()
			if status == http.StatusInternalServerError {
				gs.Logger.WithError(err).WithField("path", r.URL.Path).Error("request failed")
				msg = "internal server error"
			}
			w.Header().Set("X-msg", msg)
			w.WriteHeader(status)
			return
		}
		w.Header().Set("X-msg", "game started")
		w.WriteHeader(http.StatusOK)
	}
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, game.ErrMissingField.WithMessage(fmt.Sprintf("invalid number %q", raw))
	}
	return n, nil
}
