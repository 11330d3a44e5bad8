// internal/handlers/game_server.go
package handlers

import (
	"net/http"

	"github.com/jason-s-yu/contaminados/internal/auth"
	"github.com/jason-s-yu/contaminados/internal/events"
	"github.com/jason-s-yu/contaminados/internal/middleware"
	"github.com/jason-s-yu/contaminados/internal/session"
	"github.com/sirupsen/logrus"
)

// GameServer holds what the HTTP handlers need: the game service, the event
// hub websocket clients subscribe to, and the token verifier.
type GameServer struct {
	Service *session.Service
	Hub     *events.Hub
	Tokens  *auth.Tokens
	Logger  *logrus.Logger
}

// Routes registers every endpoint under /api/games, wrapped in request logging.
func (gs *GameServer) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/games", SearchGamesHandler(gs))
	mux.HandleFunc("POST /api/games", CreateGameHandler(gs))
	mux.HandleFunc("GET /api/games/{gameId}", GetGameHandler(gs))
	mux.HandleFunc("PUT /api/games/{gameId}", JoinGameHandler(gs))
	mux.HandleFunc("HEAD /api/games/{gameId}/start", StartGameHeadHandler(gs))
	mux.HandleFunc("POST /api/games/{gameId}/start", StartGameHandler(gs))

	mux.HandleFunc("GET /api/games/{gameId}/rounds", ListRoundsHandler(gs))
	mux.HandleFunc("GET /api/games/{gameId}/rounds/{roundId}", GetRoundHandler(gs))
	mux.HandleFunc("PATCH /api/games/{gameId}/rounds/{roundId}", ProposeGroupHandler(gs))
	mux.HandleFunc("POST /api/games/{gameId}/rounds/{roundId}", CastVoteHandler(gs))
	mux.HandleFunc("PUT /api/games/{gameId}/rounds/{roundId}", SubmitActionHandler(gs))

	if gs.Hub != nil && gs.Tokens != nil {
		mux.HandleFunc("GET /api/games/{gameId}/ws", GameWSHandler(gs))
	}

	return middleware.LogMiddleware(gs.Logger)(mux)
}
