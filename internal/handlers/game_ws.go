// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/contaminados/internal/events"
	"github.com/jason-s-yu/contaminados/internal/middleware"
	"github.com/sirupsen/logrus"
)

const wsWriteTimeout = 3 * time.Second

// GameWSHandler streams a game's committed events to one of its players. The
// player proves who they are with the token handed out on create or join,
// passed as ?token=.
func GameWSHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, err := pathID(r, "gameId")
		if err != nil {
			gs.writeError(w, r, err)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			gs.Logger.Warnf("WebSocket accept error for game %s: %v", gameID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "internal server error during handler exit")

		if c.Subprotocol() != "game" {
			c.Close(BadSubprotocolError, "client must use the 'game' subprotocol")
			return
		}

		tokenGame, player, err := gs.Tokens.AuthenticatePlayerToken(r.URL.Query().Get("token"))
		if err != nil {
			gs.Logger.WithError(err).WithField("game_id", gameID).Warn("websocket token rejected")
			c.Close(InvalidAuthTokenError, "invalid token")
			return
		}
		if tokenGame != gameID {
			c.Close(WrongGameError, "token was issued for another game")
			return
		}
		if err := gs.Service.CheckMember(r.Context(), gameID, player); err != nil {
			c.Close(NotAPlayerError, err.Error())
			return
		}

		middleware.LogWebSocketConnect(gs.Logger, r.RemoteAddr, r.URL.Path)
		sub := gs.Hub.Subscribe(gameID, player)
		defer gs.Hub.Unsubscribe(sub)

		// The client only listens; CloseRead handles pings and notices the close.
		ctx := c.CloseRead(r.Context())
		err = streamEvents(ctx, c, sub, gs.Logger)
		middleware.LogWebSocketDisconnect(gs.Logger, r.RemoteAddr, r.URL.Path, err)
		if err == nil {
			c.Close(websocket.StatusNormalClosure, "")
		}
	}
}

// streamEvents writes events until the client goes away or the subscription is
// closed.
func streamEvents(ctx context.Context, c *websocket.Conn, sub *events.Subscription, logger *logrus.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub.C:
			if !ok {
				return nil
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Errorf("Failed to marshal event %s for game %s: %v", ev.Type, ev.GameID, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}
