package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jason-s-yu/contaminados/internal/game"
	"github.com/jason-s-yu/contaminados/internal/session"
)

// envelope wraps every JSON response.
type envelope struct {
	Status int         `json:"status"`
	Msg    string      `json:"msg"`
	Data   interface{} `json:"data,omitempty"`
}

var statusByKind = map[game.Kind]int{
	game.KindNotFound:           http.StatusNotFound,
	game.KindForbidden:          http.StatusForbidden,
	game.KindConflict:           http.StatusConflict,
	game.KindPreconditionFailed: http.StatusPreconditionRequired,
	game.KindValidation:         http.StatusBadRequest,
	game.KindInternal:           http.StatusInternalServerError,
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	if code, ok := statusByKind[game.KindOf(err)]; ok {
		return code
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, msg string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Status: status, Msg: msg, Data: data})
}

// writeError writes the error envelope. Internal errors are logged and their
// text is not sent to the client.
func (gs *GameServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		gs.Logger.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		msg = "internal server error"
	}
	writeJSON(w, status, msg, nil)
}

// credentials reads the player and password headers.
func credentials(r *http.Request) session.Credentials {
	return session.Credentials{
		Player: strings.TrimSpace(r.Header.Get("player")),
		Secret: r.Header.Get("password"),
	}
}

var errBadBody = game.ErrMissingField.WithMessage("request body is not valid JSON")

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errBadBody
	}
	return nil
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, game.ErrMissingField.WithMessage("invalid " + name)
	}
	return id, nil
}
