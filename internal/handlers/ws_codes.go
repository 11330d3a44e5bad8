// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the event stream.
const (
	BadSubprotocolError   = 3000 // Client connected with an unsupported subprotocol.
	InvalidAuthTokenError = 3001 // Token was missing, invalid, or expired.
	WrongGameError        = 3002 // Token was issued for another game.
	NotAPlayerError       = 3003 // Token's player no longer belongs to the game.
)
