// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Tokens signs and verifies player tokens. A token binds a player name to one
// game and is handed out on create/join so the player can open the event stream.
type Tokens struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// ttl is how long a token stays valid (0 => never expires).
	ttl time.Duration
}

// NewTokens generates a fresh ed25519 key pair at runtime.
func NewTokens(ttl time.Duration) (*Tokens, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	return &Tokens{privateKey: privateKey, publicKey: publicKey, ttl: ttl}, nil
}

// ParseTTL reads a TOKEN_EXPIRE_TIME style value: "", "0" and "never" mean no expiry.
func ParseTTL(value string) (time.Duration, error) {
	if value == "" || value == "0" || value == "never" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse token expire time: %w", err)
	}
	return d, nil
}

// CreatePlayerToken creates a signed JWT with "sub" = player and "gid" = gameID.
func (t *Tokens) CreatePlayerToken(gameID uuid.UUID, player string) (string, error) {
	claims := jwt.MapClaims{
		"sub": player,
		"gid": gameID.String(),
		"iat": time.Now().Unix(),
	}
	if t.ttl > 0 {
		claims["exp"] = time.Now().Add(t.ttl).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(t.privateKey)
}

// AuthenticatePlayerToken verifies a token and returns the game id and player name.
func (t *Tokens) AuthenticatePlayerToken(tokenString string) (uuid.UUID, string, error) {
	parsed, err := jwt.Parse(tokenString, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.publicKey, nil
	})
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("jwt parse error: %w", err)
	}
	if !parsed.Valid {
		return uuid.Nil, "", fmt.Errorf("invalid token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", fmt.Errorf("invalid jwt claims")
	}
	player, ok := claims["sub"].(string)
	if !ok || player == "" {
		return uuid.Nil, "", fmt.Errorf("missing sub in jwt")
	}
	gid, ok := claims["gid"].(string)
	if !ok {
		return uuid.Nil, "", fmt.Errorf("missing gid in jwt")
	}
	gameID, err := uuid.Parse(gid)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("invalid gid in jwt: %w", err)
	}
	return gameID, player, nil
}
