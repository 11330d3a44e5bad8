package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastParams = &HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestSecretsSealAndMatch(t *testing.T) {
	s := &Secrets{Params: fastParams}

	sealed, err := s.Seal("Tr1cky")
	require.NoError(t, err)
	assert.NotEqual(t, "Tr1cky", sealed)
	assert.True(t, s.Match("Tr1cky", sealed))
	assert.False(t, s.Match("tr1cky", sealed), "passwords are case-sensitive")
	assert.False(t, s.Match("", sealed))

	open, err := s.Seal("")
	require.NoError(t, err)
	assert.Empty(t, open)
	assert.True(t, s.Match("whatever", open))

	assert.False(t, s.Match("x", "not-a-hash"))
}

func TestDecodeHash(t *testing.T) {
	encoded, err := CreateHash("pw", fastParams)
	require.NoError(t, err)

	p, salt, key, err := DecodeHash(encoded)
	require.NoError(t, err)
	assert.Equal(t, fastParams.Memory, p.Memory)
	assert.Len(t, salt, 16)
	assert.Len(t, key, 32)

	_, _, _, err = DecodeHash("$argon2id$v=1$m=1,t=1,p=1$aa$bb")
	assert.ErrorIs(t, err, ErrIncompatibleVersion)
	_, _, _, err = DecodeHash("short")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestPlayerTokens(t *testing.T) {
	tokens, err := NewTokens(time.Hour)
	require.NoError(t, err)
	gid := uuid.New()

	tok, err := tokens.CreatePlayerToken(gid, "ana")
	require.NoError(t, err)
	gotGame, gotPlayer, err := tokens.AuthenticatePlayerToken(tok)
	require.NoError(t, err)
	assert.Equal(t, gid, gotGame)
	assert.Equal(t, "ana", gotPlayer)

	other, err := NewTokens(0)
	require.NoError(t, err)
	_, _, err = other.AuthenticatePlayerToken(tok)
	assert.Error(t, err, "a token from another key must not verify")

	expired, err := NewTokens(time.Nanosecond)
	require.NoError(t, err)
	old, err := expired.CreatePlayerToken(gid, "ana")
	require.NoError(t, err)
	_, _, err = expired.AuthenticatePlayerToken(old)
	assert.Error(t, err)
}

func TestParseTTL(t *testing.T) {
	for _, v := range []string{"", "0", "never"} {
		d, err := ParseTTL(v)
		require.NoError(t, err)
		assert.Zero(t, d)
	}
	d, err := ParseTTL("90m")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)

	_, err = ParseTTL("soon")
	assert.Error(t, err)
}
