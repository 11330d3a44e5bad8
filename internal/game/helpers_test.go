package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var testNames = []string{"ana", "bea", "caro", "dani", "eli", "fer", "gus", "hugo", "ines", "juan", "kai"}

// fixedRand always draws v (mod n). With v == 0 the first players in join order
// become saboteurs and the first player leads every round.
type fixedRand struct{ v int }

func (r fixedRand) Intn(n int) int { return r.v % n }

// plainSecrets compares secrets as stored, without hashing.
type plainSecrets struct{}

func (plainSecrets) Match(supplied, sealed string) bool { return supplied == sealed }

func newLobby(t *testing.T, players int) *Game {
	t.Helper()
	g, err := NewGame("test game", testNames[0], "")
	require.NoError(t, err)
	for _, name := range testNames[1:players] {
		_, err := g.Join(name)
		require.NoError(t, err)
	}
	return g
}

func newStartedGame(t *testing.T, players int) *Game {
	t.Helper()
	g := newLobby(t, players)
	require.NoError(t, g.Start(testNames[0], "", plainSecrets{}, fixedRand{}))
	g.DrainEvents()
	return g
}

// vote has every player vote the same way on the current round.
func vote(t *testing.T, g *Game, approve bool) {
	t.Helper()
	r := g.CurrentRound()
	for _, name := range g.Roster.Names() {
		require.NoError(t, g.CastVote(r.ID, name, approve, fixedRand{}))
	}
}

// loyalGroup returns the last size players, who are loyal under fixedRand{0}.
func loyalGroup(g *Game, size int) []string {
	names := g.Roster.Names()
	return names[len(names)-size:]
}

// playRound proposes a group for the current round, approves it, and has every
// member act. With sabotage the group includes the first saboteur, who
// sabotages.
func playRound(t *testing.T, g *Game, sabotage bool) {
	t.Helper()
	r := g.CurrentRound()
	size, err := GroupSize(r.Decade, g.Roster.Len())
	require.NoError(t, err)

	group := loyalGroup(g, size)
	if sabotage {
		group = append([]string{g.Roster.Saboteurs()[0]}, loyalGroup(g, size-1)...)
	}
	require.NoError(t, g.ProposeGroup(r.ID, r.Leader, group))
	vote(t, g, true)
	for _, name := range group {
		p := g.Roster.Find(name)
		require.NoError(t, g.SubmitAction(r.ID, name, !(sabotage && p.Role == RoleSaboteur), fixedRand{}))
	}
	require.True(t, r.Ended())
}
