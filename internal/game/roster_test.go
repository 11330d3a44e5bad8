package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterAdd(t *testing.T) {
	var r Roster
	p, err := r.Add("ana")
	require.NoError(t, err)
	assert.Equal(t, "ana", p.Name)
	assert.Equal(t, RoleUnassigned, p.Role)
	assert.True(t, r.Has("ana"))
	assert.False(t, r.Has("Ana"), "names are case-sensitive")

	_, err = r.Add("ana")
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = r.Add("  ")
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Equal(t, 1, r.Len())
}

func TestRosterCapacity(t *testing.T) {
	var r Roster
	for _, name := range testNames[:MaxPlayers] {
		_, err := r.Add(name)
		require.NoError(t, err)
	}
	_, err := r.Add(testNames[MaxPlayers])
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, MaxPlayers, r.Len())
}

func TestAssignRolesCounts(t *testing.T) {
	for n := MinPlayers; n <= MaxPlayers; n++ {
		for seed := int64(0); seed < 20; seed++ {
			var r Roster
			for _, name := range testNames[:n] {
				_, err := r.Add(name)
				require.NoError(t, err)
			}
			require.NoError(t, r.AssignRoles(NewSeededRand(seed)))

			want, _ := SaboteurCount(n)
			assert.Len(t, r.Saboteurs(), want, "players=%d seed=%d", n, seed)
			for _, p := range r.Players {
				assert.NotEqual(t, RoleUnassigned, p.Role)
			}
		}
	}
}

func TestAssignRolesSpreadsSaboteurs(t *testing.T) {
	seen := map[string]bool{}
	for seed := int64(0); seed < 200; seed++ {
		var r Roster
		for _, name := range testNames[:5] {
			_, _ = r.Add(name)
		}
		require.NoError(t, r.AssignRoles(NewSeededRand(seed)))
		for _, name := range r.Saboteurs() {
			seen[name] = true
		}
	}
	assert.Len(t, seen, 5, "every player should be drawn as saboteur at some point")
}

func TestAssignRolesErrors(t *testing.T) {
	var empty Roster
	assert.ErrorIs(t, empty.AssignRoles(fixedRand{}), ErrEmptyRoster)

	var small Roster
	for _, name := range testNames[:4] {
		_, _ = small.Add(name)
	}
	assert.ErrorIs(t, small.AssignRoles(fixedRand{}), ErrOutOfRange)
	for _, p := range small.Players {
		assert.Equal(t, RoleUnassigned, p.Role, "failed assignment must not touch roles")
	}

	var r Roster
	for _, name := range testNames[:5] {
		_, _ = r.Add(name)
	}
	require.NoError(t, r.AssignRoles(fixedRand{}))
	assert.Equal(t, []string{"ana", "bea"}, r.Saboteurs())
	assert.ErrorIs(t, r.AssignRoles(fixedRand{}), ErrRolesAssigned)
}

func TestSample(t *testing.T) {
	rng := NewSeededRand(7)
	for i := 0; i < 50; i++ {
		picked := sample(rng, 10, 4)
		require.Len(t, picked, 4)
		seen := map[int]bool{}
		for _, idx := range picked {
			assert.GreaterOrEqual(t, idx, 0)
			assert.Less(t, idx, 10)
			assert.False(t, seen[idx], "duplicate index %d", idx)
			seen[idx] = true
		}
	}
}
