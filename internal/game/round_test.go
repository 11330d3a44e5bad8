package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fiveRoster(t *testing.T) *Roster {
	t.Helper()
	var r Roster
	for _, name := range testNames[:5] {
		_, err := r.Add(name)
		require.NoError(t, err)
	}
	return &r
}

func TestProposeGroupValidation(t *testing.T) {
	roster := fiveRoster(t)
	r := NewRound(1, "ana")

	cases := []struct {
		name  string
		by    string
		group []string
		want  error
	}{
		{"wrong leader", "bea", []string{"ana", "bea"}, ErrWrongLeader},
		{"unknown player", "ana", []string{"ana", "zoe"}, ErrUnknownPlayer},
		{"duplicate member", "ana", []string{"ana", "ana"}, ErrDuplicateMember},
		{"too small", "ana", []string{"ana"}, ErrSizeMismatch},
		{"too big", "ana", []string{"ana", "bea", "caro"}, ErrSizeMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := r.ProposeGroup(tc.by, tc.group, roster)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, PhaseWaitingOnLeader, r.Phase)
			assert.Empty(t, r.Group)
		})
	}

	require.NoError(t, r.ProposeGroup("ana", []string{"bea", "caro"}, roster))
	assert.Equal(t, PhaseVoting, r.Phase)
	assert.Equal(t, []string{"bea", "caro"}, r.Group)

	err := r.ProposeGroup("ana", []string{"dani", "eli"}, roster)
	assert.ErrorIs(t, err, ErrInvalidPhase)
	assert.Equal(t, KindPreconditionFailed, KindOf(err))
}

func TestProposeGroupUsesRoundDecade(t *testing.T) {
	roster := fiveRoster(t)
	r := NewRound(2, "ana")
	assert.ErrorIs(t, r.ProposeGroup("ana", []string{"ana", "bea"}, roster), ErrSizeMismatch)
	require.NoError(t, r.ProposeGroup("ana", []string{"ana", "bea", "caro"}, roster))
}

func TestCastVote(t *testing.T) {
	roster := fiveRoster(t)

	t.Run("majority approves", func(t *testing.T) {
		r := NewRound(1, "ana")
		require.NoError(t, r.ProposeGroup("ana", []string{"bea", "caro"}, roster))
		for i, name := range roster.Names() {
			require.NoError(t, r.CastVote(name, i < 3, roster.Len()))
		}
		assert.Equal(t, PhaseWaitingOnGroup, r.Phase)
		assert.Equal(t, 0, r.Attempts)
	})

	t.Run("majority rejects", func(t *testing.T) {
		r := NewRound(1, "ana")
		require.NoError(t, r.ProposeGroup("ana", []string{"bea", "caro"}, roster))
		for i, name := range roster.Names() {
			require.NoError(t, r.CastVote(name, i < 2, roster.Len()))
		}
		assert.Equal(t, PhaseWaitingOnLeader, r.Phase)
		assert.Equal(t, 1, r.Attempts)
		assert.Empty(t, r.Votes)
	})

	t.Run("tie rejects", func(t *testing.T) {
		var six Roster
		for _, name := range testNames[:6] {
			_, _ = six.Add(name)
		}
		r := NewRound(1, "ana")
		require.NoError(t, r.ProposeGroup("ana", []string{"bea", "caro"}, &six))
		for i, name := range six.Names() {
			require.NoError(t, r.CastVote(name, i%2 == 0, six.Len()))
		}
		assert.Equal(t, PhaseWaitingOnLeader, r.Phase)
		assert.Equal(t, 1, r.Attempts)
	})

	t.Run("duplicate vote", func(t *testing.T) {
		r := NewRound(1, "ana")
		require.NoError(t, r.ProposeGroup("ana", []string{"bea", "caro"}, roster))
		require.NoError(t, r.CastVote("bea", true, roster.Len()))
		assert.ErrorIs(t, r.CastVote("bea", false, roster.Len()), ErrDuplicateVote)
		assert.Len(t, r.Votes, 1)
	})

	t.Run("vote before proposal", func(t *testing.T) {
		r := NewRound(1, "ana")
		assert.ErrorIs(t, r.CastVote("bea", true, roster.Len()), ErrInvalidPhase)
	})
}

func TestThirdRejectionEndsRound(t *testing.T) {
	roster := fiveRoster(t)
	r := NewRound(1, "ana")
	for attempt := 1; attempt <= MaxProposalAttempts; attempt++ {
		require.NoError(t, r.ProposeGroup("ana", []string{"bea", "caro"}, roster))
		for _, name := range roster.Names() {
			require.NoError(t, r.CastVote(name, false, roster.Len()))
		}
		assert.Equal(t, attempt, r.Attempts)
	}
	assert.True(t, r.Ended())
	assert.Equal(t, OutcomeSaboteurs, r.Outcome)
	assert.ErrorIs(t, r.ProposeGroup("ana", []string{"bea", "caro"}, roster), ErrRoundEnded)
}

func TestSubmitAction(t *testing.T) {
	roster := fiveRoster(t)
	approved := func(t *testing.T) *Round {
		r := NewRound(1, "ana")
		require.NoError(t, r.ProposeGroup("ana", []string{"bea", "caro"}, roster))
		for _, name := range roster.Names() {
			require.NoError(t, r.CastVote(name, true, roster.Len()))
		}
		return r
	}

	t.Run("all succeed", func(t *testing.T) {
		r := approved(t)
		require.NoError(t, r.SubmitAction("bea", true))
		assert.False(t, r.Ended())
		require.NoError(t, r.SubmitAction("caro", true))
		assert.True(t, r.Ended())
		assert.Equal(t, OutcomeCitizens, r.Outcome)
		assert.Equal(t, 0, r.Sabotages())
	})

	t.Run("one sabotage", func(t *testing.T) {
		r := approved(t)
		require.NoError(t, r.SubmitAction("bea", false))
		require.NoError(t, r.SubmitAction("caro", true))
		assert.Equal(t, OutcomeSaboteurs, r.Outcome)
		assert.Equal(t, 1, r.Sabotages())
	})

	t.Run("outsider", func(t *testing.T) {
		r := approved(t)
		assert.ErrorIs(t, r.SubmitAction("dani", true), ErrNotInGroup)
	})

	t.Run("twice", func(t *testing.T) {
		r := approved(t)
		require.NoError(t, r.SubmitAction("bea", true))
		assert.ErrorIs(t, r.SubmitAction("bea", true), ErrDuplicateAction)
	})

	t.Run("after end", func(t *testing.T) {
		r := approved(t)
		require.NoError(t, r.SubmitAction("bea", true))
		require.NoError(t, r.SubmitAction("caro", true))
		assert.ErrorIs(t, r.SubmitAction("bea", true), ErrRoundEnded)
		assert.Len(t, r.Actions, 2)
	})

	t.Run("before approval", func(t *testing.T) {
		r := NewRound(1, "ana")
		assert.ErrorIs(t, r.SubmitAction("bea", true), ErrInvalidPhase)
	})
}
