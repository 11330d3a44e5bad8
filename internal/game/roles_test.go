package game

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaboteurCount(t *testing.T) {
	want := map[int]int{5: 2, 6: 2, 7: 3, 8: 3, 9: 3, 10: 4}
	for players, saboteurs := range want {
		got, err := SaboteurCount(players)
		require.NoError(t, err)
		assert.Equal(t, saboteurs, got, "players=%d", players)
		assert.Less(t, 2*got, players, "saboteurs must be a strict minority at %d players", players)
	}

	for _, players := range []int{0, 4, 11} {
		_, err := SaboteurCount(players)
		assert.ErrorIs(t, err, ErrOutOfRange, "players=%d", players)
	}
}

func TestGroupSize(t *testing.T) {
	want := [][]int{
		{2, 2, 2, 3, 3, 3},
		{3, 3, 3, 4, 4, 4},
		{2, 4, 3, 4, 4, 4},
		{3, 3, 4, 5, 5, 5},
		{3, 4, 4, 5, 5, 5},
	}
	for d, row := range want {
		for i, size := range row {
			decade, players := d+1, i+MinPlayers
			t.Run(fmt.Sprintf("decade %d players %d", decade, players), func(t *testing.T) {
				got, err := GroupSize(decade, players)
				require.NoError(t, err)
				assert.Equal(t, size, got)
				assert.LessOrEqual(t, got, players)
			})
		}
	}
}

func TestGroupSizeOutOfRange(t *testing.T) {
	cases := []struct {
		decade, players int
	}{
		{0, 5},
		{6, 5},
		{1, 4},
		{5, 11},
	}
	for _, tc := range cases {
		_, err := GroupSize(tc.decade, tc.players)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrOutOfRange))
		assert.Equal(t, KindInternal, KindOf(err))
	}
}
