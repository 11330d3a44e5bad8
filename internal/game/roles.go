// internal/game/roles.go
package game

import "fmt"

const (
	MinPlayers = 5
	MaxPlayers = 10

	// WinningScore is the number of round wins a faction needs to end the game.
	WinningScore = 3

	// MaxProposalAttempts is how many rejected proposals a round tolerates before
	// the saboteurs take it.
	MaxProposalAttempts = 3
)

// saboteursByPlayers is indexed by playerCount-MinPlayers.
var saboteursByPlayers = [...]int{2, 2, 3, 3, 3, 4}

// groupSizeByDecade is indexed by [decade-1][playerCount-MinPlayers].
var groupSizeByDecade = [...][6]int{
	{2, 2, 2, 3, 3, 3},
	{3, 3, 3, 4, 4, 4},
	{2, 4, 3, 4, 4, 4},
	{3, 3, 4, 5, 5, 5},
	{3, 4, 4, 5, 5, 5},
}

// Decades is the number of decades the group-size table covers. A game can
// never outlast it: the fifth round always brings one faction to WinningScore.
const Decades = len(groupSizeByDecade)

// SaboteurCount returns how many saboteurs a game of playerCount players has.
func SaboteurCount(playerCount int) (int, error) {
	if playerCount < MinPlayers || playerCount > MaxPlayers {
		return 0, ErrOutOfRange.WithMessage(fmt.Sprintf("no saboteur count for %d players", playerCount))
	}
	return saboteursByPlayers[playerCount-MinPlayers], nil
}

// GroupSize returns the size of the group a leader must propose in the given
// decade. Decades are numbered from 1 and a round is looked up with the decade
// it was created in, so the first round of every game reads row 1.
func GroupSize(decade, playerCount int) (int, error) {
	if playerCount < MinPlayers || playerCount > MaxPlayers {
		return 0, ErrOutOfRange.WithMessage(fmt.Sprintf("no group size for %d players", playerCount))
	}
	if decade < 1 || decade > Decades {
		return 0, ErrOutOfRange.WithMessage(fmt.Sprintf("no group size for decade %d", decade))
	}
	return groupSizeByDecade[decade-1][playerCount-MinPlayers], nil
}
