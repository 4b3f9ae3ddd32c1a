package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Phase
		want     bool
	}{
		{PhaseLobby, PhaseInProgress, true},
		{PhaseInProgress, PhaseVoting, true},
		{PhaseVoting, PhaseReveal, true},
		{PhaseVoting, PhaseInProgress, true}, // cancelled vote
		{PhaseReveal, PhaseLobby, true},
		{PhaseReveal, PhaseInProgress, true}, // new round without lobby stop
		{PhaseLobby, PhaseEnded, true},
		{PhaseInProgress, PhaseEnded, true},
		{PhaseReveal, PhaseEnded, true},

		{PhaseLobby, PhaseVoting, false},
		{PhaseLobby, PhaseReveal, false},
		{PhaseInProgress, PhaseLobby, false},
		{PhaseVoting, PhaseLobby, false},
		{PhaseEnded, PhaseLobby, false}, // ENDED is terminal
		{PhaseEnded, PhaseInProgress, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestOutcomeSpyWins(t *testing.T) {
	assert.True(t, OutcomeSpyGuessed.SpyWins())
	assert.True(t, OutcomeWrongAccusation.SpyWins())
	assert.True(t, OutcomeNoMajority.SpyWins())
	assert.False(t, OutcomePlayersWin.SpyWins())
	assert.False(t, OutcomeSpyRemoved.SpyWins())
}

func TestKind(t *testing.T) {
	assert.Equal(t, "RoomNotFound", Kind(ErrRoomNotFound))
	assert.Equal(t, "NameTaken", Kind(ErrNameTaken))
	assert.Equal(t, "SelfVote", Kind(ErrSelfVote))
	assert.Equal(t, "CodeExhaustion", Kind(ErrCodeExhaustion))
	assert.Equal(t, "Internal", Kind(assert.AnError))
}
