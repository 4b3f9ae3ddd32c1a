// Package game holds the pure rules of a Spyfall round: phases, role
// dealing, and vote tallying. It has no goroutines and no I/O; the room
// actor drives it.
package game

type Phase string

const (
	PhaseLobby      Phase = "LOBBY"
	PhaseInProgress Phase = "IN_PROGRESS"
	PhaseVoting     Phase = "VOTING"
	PhaseReveal     Phase = "REVEAL"
	PhaseEnded      Phase = "ENDED"
)

// Outcome records how a round ended.
type Outcome string

const (
	// OutcomePlayersWin: the spy was accused and failed both location guesses.
	OutcomePlayersWin Outcome = "players_win"
	// OutcomeSpyGuessed: the spy was accused but named the location.
	OutcomeSpyGuessed Outcome = "spy_wins_correct_guess"
	// OutcomeWrongAccusation: the vote landed on a non-spy.
	OutcomeWrongAccusation Outcome = "spy_wins_wrong_vote"
	// OutcomeNoMajority: the vote tied, nobody was accused.
	OutcomeNoMajority Outcome = "spy_wins_no_majority"
	// OutcomeSpyRemoved: the spy was kicked or left mid-round.
	OutcomeSpyRemoved Outcome = "spy_removed"
)

// SpyWins reports whether the outcome counts as a win for the spy.
func (o Outcome) SpyWins() bool {
	return o == OutcomeSpyGuessed || o == OutcomeWrongAccusation || o == OutcomeNoMajority
}

var transitions = map[Phase][]Phase{
	PhaseLobby:      {PhaseInProgress, PhaseEnded},
	PhaseInProgress: {PhaseVoting, PhaseEnded},
	PhaseVoting:     {PhaseReveal, PhaseInProgress, PhaseEnded},
	PhaseReveal:     {PhaseLobby, PhaseInProgress, PhaseEnded},
	PhaseEnded:      {},
}

// CanTransition reports whether moving from one phase to another is legal.
// VOTING→IN_PROGRESS is the host cancelling a vote; REVEAL→IN_PROGRESS is the
// host dealing a fresh round without passing through the lobby.
func CanTransition(from, to Phase) bool {
	for _, p := range transitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// InRound reports whether a round is live, i.e. roles have been dealt and
// not yet cleared.
func (p Phase) InRound() bool {
	return p == PhaseInProgress || p == PhaseVoting || p == PhaseReveal
}
