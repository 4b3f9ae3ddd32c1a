package game

import "errors"

var ErrRoomNotFound = errors.New("room not found")
var ErrRoomNotJoinable = errors.New("game already in progress")
var ErrNameTaken = errors.New("name already taken")
var ErrInsufficientRoles = errors.New("not enough roles for this many players")
var ErrNotVotingPhase = errors.New("no vote in progress")
var ErrUnknownAccused = errors.New("accused player is not in this room")
var ErrSelfVote = errors.New("cannot vote for yourself")
var ErrNotHost = errors.New("only the host can do that")
var ErrInvalidPhaseTransition = errors.New("action not allowed in this phase")
var ErrCodeExhaustion = errors.New("room code space exhausted")

// Kind maps a rules error to its stable wire identifier. All of these are
// recoverable: they reject a single action and are reported only to the
// connection that sent it.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "RoomNotFound"
	case errors.Is(err, ErrRoomNotJoinable):
		return "RoomNotJoinable"
	case errors.Is(err, ErrNameTaken):
		return "NameTaken"
	case errors.Is(err, ErrInsufficientRoles):
		return "InsufficientRoles"
	case errors.Is(err, ErrNotVotingPhase):
		return "NotVotingPhase"
	case errors.Is(err, ErrUnknownAccused):
		return "UnknownAccused"
	case errors.Is(err, ErrSelfVote):
		return "SelfVote"
	case errors.Is(err, ErrNotHost):
		return "NotHost"
	case errors.Is(err, ErrInvalidPhaseTransition):
		return "InvalidPhaseTransition"
	case errors.Is(err, ErrCodeExhaustion):
		return "CodeExhaustion"
	default:
		return "Internal"
	}
}
