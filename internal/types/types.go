// Package types defines the JSON wire protocol between clients and the
// server. One message shape per direction; the Type field selects the event.
package types

// Client -> Server event names.
const (
	CmdJoinRoom      = "join-room"
	CmdStartGame     = "start-game"
	CmdCallVote      = "call-vote"
	CmdCastBallot    = "cast-ballot"
	CmdForceTally    = "force-tally"
	CmdCancelVote    = "cancel-vote"
	CmdStartTimer    = "start-timer"
	CmdPauseTimer    = "pause-timer"
	CmdToggleMark    = "toggle-mark"
	CmdUpdateNote    = "update-note"
	CmdSpyGuess      = "spy-guess"
	CmdNewRound      = "new-round"
	CmdReturnToLobby = "return-to-lobby"
	CmdKickPlayer    = "kick-player"
	CmdEndGame       = "end-game"
	CmdLeaveRoom     = "leave-room"
)

// Server -> Client event names.
const (
	EvtRoomCreated       = "room-created"
	EvtPlayerJoined      = "player-joined"
	EvtPlayerLeft        = "player-left"
	EvtPlayerReconnected = "player-reconnected"
	EvtPhaseChanged      = "phase-changed"
	EvtRoleAssigned      = "role-assigned"
	EvtVoteOpened        = "vote-opened"
	EvtVoteTally         = "vote-tally-update"
	EvtReveal            = "reveal"
	EvtGuessResult       = "guess-result"
	EvtMarksUpdated      = "marks-updated"
	EvtTimerTick         = "timer-tick"
	EvtKicked            = "kicked"
	EvtError             = "error"
)

type ClientMessage struct {
	Type     string `json:"type"`
	Name     string `json:"name,omitempty"`
	Accused  string `json:"accused,omitempty"`
	Location string `json:"location,omitempty"`
	Target   string `json:"target,omitempty"`
	Text     string `json:"text,omitempty"`
	Minutes  int    `json:"minutes,omitempty"`
}

// PlayerInfo is the public view of a seat. Never carries roles or notes.
type PlayerInfo struct {
	Name      string `json:"name"`
	Host      bool   `json:"host"`
	Connected bool   `json:"connected"`
}

type ServerMessage struct {
	Type    string       `json:"type"`
	Code    string       `json:"code,omitempty"`
	Phase   string       `json:"phase,omitempty"`
	Players []PlayerInfo `json:"players,omitempty"`
	Name    string       `json:"name,omitempty"` // subject of join/leave/reconnect/kick

	// Private payloads, only ever sent to the owning connection.
	Role         string            `json:"role,omitempty"`
	Location     string            `json:"location,omitempty"` // empty for the spy
	AllLocations []string          `json:"allLocations,omitempty"`
	Marked       []string          `json:"marked,omitempty"`
	Notes        map[string]string `json:"notes,omitempty"`

	// Vote progress: counts only, never ballot contents.
	BallotsCast   int `json:"ballotsCast,omitempty"`
	BallotsNeeded int `json:"ballotsNeeded,omitempty"`

	// Reveal payload.
	Accused string `json:"accused,omitempty"`
	Spy     string `json:"spy,omitempty"`
	Outcome string `json:"outcome,omitempty"`

	GuessesLeft  int  `json:"guessesLeft,omitempty"`
	GuessCorrect bool `json:"guessCorrect,omitempty"`

	Remaining    int  `json:"remaining,omitempty"`
	TimerRunning bool `json:"timerRunning,omitempty"`

	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}
