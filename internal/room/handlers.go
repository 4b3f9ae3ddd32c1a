package room

import (
	"go.uber.org/zap"

	"github.com/parlorgames/spyfall-backend/internal/game"
	"github.com/parlorgames/spyfall-backend/internal/types"
)

func (r *Room) handleJoin(msg Join) {
	if p := r.find(msg.Name); p != nil {
		if p.connected {
			// Duplicate tab or impersonation attempt: reject the new
			// connection, leave the seated player alone.
			msg.Outbox <- types.ServerMessage{
				Type: types.EvtError,
				Kind: game.Kind(game.ErrNameTaken), Message: game.ErrNameTaken.Error(),
			}
			close(msg.Outbox)
			return
		}
		p.out = msg.Outbox
		p.connected = true
		r.noteOccupancy()
		r.replay(p)
		r.broadcast(types.ServerMessage{Type: types.EvtPlayerReconnected, Name: p.name, Players: r.roster()})
		r.log.Info("player reconnected", zap.String("name", p.name))
		return
	}

	if r.phase != game.PhaseLobby {
		msg.Outbox <- types.ServerMessage{
			Type: types.EvtError,
			Kind: game.Kind(game.ErrRoomNotJoinable), Message: game.ErrRoomNotJoinable.Error(),
		}
		close(msg.Outbox)
		return
	}

	p := &player{
		name:      msg.Name,
		host:      len(r.players) == 0,
		connected: true,
		out:       msg.Outbox,
		notes:     make(map[string]string),
		marked:    make(map[string]bool),
	}
	r.players = append(r.players, p)
	r.noteOccupancy()
	r.send(p, types.ServerMessage{Type: types.EvtPhaseChanged, Code: r.code, Phase: string(r.phase), Players: r.roster()})
	r.broadcast(types.ServerMessage{Type: types.EvtPlayerJoined, Name: p.name, Players: r.roster()})
	r.log.Info("player joined", zap.String("name", p.name))
}

// replay restores a rebinding connection to exactly where it left off:
// phase, own role, own notes and marks, vote progress. Nothing here is ever
// broadcast and no other player's private state is included.
func (r *Room) replay(p *player) {
	r.send(p, types.ServerMessage{Type: types.EvtPhaseChanged, Code: r.code, Phase: string(r.phase), Players: r.roster()})

	if r.phase.InRound() && p.role != "" {
		m := types.ServerMessage{
			Type:         types.EvtRoleAssigned,
			Role:         p.role,
			AllLocations: r.cat.Locations(),
			Marked:       r.markedList(p),
			Notes:        p.notes,
		}
		if p.role != game.SpyRole {
			m.Location = r.location
		}
		r.send(p, m)
	}

	if r.phase == game.PhaseVoting {
		r.send(p, types.ServerMessage{
			Type:          types.EvtVoteTally,
			BallotsCast:   len(r.ballots),
			BallotsNeeded: r.connectedCount(),
		})
	}

	if r.phase == game.PhaseReveal {
		r.send(p, r.revealMessage())
	}

	if r.timerLeft > 0 || r.timerOn {
		r.send(p, types.ServerMessage{Type: types.EvtTimerTick, Remaining: r.timerLeft, TimerRunning: r.timerOn})
	}
}

func (r *Room) handleDisconnect(msg Disconnect) {
	p := r.find(msg.Name)
	if p == nil || p.out != msg.Outbox {
		return
	}
	p.out = nil
	p.connected = false
	r.noteOccupancy()
	r.broadcast(types.ServerMessage{Type: types.EvtPlayerLeft, Name: p.name, Players: r.roster()})
	r.log.Info("player disconnected", zap.String("name", p.name))
	// The eligible voter set shrank; the vote may now be complete.
	r.resolveIfComplete()
}

func (r *Room) handleAction(msg FromClient) {
	p := r.find(msg.Name)
	if p == nil {
		return
	}

	switch msg.Msg.Type {
	case types.CmdStartGame:
		r.startRound(p, msg.Msg.Minutes, game.PhaseLobby)
	case types.CmdNewRound:
		r.startRound(p, msg.Msg.Minutes, game.PhaseReveal)
	case types.CmdCallVote:
		r.callVote(p)
	case types.CmdCastBallot:
		r.castBallot(p, msg.Msg.Accused)
	case types.CmdForceTally:
		r.forceTally(p)
	case types.CmdCancelVote:
		r.cancelVote(p)
	case types.CmdSpyGuess:
		r.spyGuess(p, msg.Msg.Location)
	case types.CmdToggleMark:
		r.toggleMark(p, msg.Msg.Location)
	case types.CmdUpdateNote:
		r.updateNote(p, msg.Msg.Target, msg.Msg.Text)
	case types.CmdStartTimer:
		r.startTimer(p)
	case types.CmdPauseTimer:
		r.pauseTimer(p)
	case types.CmdReturnToLobby:
		r.returnToLobby(p)
	case types.CmdKickPlayer:
		r.kick(p, msg.Msg.Target)
	case types.CmdEndGame:
		r.endGame(p)
	case types.CmdLeaveRoom:
		r.removePlayer(p, false)
	}
}

func (r *Room) requireHost(p *player) bool {
	if !p.host {
		r.sendErr(p, game.ErrNotHost)
		return false
	}
	return true
}

// startRound deals a fresh round: from LOBBY on the first start, or straight
// from REVEAL when the host plays again without returning to the lobby.
func (r *Room) startRound(p *player, minutes int, from game.Phase) {
	if !r.requireHost(p) {
		return
	}
	if r.phase != from || !game.CanTransition(r.phase, game.PhaseInProgress) {
		r.sendErr(p, game.ErrInvalidPhaseTransition)
		return
	}
	if r.connectedCount() < 3 || r.cat.Len() == 0 {
		r.sendErr(p, game.ErrInvalidPhaseTransition)
		return
	}
	if minutes >= 1 && minutes <= 30 {
		r.roundMinutes = minutes
	}

	location := r.cat.Pick(r.rng)
	roles, _ := r.cat.Roles(location)

	var connected []string
	for _, pl := range r.players {
		if pl.connected {
			connected = append(connected, pl.name)
		}
	}

	spy, assignment, err := game.Deal(r.rng, roles, connected)
	if err != nil {
		r.sendErr(p, err)
		return
	}

	r.phase = game.PhaseInProgress
	r.round++
	r.location = location
	r.spy = spy
	r.accused = ""
	r.ballots = nil
	r.outcome = ""
	r.guessesLeft = 0
	r.timerLeft = r.roundMinutes * 60
	r.timerOn = false

	for _, pl := range r.players {
		pl.role = assignment[pl.name] // empty for anyone who missed the deal
		pl.marked = make(map[string]bool)
	}

	r.broadcast(types.ServerMessage{Type: types.EvtPhaseChanged, Code: r.code, Phase: string(r.phase), Players: r.roster()})
	for _, pl := range r.players {
		if pl.role == "" {
			continue
		}
		m := types.ServerMessage{Type: types.EvtRoleAssigned, Role: pl.role, AllLocations: r.cat.Locations()}
		if pl.role != game.SpyRole {
			m.Location = location
		}
		r.send(pl, m)
	}
	r.log.Info("round started",
		zap.Int("round", r.round),
		zap.String("location", location),
		zap.Int("players", len(connected)))
}

func (r *Room) callVote(p *player) {
	if !r.requireHost(p) {
		return
	}
	if !game.CanTransition(r.phase, game.PhaseVoting) {
		r.sendErr(p, game.ErrInvalidPhaseTransition)
		return
	}
	r.phase = game.PhaseVoting
	r.ballots = make(map[string]string)
	r.broadcast(types.ServerMessage{Type: types.EvtPhaseChanged, Code: r.code, Phase: string(r.phase), Players: r.roster()})
	r.broadcast(types.ServerMessage{Type: types.EvtVoteOpened, BallotsNeeded: r.connectedCount()})
}

func (r *Room) castBallot(p *player, accused string) {
	if r.phase != game.PhaseVoting {
		r.sendErr(p, game.ErrNotVotingPhase)
		return
	}
	if r.find(accused) == nil {
		r.sendErr(p, game.ErrUnknownAccused)
		return
	}
	if accused == p.name {
		r.sendErr(p, game.ErrSelfVote)
		return
	}
	r.ballots[p.name] = accused // re-casting overwrites
	r.broadcast(types.ServerMessage{
		Type:          types.EvtVoteTally,
		BallotsCast:   len(r.ballots),
		BallotsNeeded: r.connectedCount(),
	})
	r.resolveIfComplete()
}

func (r *Room) forceTally(p *player) {
	if !r.requireHost(p) {
		return
	}
	if r.phase != game.PhaseVoting {
		r.sendErr(p, game.ErrNotVotingPhase)
		return
	}
	r.resolveVote()
}

func (r *Room) cancelVote(p *player) {
	if !r.requireHost(p) {
		return
	}
	if r.phase != game.PhaseVoting {
		r.sendErr(p, game.ErrNotVotingPhase)
		return
	}
	r.phase = game.PhaseInProgress
	r.ballots = nil
	r.broadcast(types.ServerMessage{Type: types.EvtPhaseChanged, Code: r.code, Phase: string(r.phase), Players: r.roster()})
}

func (r *Room) resolveIfComplete() {
	if r.phase != game.PhaseVoting {
		return
	}
	for _, pl := range r.players {
		if pl.connected {
			if _, ok := r.ballots[pl.name]; !ok {
				return
			}
		}
	}
	r.resolveVote()
}

func (r *Room) resolveVote() {
	accused, _, tied := game.Tally(r.ballots)

	r.phase = game.PhaseReveal
	r.broadcast(types.ServerMessage{Type: types.EvtPhaseChanged, Code: r.code, Phase: string(r.phase), Players: r.roster()})

	switch {
	case tied:
		r.outcome = game.OutcomeNoMajority
	case accused != r.spy:
		r.outcome = game.OutcomeWrongAccusation
	default:
		// Spy caught: outcome stays open until the guess window closes.
		r.guessesLeft = 2
	}
	r.accused = accused
	r.broadcast(r.revealMessage())
	r.log.Info("vote resolved",
		zap.String("accused", accused),
		zap.Bool("tied", tied),
		zap.String("outcome", string(r.outcome)))
}

// revealMessage builds the reveal payload. While the caught spy still has
// guesses left the true location is withheld, otherwise the spy would be
// handed the answer.
func (r *Room) revealMessage() types.ServerMessage {
	m := types.ServerMessage{
		Type:        types.EvtReveal,
		Accused:     r.accused,
		Spy:         r.spy,
		Outcome:     string(r.outcome),
		GuessesLeft: r.guessesLeft,
	}
	if r.outcome != "" {
		m.Location = r.location
	}
	return m
}

func (r *Room) spyGuess(p *player, location string) {
	if r.phase != game.PhaseReveal || p.name != r.spy || r.guessesLeft <= 0 || r.outcome != "" {
		r.sendErr(p, game.ErrInvalidPhaseTransition)
		return
	}
	if location == r.location {
		r.guessesLeft = 0
		r.outcome = game.OutcomeSpyGuessed
		r.broadcast(r.revealMessage())
		r.log.Info("spy guessed the location", zap.String("spy", p.name))
		return
	}
	r.guessesLeft--
	if r.guessesLeft == 0 {
		r.outcome = game.OutcomePlayersWin
		r.broadcast(r.revealMessage())
		r.log.Info("spy failed both guesses", zap.String("spy", p.name))
		return
	}
	r.send(p, types.ServerMessage{Type: types.EvtGuessResult, GuessCorrect: false, GuessesLeft: r.guessesLeft})
}

func (r *Room) toggleMark(p *player, location string) {
	if !r.phase.InRound() || !r.cat.Contains(location) {
		return
	}
	if p.marked[location] {
		delete(p.marked, location)
	} else {
		p.marked[location] = true
	}
	// Marks are per-player private; confirm to the owner only.
	r.send(p, types.ServerMessage{Type: types.EvtMarksUpdated, Marked: r.markedList(p)})
}

func (r *Room) updateNote(p *player, target, text string) {
	p.notes[target] = text
}

func (r *Room) startTimer(p *player) {
	if !r.requireHost(p) {
		return
	}
	if !r.phase.InRound() {
		r.sendErr(p, game.ErrInvalidPhaseTransition)
		return
	}
	if r.timerLeft == 0 {
		r.timerLeft = r.roundMinutes * 60
	}
	r.timerOn = true
	r.broadcast(types.ServerMessage{Type: types.EvtTimerTick, Remaining: r.timerLeft, TimerRunning: true})
}

func (r *Room) pauseTimer(p *player) {
	if !r.requireHost(p) {
		return
	}
	r.timerOn = false
	r.broadcast(types.ServerMessage{Type: types.EvtTimerTick, Remaining: r.timerLeft, TimerRunning: false})
}

// handleTick is the room's only autonomous state change; it runs on the same
// loop as every client action.
func (r *Room) handleTick() {
	if !r.timerOn || !r.phase.InRound() {
		return
	}
	if r.timerLeft > 0 {
		r.timerLeft--
	}
	if r.timerLeft == 0 {
		// Informational only: reaching zero never transitions phases.
		r.timerOn = false
	}
	r.broadcast(types.ServerMessage{Type: types.EvtTimerTick, Remaining: r.timerLeft, TimerRunning: r.timerOn})
}

func (r *Room) returnToLobby(p *player) {
	if !r.requireHost(p) {
		return
	}
	if !game.CanTransition(r.phase, game.PhaseLobby) {
		r.sendErr(p, game.ErrInvalidPhaseTransition)
		return
	}
	r.phase = game.PhaseLobby
	r.location = ""
	r.spy = ""
	r.accused = ""
	r.ballots = nil
	r.outcome = ""
	r.guessesLeft = 0
	r.timerLeft = 0
	r.timerOn = false
	for _, pl := range r.players {
		pl.role = ""
		pl.marked = make(map[string]bool)
		// Roster and note keys survive the reset; the text does not.
		for k := range pl.notes {
			pl.notes[k] = ""
		}
	}
	r.broadcast(types.ServerMessage{Type: types.EvtPhaseChanged, Code: r.code, Phase: string(r.phase), Players: r.roster()})
}

func (r *Room) kick(p *player, targetName string) {
	if !r.requireHost(p) {
		return
	}
	target := r.find(targetName)
	if target == nil {
		r.sendErr(p, game.ErrUnknownAccused)
		return
	}
	if target == p {
		r.sendErr(p, game.ErrInvalidPhaseTransition)
		return
	}
	r.send(target, types.ServerMessage{Type: types.EvtKicked, Message: "removed from the room by the host"})
	r.removePlayer(target, true)
}

// removePlayer deletes an identity entirely: a later join with the same name
// is a brand-new player. Disconnects never come through here.
func (r *Room) removePlayer(target *player, kicked bool) {
	idx := -1
	for i, pl := range r.players {
		if pl == target {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	wasHost := target.host
	wasSpy := r.phase.InRound() && target.name == r.spy
	if target.out != nil {
		close(target.out)
		target.out = nil
	}
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	delete(r.ballots, target.name)
	r.noteOccupancy()

	if wasHost && len(r.players) > 0 {
		// Next-longest-seated connected player inherits the room.
		next := r.players[0]
		for _, pl := range r.players {
			if pl.connected {
				next = pl
				break
			}
		}
		next.host = true
	}

	r.broadcast(types.ServerMessage{Type: types.EvtPlayerLeft, Name: target.name, Players: r.roster()})
	r.log.Info("player removed", zap.String("name", target.name), zap.Bool("kicked", kicked))

	if wasSpy {
		r.phase = game.PhaseReveal
		r.outcome = game.OutcomeSpyRemoved
		r.guessesLeft = 0
		r.broadcast(types.ServerMessage{Type: types.EvtPhaseChanged, Code: r.code, Phase: string(r.phase), Players: r.roster()})
		r.broadcast(r.revealMessage())
		return
	}
	r.resolveIfComplete()
}

func (r *Room) endGame(p *player) {
	if !r.requireHost(p) {
		return
	}
	if r.phase == game.PhaseEnded {
		r.sendErr(p, game.ErrInvalidPhaseTransition)
		return
	}
	r.phase = game.PhaseEnded
	r.timerOn = false
	r.broadcast(types.ServerMessage{Type: types.EvtPhaseChanged, Code: r.code, Phase: string(r.phase), Players: r.roster()})
	r.log.Info("game ended by host")
}
