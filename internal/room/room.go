// Package room implements the authoritative state machine for one game
// instance. All mutations to a room's state go through a single goroutine
// draining an inbox channel, so no two actions on the same room ever
// interleave. Different rooms are fully independent.
package room

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/parlorgames/spyfall-backend/internal/catalog"
	"github.com/parlorgames/spyfall-backend/internal/game"
	"github.com/parlorgames/spyfall-backend/internal/types"
)

type Msg interface{ isRoomMsg() }

// Join seats a new player, or rebinds a disconnected identity to a fresh
// connection. Rejections are delivered on Outbox before it is closed.
type Join struct {
	Name   string
	Outbox chan types.ServerMessage
}

func (Join) isRoomMsg() {}

// Disconnect marks a player's connection as lost. The identity keeps its
// seat and private state. Outbox guards against a stale connection
// disconnecting a seat it no longer owns.
type Disconnect struct {
	Name   string
	Outbox chan types.ServerMessage
}

func (Disconnect) isRoomMsg() {}

// FromClient carries one decoded client action.
type FromClient struct {
	Name string
	Msg  types.ClientMessage
}

func (FromClient) isRoomMsg() {}

// Status is the registry's GC probe.
type Status struct{ Reply chan StatusView }

func (Status) isRoomMsg() {}

type StatusView struct {
	Phase      game.Phase
	Connected  int
	EmptySince time.Time // zero while anyone is connected
}

// GetState reflects internal state without data races; used by tests.
type GetState struct{ Reply chan View }

func (GetState) isRoomMsg() {}

type View struct {
	Phase       game.Phase
	Players     []types.PlayerInfo
	Host        string
	Location    string
	Spy         string
	Accused     string
	Outcome     game.Outcome
	Ballots     map[string]string
	GuessesLeft int
	Round       int
	TimerLeft   int
	TimerOn     bool
}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

type player struct {
	name      string
	host      bool
	connected bool
	out       chan types.ServerMessage // nil while disconnected

	role   string // empty outside a round or for players who missed the deal
	notes  map[string]string
	marked map[string]bool
}

// Options tune a room; zero values select production defaults.
type Options struct {
	Rng          *rand.Rand
	TickInterval time.Duration
	RoundMinutes int
	Logger       *zap.Logger
}

type Room struct {
	inbox chan Msg
	code  string
	cat   *catalog.Catalog
	rng   *rand.Rand
	log   *zap.Logger

	phase   game.Phase
	players []*player // join order; order drives host succession
	round   int

	location    string
	spy         string
	accused     string
	ballots     map[string]string
	guessesLeft int
	outcome     game.Outcome

	roundMinutes int
	timerLeft    int
	timerOn      bool

	emptySince time.Time
	ticker     *time.Ticker
	ctx        context.Context
	cancel     context.CancelFunc
}

// New creates a room in LOBBY with the creator seated as host but not yet
// connected; the creator's websocket binds to the seat like a reconnect.
func New(parent context.Context, code, hostName string, cat *catalog.Catalog, opts Options) *Room {
	ctx, cancel := context.WithCancel(parent)

	if opts.Rng == nil {
		opts.Rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.RoundMinutes <= 0 {
		opts.RoundMinutes = 8
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := &Room{
		inbox:        make(chan Msg, 64),
		code:         code,
		cat:          cat,
		rng:          opts.Rng,
		log:          opts.Logger.With(zap.String("room", code)),
		phase:        game.PhaseLobby,
		roundMinutes: opts.RoundMinutes,
		emptySince:   time.Now(),
		ticker:       time.NewTicker(opts.TickInterval),
		ctx:          ctx,
		cancel:       cancel,
	}
	r.players = append(r.players, &player{
		name:   hostName,
		host:   true,
		notes:  make(map[string]string),
		marked: make(map[string]bool),
	})

	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case <-r.ticker.C:
			r.handleTick()

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.handleJoin(msg)
			case Disconnect:
				r.handleDisconnect(msg)
			case FromClient:
				r.handleAction(msg)
			case Status:
				msg.Reply <- StatusView{
					Phase:      r.phase,
					Connected:  r.connectedCount(),
					EmptySince: r.emptySince,
				}
			case GetState:
				msg.Reply <- r.view()
			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) shutdown() {
	r.ticker.Stop()
	for _, p := range r.players {
		if p.out != nil {
			close(p.out)
			p.out = nil
		}
		p.connected = false
	}
	r.cancel()
}

func (r *Room) view() View {
	ballots := make(map[string]string, len(r.ballots))
	for k, v := range r.ballots {
		ballots[k] = v
	}
	return View{
		Phase:       r.phase,
		Players:     r.roster(),
		Host:        r.hostName(),
		Location:    r.location,
		Spy:         r.spy,
		Accused:     r.accused,
		Outcome:     r.outcome,
		Ballots:     ballots,
		GuessesLeft: r.guessesLeft,
		Round:       r.round,
		TimerLeft:   r.timerLeft,
		TimerOn:     r.timerOn,
	}
}

func (r *Room) find(name string) *player {
	for _, p := range r.players {
		if p.name == name {
			return p
		}
	}
	return nil
}

func (r *Room) hostName() string {
	for _, p := range r.players {
		if p.host {
			return p.name
		}
	}
	return ""
}

func (r *Room) connectedCount() int {
	n := 0
	for _, p := range r.players {
		if p.connected {
			n++
		}
	}
	return n
}

func (r *Room) roster() []types.PlayerInfo {
	infos := make([]types.PlayerInfo, 0, len(r.players))
	for _, p := range r.players {
		infos = append(infos, types.PlayerInfo{Name: p.name, Host: p.host, Connected: p.connected})
	}
	return infos
}

// send delivers to one connection; a full outbox means the client stopped
// draining, so the seat is treated as disconnected.
func (r *Room) send(p *player, msg types.ServerMessage) {
	if p.out == nil {
		return
	}
	select {
	case p.out <- msg:
	default:
		r.dropConn(p)
	}
}

func (r *Room) broadcast(msg types.ServerMessage) {
	for _, p := range r.players {
		r.send(p, msg)
	}
}

func (r *Room) sendErr(p *player, err error) {
	r.send(p, types.ServerMessage{Type: types.EvtError, Kind: game.Kind(err), Message: err.Error()})
}

func (r *Room) dropConn(p *player) {
	if p.out != nil {
		close(p.out)
		p.out = nil
	}
	p.connected = false
	r.noteOccupancy()
}

func (r *Room) noteOccupancy() {
	if r.connectedCount() == 0 {
		if r.emptySince.IsZero() {
			r.emptySince = time.Now()
		}
	} else {
		r.emptySince = time.Time{}
	}
}

func (r *Room) markedList(p *player) []string {
	out := make([]string, 0, len(p.marked))
	for loc := range p.marked {
		out = append(out, loc)
	}
	sort.Strings(out)
	return out
}
