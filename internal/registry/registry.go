// Package registry owns the process-wide room table: room creation with
// unique short codes, lookup, and garbage collection of abandoned rooms.
// Like a room, the registry is a single goroutine draining an inbox.
package registry

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/parlorgames/spyfall-backend/internal/catalog"
	"github.com/parlorgames/spyfall-backend/internal/game"
	"github.com/parlorgames/spyfall-backend/internal/room"
)

// codeAlphabet excludes visually ambiguous glyphs (I, L, O, 0, 1) so codes
// stay human-typeable.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const codeLength = 6

const maxCodeAttempts = 32

type Msg interface{ isRegistryMsg() }

type CreateRoom struct {
	HostName string
	Reply    chan CreateReply
}

func (CreateRoom) isRegistryMsg() {}

type CreateReply struct {
	Code string
	Room *room.Room
	Err  error
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

func (GetRoom) isRegistryMsg() {}

type RemoveRoom struct{ Code string }

func (RemoveRoom) isRegistryMsg() {}

type Shutdown struct{}

func (Shutdown) isRegistryMsg() {}

// Options tune the registry; zero values select production defaults.
type Options struct {
	// GCGrace is how long a room may sit with zero connected players before
	// the sweep removes it and frees its code.
	GCGrace time.Duration
	// SweepInterval is how often the GC sweep runs.
	SweepInterval time.Duration
	Room          room.Options
	Logger        *zap.Logger
}

type Registry struct {
	inbox  chan Msg
	rooms  map[string]*room.Room
	cat    *catalog.Catalog
	opts   Options
	log    *zap.Logger
	sweep  *time.Ticker
	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, cat *catalog.Catalog, opts Options) *Registry {
	ctx, cancel := context.WithCancel(parent)

	if opts.GCGrace <= 0 {
		opts.GCGrace = 5 * time.Minute
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	reg := &Registry{
		inbox:  make(chan Msg, 64),
		rooms:  make(map[string]*room.Room),
		cat:    cat,
		opts:   opts,
		log:    opts.Logger,
		sweep:  time.NewTicker(opts.SweepInterval),
		ctx:    ctx,
		cancel: cancel,
	}
	go reg.loop()
	return reg
}

func (reg *Registry) Inbox() chan<- Msg { return reg.inbox }

func (reg *Registry) loop() {
	for {
		select {
		case <-reg.ctx.Done():
			reg.shutdown()
			return

		case <-reg.sweep.C:
			reg.collect()

		case m := <-reg.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				msg.Reply <- reg.create(msg.HostName)

			case GetRoom:
				msg.Reply <- reg.rooms[normalizeCode(msg.Code)]

			case RemoveRoom:
				if rm := reg.rooms[normalizeCode(msg.Code)]; rm != nil {
					rm.Inbox() <- room.Shutdown{}
					delete(reg.rooms, normalizeCode(msg.Code))
				}

			case Shutdown:
				reg.shutdown()
				return
			}
		}
	}
}

func (reg *Registry) shutdown() {
	reg.sweep.Stop()
	for code, rm := range reg.rooms {
		rm.Inbox() <- room.Shutdown{}
		delete(reg.rooms, code)
	}
	reg.cancel()
}

func (reg *Registry) create(hostName string) CreateReply {
	var code string
	for attempt := 0; ; attempt++ {
		if attempt == maxCodeAttempts {
			return CreateReply{Err: game.ErrCodeExhaustion}
		}
		c, err := generateCode()
		if err != nil {
			return CreateReply{Err: err}
		}
		if _, taken := reg.rooms[c]; !taken {
			code = c
			break
		}
	}

	ropts := reg.opts.Room
	if ropts.Logger == nil {
		ropts.Logger = reg.log
	}
	rm := room.New(reg.ctx, code, hostName, reg.cat, ropts)
	reg.rooms[code] = rm
	reg.log.Info("room created", zap.String("room", code), zap.String("host", hostName))
	return CreateReply{Code: code, Room: rm}
}

// collect probes every room and removes the ones that have been empty past
// the grace interval, plus anything a host explicitly ended. Removal frees
// the code for reuse.
func (reg *Registry) collect() {
	cutoff := time.Now().Add(-reg.opts.GCGrace)
	for code, rm := range reg.rooms {
		reply := make(chan room.StatusView, 1)
		rm.Inbox() <- room.Status{Reply: reply}
		st := <-reply

		stale := st.Connected == 0 && !st.EmptySince.IsZero() && st.EmptySince.Before(cutoff)
		if stale || (st.Phase == game.PhaseEnded && st.Connected == 0) {
			rm.Inbox() <- room.Shutdown{}
			delete(reg.rooms, code)
			reg.log.Info("room collected", zap.String("room", code), zap.String("phase", string(st.Phase)))
		}
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func generateCode() (string, error) {
	code := make([]byte, codeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}
