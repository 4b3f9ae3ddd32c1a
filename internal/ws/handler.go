// Package ws adapts websocket connections onto room inboxes. It owns no
// game state: each connection is decoded into room messages and each room
// broadcast is drained from a per-connection outbox.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parlorgames/spyfall-backend/internal/registry"
	"github.com/parlorgames/spyfall-backend/internal/room"
	"github.com/parlorgames/spyfall-backend/internal/types"
)

const writeTimeout = 3 * time.Second

// Handler binds a connection to a room and player identity, both taken from
// the query string. Connection loss is not an error: the room just marks the
// seat disconnected until the same name joins again.
func Handler(reg *registry.Registry, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		name := r.URL.Query().Get("name")
		if code == "" || name == "" {
			http.Error(w, "missing code or name", http.StatusBadRequest)
			return
		}

		reply := make(chan *room.Room, 1)
		reg.Inbox() <- registry.GetRoom{Code: code, Reply: reply}
		rm := <-reply
		if rm == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := uuid.NewString()
		clog := log.With(zap.String("conn", connID), zap.String("room", code), zap.String("name", name))

		out := make(chan types.ServerMessage, 16)
		rm.Inbox() <- room.Join{Name: name, Outbox: out}
		// Outbox identifies this connection; a stale disconnect after the
		// same name rebinds elsewhere is a no-op.
		defer func() { rm.Inbox() <- room.Disconnect{Name: name, Outbox: out} }()

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for msg := range out {
				payload, err := json.Marshal(msg)
				if err != nil {
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				werr := conn.Write(ctx, websocket.MessageText, payload)
				cancel()
				if werr != nil {
					return
				}
			}
			// Room closed the outbox: join rejected, kick, or shutdown.
			conn.Close(websocket.StatusNormalClosure, "closed by room")
		}()

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				clog.Debug("connection closed", zap.Error(err))
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"error","kind":"Internal","message":"bad json"}`))
				continue
			}
			rm.Inbox() <- room.FromClient{Name: name, Msg: cm}
		}
	}
}
