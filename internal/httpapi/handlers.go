package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/parlorgames/spyfall-backend/internal/registry"
	"github.com/parlorgames/spyfall-backend/internal/room"
	"github.com/parlorgames/spyfall-backend/internal/types"
)

// CreateRoom allocates a room with the caller seated as host and returns the
// join code. The host's websocket binds to the seat afterwards.
func CreateRoom(reg *registry.Registry, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			HostName string `json:"hostName"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.HostName == "" {
			http.Error(w, "hostName required", http.StatusBadRequest)
			return
		}

		reply := make(chan registry.CreateReply, 1)
		reg.Inbox() <- registry.CreateRoom{HostName: body.HostName, Reply: reply}
		created := <-reply
		if created.Err != nil {
			log.Error("room creation failed", zap.Error(created.Err))
			http.Error(w, created.Err.Error(), http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(struct {
			Type string `json:"type"`
			Code string `json:"code"`
		}{Type: types.EvtRoomCreated, Code: created.Code})
	}
}

// RoomQR serves a QR code PNG encoding the join link for a room, for phones
// scanning their way into the lobby.
func RoomQR(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		reply := make(chan *room.Room, 1)
		reg.Inbox() <- registry.GetRoom{Code: code, Reply: reply}
		if <-reply == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		joinURL := fmt.Sprintf("%s://%s/?code=%s", scheme, r.Host, code)
		png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
		if err != nil {
			http.Error(w, "failed to render qr code", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
