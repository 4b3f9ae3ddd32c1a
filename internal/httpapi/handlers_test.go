package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parlorgames/spyfall-backend/internal/catalog"
	"github.com/parlorgames/spyfall-backend/internal/registry"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "locations.csv")
	require.NoError(t, os.WriteFile(path, []byte("location,roles\nAirplane,\"Pilot, Attendant\"\n"), 0o644))
	cat, err := catalog.Load(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	reg := registry.New(ctx, cat, registry.Options{SweepInterval: time.Hour})

	srv := httptest.NewServer(SetupRoutes(reg, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func jsonDecode(resp *http.Response, v any) error {
	return json.NewDecoder(resp.Body).Decode(v)
}

func TestCreateRoom(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Post(srv.URL+"/rooms", "application/json", strings.NewReader(`{"hostName":"Ann"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body struct {
		Type string `json:"type"`
		Code string `json:"code"`
	}
	require.NoError(t, jsonDecode(resp, &body))
	assert.Equal(t, "room-created", body.Type)
	assert.Len(t, body.Code, 6)
}

func TestCreateRoom_RequiresHostName(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Post(srv.URL+"/rooms", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRoomQR(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Post(srv.URL+"/rooms", "application/json", strings.NewReader(`{"hostName":"Ann"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, jsonDecode(resp, &body))

	qr, err := http.Get(srv.URL + "/rooms/" + body.Code + "/qr")
	require.NoError(t, err)
	defer qr.Body.Close()
	assert.Equal(t, http.StatusOK, qr.StatusCode)
	assert.Equal(t, "image/png", qr.Header.Get("Content-Type"))

	missing, err := http.Get(srv.URL + "/rooms/NOPE42/qr")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWS_MissingParams(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
