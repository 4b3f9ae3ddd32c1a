package registry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlorgames/spyfall-backend/internal/catalog"
	"github.com/parlorgames/spyfall-backend/internal/room"
	"github.com/parlorgames/spyfall-backend/internal/types"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "locations.csv")
	require.NoError(t, os.WriteFile(path, []byte("location,roles\nAirplane,\"Pilot, Attendant\"\n"), 0o644))
	cat, err := catalog.Load(path)
	require.NoError(t, err)
	return cat
}

func testRegistry(t *testing.T, opts Options) *Registry {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if opts.SweepInterval == 0 {
		opts.SweepInterval = time.Hour
	}
	return New(ctx, testCatalog(t), opts)
}

func create(t *testing.T, reg *Registry, host string) CreateReply {
	t.Helper()
	reply := make(chan CreateReply, 1)
	reg.Inbox() <- CreateRoom{HostName: host, Reply: reply}
	select {
	case r := <-reply:
		return r
	case <-time.After(time.Second):
		t.Fatal("timed out creating room")
		return CreateReply{}
	}
}

func lookup(t *testing.T, reg *Registry, code string) *room.Room {
	t.Helper()
	reply := make(chan *room.Room, 1)
	reg.Inbox() <- GetRoom{Code: code, Reply: reply}
	select {
	case rm := <-reply:
		return rm
	case <-time.After(time.Second):
		t.Fatal("timed out looking up room")
		return nil
	}
}

func TestCreateRoom_CodeShape(t *testing.T) {
	reg := testRegistry(t, Options{})

	created := create(t, reg, "Ann")
	require.NoError(t, created.Err)
	require.NotNil(t, created.Room)

	assert.Len(t, created.Code, 6)
	for _, c := range created.Code {
		assert.Contains(t, codeAlphabet, string(c))
	}
}

func TestGenerateCode_ExcludesAmbiguousGlyphs(t *testing.T) {
	for _, banned := range "ILO01" {
		assert.NotContains(t, codeAlphabet, string(banned))
	}
	for i := 0; i < 50; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, c := range code {
			assert.Contains(t, codeAlphabet, string(c))
		}
	}
}

func TestLookup_IsCaseInsensitive(t *testing.T) {
	reg := testRegistry(t, Options{})
	created := create(t, reg, "Ann")
	require.NoError(t, created.Err)

	assert.Same(t, created.Room, lookup(t, reg, created.Code))
	assert.Same(t, created.Room, lookup(t, reg, strings.ToLower(created.Code)))
	assert.Same(t, created.Room, lookup(t, reg, " "+created.Code+" "))
	assert.Nil(t, lookup(t, reg, "NOPE42"))
}

func TestCreateRoom_SeatsHost(t *testing.T) {
	reg := testRegistry(t, Options{})
	created := create(t, reg, "Ann")
	require.NoError(t, created.Err)

	// The creator's seat exists before any connection binds to it.
	reply := make(chan room.View, 1)
	created.Room.Inbox() <- room.GetState{Reply: reply}
	v := <-reply
	require.Len(t, v.Players, 1)
	assert.Equal(t, "Ann", v.Players[0].Name)
	assert.True(t, v.Players[0].Host)
	assert.False(t, v.Players[0].Connected)
}

func TestRemoveRoom(t *testing.T) {
	reg := testRegistry(t, Options{})
	created := create(t, reg, "Ann")
	require.NoError(t, created.Err)

	reg.Inbox() <- RemoveRoom{Code: created.Code}
	assert.Nil(t, lookup(t, reg, created.Code))
}

func TestGC_CollectsRoomsEmptyPastGrace(t *testing.T) {
	reg := testRegistry(t, Options{
		GCGrace:       30 * time.Millisecond,
		SweepInterval: 10 * time.Millisecond,
	})
	created := create(t, reg, "Ann")
	require.NoError(t, created.Err)

	// Nobody ever connects; the room ages out and the code frees up.
	assert.Eventually(t, func() bool {
		return lookup(t, reg, created.Code) == nil
	}, time.Second, 10*time.Millisecond)
}

func TestGC_SparesOccupiedRooms(t *testing.T) {
	reg := testRegistry(t, Options{
		GCGrace:       30 * time.Millisecond,
		SweepInterval: 10 * time.Millisecond,
	})
	created := create(t, reg, "Ann")
	require.NoError(t, created.Err)

	out := make(chan types.ServerMessage, 64)
	created.Room.Inbox() <- room.Join{Name: "Ann", Outbox: out}
	go func() {
		for range out {
		}
	}()

	time.Sleep(150 * time.Millisecond)
	assert.NotNil(t, lookup(t, reg, created.Code), "occupied rooms must survive the sweep")
}
