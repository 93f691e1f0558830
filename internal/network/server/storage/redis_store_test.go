package storage

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func sampleSnapshot(code string) RoomSnapshot {
	return RoomSnapshot{
		Code:  code,
		State: 0,
		Players: []PlayerSnapshot{
			{ID: "p1", Name: "alice", IsHost: true, Ready: true},
			{ID: "p2", Name: "bob"},
		},
		PlayerOrder: []string{"p1", "p2"},
		CreatedAt:   time.Now().Unix(),
	}
}

func TestRedisStore_SaveLoadRoundtrip(t *testing.T) {
	rs := newTestStore(t)
	ctx := t.Context()

	want := sampleSnapshot("ABC12")
	require.NoError(t, rs.SaveRoom(ctx, want))

	got, err := rs.LoadRoom(ctx, "ABC12")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestRedisStore_LoadMissing(t *testing.T) {
	rs := newTestStore(t)

	got, err := rs.LoadRoom(t.Context(), "NOPE1")
	require.NoError(t, err)
	assert.Nil(t, got, "missing room is not an error")
}

func TestRedisStore_DeleteRoom(t *testing.T) {
	rs := newTestStore(t)
	ctx := t.Context()

	require.NoError(t, rs.SaveRoom(ctx, sampleSnapshot("ABC12")))
	require.NoError(t, rs.DeleteRoom(ctx, "ABC12"))

	got, err := rs.LoadRoom(ctx, "ABC12")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting twice is harmless
	assert.NoError(t, rs.DeleteRoom(ctx, "ABC12"))
}

func TestRedisStore_GetAllRoomCodes(t *testing.T) {
	rs := newTestStore(t)
	ctx := t.Context()

	require.NoError(t, rs.SaveRoom(ctx, sampleSnapshot("AAAAA")))
	require.NoError(t, rs.SaveRoom(ctx, sampleSnapshot("BBBBB")))

	codes, err := rs.GetAllRoomCodes(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"AAAAA", "BBBBB"}, codes)
}
