package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/uno-online/internal/network/protocol"
)

// recvMessage pops the next queued outbound message of a connectionless client
func recvMessage(t *testing.T, c *Client) *protocol.Message {
	t.Helper()
	select {
	case data := <-c.send:
		msg, err := protocol.Decode(data)
		require.NoError(t, err)
		return msg
	case <-time.After(time.Second):
		t.Fatal("expected an outbound message")
		return nil
	}
}

func TestHandler_Join(t *testing.T) {
	s := newTestServer(t)
	room := s.roomManager.CreateRoom()

	c := NewClient(s, nil)
	c.PendingCode = room.Code

	s.handler.Handle(c, protocol.MustNewMessage(protocol.MsgJoin, protocol.JoinPayload{Name: "alice"}))

	msg := recvMessage(t, c)
	require.Equal(t, protocol.MsgJoined, msg.Type)

	payload, err := protocol.ParsePayload[protocol.JoinedPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, room.Code, payload.RoomCode)
	assert.Equal(t, "alice", payload.Player.Name)
	assert.True(t, payload.Player.IsHost)
	assert.Equal(t, room.Code, c.GetRoom())
}

func TestHandler_Join_EmptyNameGenerated(t *testing.T) {
	s := newTestServer(t)
	room := s.roomManager.CreateRoom()

	c := NewClient(s, nil)
	c.PendingCode = room.Code

	s.handler.Handle(c, protocol.MustNewMessage(protocol.MsgJoin, protocol.JoinPayload{}))

	msg := recvMessage(t, c)
	require.Equal(t, protocol.MsgJoined, msg.Type)
	assert.NoError(t, ValidateNickname(c.GetName()))
}

func TestHandler_Join_UnknownRoom(t *testing.T) {
	s := newTestServer(t)

	c := NewClient(s, nil)
	c.PendingCode = "ZZZZZ"

	s.handler.Handle(c, protocol.MustNewMessage(protocol.MsgJoin, protocol.JoinPayload{Name: "alice"}))

	msg := recvMessage(t, c)
	require.Equal(t, protocol.MsgError, msg.Type)

	payload, err := protocol.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeRoomNotFound, payload.Code)
}

func TestHandler_Ping(t *testing.T) {
	s := newTestServer(t)
	c := NewClient(s, nil)

	ts := time.Now().UnixMilli()
	s.handler.Handle(c, protocol.MustNewMessage(protocol.MsgPing, protocol.PingPayload{Timestamp: ts}))

	msg := recvMessage(t, c)
	require.Equal(t, protocol.MsgPong, msg.Type)

	payload, err := protocol.ParsePayload[protocol.PongPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, ts, payload.ClientTimestamp)
	assert.GreaterOrEqual(t, payload.ServerTimestamp, ts)
}

func TestHandler_UnknownType(t *testing.T) {
	s := newTestServer(t)
	c := NewClient(s, nil)

	s.handler.Handle(c, protocol.MustNewMessage(protocol.MessageType("bogus"), nil))

	msg := recvMessage(t, c)
	require.Equal(t, protocol.MsgError, msg.Type)

	payload, err := protocol.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeInvalidMsg, payload.Code)
}

func TestHandler_PlayWithoutGame(t *testing.T) {
	s := newTestServer(t)
	room := s.roomManager.CreateRoom()

	c := NewClient(s, nil)
	c.PendingCode = room.Code
	s.handler.Handle(c, protocol.MustNewMessage(protocol.MsgJoin, protocol.JoinPayload{Name: "alice"}))
	recvMessage(t, c) // joined

	s.handler.Handle(c, protocol.MustNewMessage(protocol.MsgDrawCard, nil))

	msg := recvMessage(t, c)
	require.Equal(t, protocol.MsgError, msg.Type)

	payload, err := protocol.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeGameNotStart, payload.Code)
}

func TestHandler_GetLeaderboard(t *testing.T) {
	s := newTestServer(t)
	c := NewClient(s, nil)

	require.NoError(t, s.leaderboard.RecordGameResult(t.Context(), "alice", []string{"bob"}))

	s.handler.Handle(c, protocol.MustNewMessage(protocol.MsgGetLeaderboard, protocol.GetLeaderboardPayload{Limit: 10}))

	msg := recvMessage(t, c)
	require.Equal(t, protocol.MsgLeaderboard, msg.Type)

	payload, err := protocol.ParsePayload[protocol.LeaderboardPayload](msg)
	require.NoError(t, err)
	require.Len(t, payload.Entries, 2)
	assert.Equal(t, "alice", payload.Entries[0].PlayerName)
}
