package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_AddToQueueDeduplicates(t *testing.T) {
	s := newTestServer(t)
	c := NewClient(s, nil)
	c.SetName("alice")

	s.matcher.AddToQueue(c)
	s.matcher.AddToQueue(c)

	assert.Equal(t, 1, s.matcher.GetQueueLength())
}

func TestMatcher_RemoveFromQueue(t *testing.T) {
	s := newTestServer(t)
	c := NewClient(s, nil)
	c.SetName("alice")

	s.matcher.AddToQueue(c)
	s.matcher.RemoveFromQueue(c)

	assert.Equal(t, 0, s.matcher.GetQueueLength())

	// Removing an absent client is harmless
	s.matcher.RemoveFromQueue(c)
}

func TestMatcher_PairsTwoPlayers(t *testing.T) {
	s := newTestServer(t)

	alice := NewClient(s, nil)
	alice.SetName("alice")
	bob := NewClient(s, nil)
	bob.SetName("bob")

	s.matcher.AddToQueue(alice)
	assert.Equal(t, 1, s.matcher.GetQueueLength())

	s.matcher.AddToQueue(bob)

	// The pair leaves the queue and lands in a freshly started game
	require.Eventually(t, func() bool {
		code := alice.GetRoom()
		if code == "" || code != bob.GetRoom() {
			return false
		}
		room := s.roomManager.GetRoom(code)
		return room != nil && room.GetGameSession() != nil
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, 0, s.matcher.GetQueueLength())
}

func TestMatcher_UnnamedPlayerGetsNickname(t *testing.T) {
	s := newTestServer(t)

	alice := NewClient(s, nil)
	bob := NewClient(s, nil)

	s.matcher.AddToQueue(alice)
	s.matcher.AddToQueue(bob)

	require.Eventually(t, func() bool {
		return alice.GetRoom() != "" && bob.GetRoom() != ""
	}, time.Second, 10*time.Millisecond)

	assert.NoError(t, ValidateNickname(alice.GetName()))
	assert.NoError(t, ValidateNickname(bob.GetName()))
}
