package server

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/uno-online/internal/apperrors"
	"github.com/palemoky/uno-online/internal/config"
	"github.com/palemoky/uno-online/internal/game/card"
	"github.com/palemoky/uno-online/internal/game/turn"
	"github.com/palemoky/uno-online/internal/network/protocol"
	"github.com/palemoky/uno-online/internal/network/server/monitor"
	"github.com/palemoky/uno-online/internal/network/server/storage"
	"github.com/palemoky/uno-online/internal/testutil"
)

// Prometheus collectors register globally, share one monitor across tests
var (
	monitorOnce   sync.Once
	sharedMonitor *monitor.Monitor
)

func testMonitor() *monitor.Monitor {
	monitorOnce.Do(func() {
		sharedMonitor = monitor.NewMonitor("uno_test")
	})
	return sharedMonitor
}

// newTestServer builds a server around an in-process miniredis
func newTestServer(t *testing.T) *Server {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := config.Default()
	s := &Server{
		config:         cfg,
		redis:          rdb,
		redisStore:     storage.NewRedisStore(rdb),
		leaderboard:    storage.NewLeaderboardManager(rdb),
		monitor:        testMonitor(),
		clients:        make(map[string]*Client),
		rateLimiter:    NewRateLimiter(100, 1000, time.Second),
		originChecker:  NewOriginChecker([]string{"*"}),
		messageLimiter: NewMessageRateLimiter(100),
		maxConnections: 100,
		semaphore:      make(chan struct{}, 100),
	}
	s.roomManager = NewRoomManager(s)
	s.matcher = NewMatcher(s)
	s.handler = NewHandler(s)
	return s
}

// newTestGame wires a playing room with fake clients
func newTestGame(t *testing.T, s *Server, names ...string) (*GameSession, map[string]*testutil.SimpleClient) {
	t.Helper()

	room := &Room{
		Code:        "TEST1",
		State:       RoomStatePlaying,
		Players:     make(map[string]*RoomPlayer),
		PlayerOrder: make([]string, 0, len(names)),
		CreatedAt:   time.Now(),
		server:      s,
	}

	gs := &GameSession{room: room, state: GameStateDealing}
	clients := make(map[string]*testutil.SimpleClient, len(names))

	for i, name := range names {
		id := fmt.Sprintf("p%d", i+1)
		c := &testutil.SimpleClient{ID: id, Name: name}
		clients[id] = c
		room.Players[id] = &RoomPlayer{Client: c}
		room.PlayerOrder = append(room.PlayerOrder, id)
		gs.players = append(gs.players, &GamePlayer{ID: id, Name: name, client: c})
	}

	room.game = gs
	return gs, clients
}

// setGameState puts the session into a known mid-game position,
// seats in player order, p1 to move
func setGameState(t *testing.T, gs *GameSession, hands map[string][]card.Card, top card.Card, deck card.Deck) {
	t.Helper()

	seats := make([]string, 0, len(gs.players))
	for _, p := range gs.players {
		seats = append(seats, p.ID)
		p.Hand = hands[p.ID]
	}

	order, err := turn.New(seats)
	require.NoError(t, err)

	gs.order = order
	gs.deck = deck
	gs.discard = []card.Card{top}
	gs.topCard = top
	gs.state = GameStatePlaying
	gs.startedAt = time.Now()
}

func decodePayload[T any](t *testing.T, msg *protocol.Message) T {
	t.Helper()
	var payload T
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	return payload
}

func TestGameSession_StartDealsHands(t *testing.T) {
	s := newTestServer(t)
	gs, clients := newTestGame(t, s, "alice", "bob", "carol")

	gs.Start()

	require.Equal(t, GameStatePlaying, gs.state)
	assert.False(t, gs.topCard.IsWild(), "first discard must not be wild")
	assert.Len(t, gs.discard, 1)
	// 108 - 3*7 hands - 1 discard
	assert.Len(t, gs.deck, 108-21-1)

	for id, c := range clients {
		msgs := c.MessagesOfType(protocol.MsgGameStart)
		require.Len(t, msgs, 1, "each player gets exactly one game_start")

		payload := decodePayload[protocol.GameStartPayload](t, msgs[0])
		assert.Len(t, payload.Hand, 7)
		assert.Equal(t, gs.order.Current(), payload.CurrentTurn)
		assert.Len(t, payload.Players, 3)

		// The private hand matches the server-side one
		assert.Equal(t, protocol.CardsToInfos(gs.findPlayer(id).Hand), payload.Hand)
	}
}

func TestGameSession_PlayCards_Validation(t *testing.T) {
	s := newTestServer(t)
	gs, _ := newTestGame(t, s, "alice", "bob")

	hand := []card.Card{
		{Color: card.ColorRed, Value: card.Value5},
		{Color: card.ColorBlue, Value: card.Value5},
		{Color: card.ColorGreen, Value: card.Value7},
		{Color: card.ColorNone, Value: card.ValueWild},
	}
	setGameState(t, gs,
		map[string][]card.Card{"p1": hand, "p2": {{Color: card.ColorYellow, Value: card.Value1}}},
		card.Card{Color: card.ColorRed, Value: card.Value3},
		card.Deck{{Color: card.ColorBlue, Value: card.Value9}},
	)

	// Out of turn
	err := gs.HandlePlayCards("p2", []card.Card{{Color: card.ColorYellow, Value: card.Value1}}, card.ColorNone)
	assert.ErrorIs(t, err, apperrors.ErrNotYourTurn)

	// Empty play
	err = gs.HandlePlayCards("p1", nil, card.ColorNone)
	assert.ErrorIs(t, err, apperrors.ErrNoCards)

	// Mixed values
	err = gs.HandlePlayCards("p1", []card.Card{hand[0], hand[2]}, card.ColorNone)
	assert.ErrorIs(t, err, apperrors.ErrMixedValues)

	// Cards not in hand
	err = gs.HandlePlayCards("p1", []card.Card{{Color: card.ColorYellow, Value: card.Value5}}, card.ColorNone)
	assert.ErrorIs(t, err, apperrors.ErrCardsNotHeld)

	// Does not beat the pile top
	err = gs.HandlePlayCards("p1", []card.Card{hand[2]}, card.ColorNone)
	assert.ErrorIs(t, err, apperrors.ErrIllegalPlay)

	// Wild without a chosen color
	err = gs.HandlePlayCards("p1", []card.Card{hand[3]}, card.ColorNone)
	assert.ErrorIs(t, err, apperrors.ErrInvalidColor)

	// Every rejection leaves the hand untouched
	assert.Len(t, gs.findPlayer("p1").Hand, 4)
	assert.Equal(t, "p1", gs.order.Current())
	assert.Equal(t, card.Card{Color: card.ColorRed, Value: card.Value3}, gs.topCard)
}

func TestGameSession_PlayCards_NumberAdvancesOnce(t *testing.T) {
	s := newTestServer(t)
	gs, clients := newTestGame(t, s, "alice", "bob", "carol")

	played := card.Card{Color: card.ColorRed, Value: card.Value5}
	setGameState(t, gs,
		map[string][]card.Card{
			"p1": {played, {Color: card.ColorBlue, Value: card.Value2}},
			"p2": {{Color: card.ColorYellow, Value: card.Value1}},
			"p3": {{Color: card.ColorGreen, Value: card.Value1}},
		},
		card.Card{Color: card.ColorRed, Value: card.Value3},
		nil,
	)

	require.NoError(t, gs.HandlePlayCards("p1", []card.Card{played}, card.ColorNone))

	assert.Equal(t, "p2", gs.order.Current())
	assert.Equal(t, played, gs.topCard)
	assert.Len(t, gs.findPlayer("p1").Hand, 1)

	// Everyone saw the play
	for _, c := range clients {
		msgs := c.MessagesOfType(protocol.MsgCardPlayed)
		require.Len(t, msgs, 1)
		payload := decodePayload[protocol.CardPlayedPayload](t, msgs[0])
		assert.Equal(t, "p1", payload.PlayerID)
		assert.Equal(t, "p2", payload.CurrentTurn)
		assert.Equal(t, 1, payload.CardsLeft)
	}
}

func TestGameSession_PlayCards_SkipAndStacking(t *testing.T) {
	s := newTestServer(t)
	gs, _ := newTestGame(t, s, "a", "b", "c", "d")

	skip := card.Card{Color: card.ColorRed, Value: card.ValueSkip}
	setGameState(t, gs,
		map[string][]card.Card{
			"p1": {skip, {Color: card.ColorBlue, Value: card.ValueSkip}, {Color: card.ColorRed, Value: card.Value1}},
			"p2": {{Color: card.ColorYellow, Value: card.Value1}},
			"p3": {{Color: card.ColorGreen, Value: card.Value1}},
			"p4": {{Color: card.ColorGreen, Value: card.Value2}},
		},
		card.Card{Color: card.ColorRed, Value: card.Value3},
		nil,
	)

	// Two stacked skips jump two players
	require.NoError(t, gs.HandlePlayCards("p1", []card.Card{skip, {Color: card.ColorBlue, Value: card.ValueSkip}}, card.ColorNone))
	assert.Equal(t, "p4", gs.order.Current())
}

func TestGameSession_PlayCards_ReverseThreePlayers(t *testing.T) {
	s := newTestServer(t)
	gs, _ := newTestGame(t, s, "a", "b", "c")

	rev := card.Card{Color: card.ColorRed, Value: card.ValueReverse}
	setGameState(t, gs,
		map[string][]card.Card{
			"p1": {rev, {Color: card.ColorRed, Value: card.Value1}},
			"p2": {{Color: card.ColorYellow, Value: card.Value1}},
			"p3": {{Color: card.ColorGreen, Value: card.Value1}},
		},
		card.Card{Color: card.ColorRed, Value: card.Value3},
		nil,
	)

	require.NoError(t, gs.HandlePlayCards("p1", []card.Card{rev}, card.ColorNone))

	// Direction flips, so the next seat is p3
	assert.True(t, gs.order.Reversed())
	assert.Equal(t, "p3", gs.order.Current())
}

func TestGameSession_PlayCards_ReverseActsAsSkipHeadsUp(t *testing.T) {
	s := newTestServer(t)
	gs, _ := newTestGame(t, s, "a", "b")

	rev := card.Card{Color: card.ColorRed, Value: card.ValueReverse}
	setGameState(t, gs,
		map[string][]card.Card{
			"p1": {rev, {Color: card.ColorRed, Value: card.Value1}},
			"p2": {{Color: card.ColorYellow, Value: card.Value1}},
		},
		card.Card{Color: card.ColorRed, Value: card.Value3},
		nil,
	)

	require.NoError(t, gs.HandlePlayCards("p1", []card.Card{rev}, card.ColorNone))

	// With two seats a reverse behaves like a skip
	assert.Equal(t, "p1", gs.order.Current())
}

func TestGameSession_PlayCards_DrawTwo(t *testing.T) {
	s := newTestServer(t)
	gs, clients := newTestGame(t, s, "a", "b", "c")

	drawTwo := card.Card{Color: card.ColorRed, Value: card.ValueDrawTwo}
	setGameState(t, gs,
		map[string][]card.Card{
			"p1": {drawTwo, {Color: card.ColorRed, Value: card.Value1}},
			"p2": {{Color: card.ColorYellow, Value: card.Value1}},
			"p3": {{Color: card.ColorGreen, Value: card.Value1}},
		},
		card.Card{Color: card.ColorRed, Value: card.Value3},
		card.Deck{
			{Color: card.ColorBlue, Value: card.Value8},
			{Color: card.ColorGreen, Value: card.Value9},
		},
	)

	require.NoError(t, gs.HandlePlayCards("p1", []card.Card{drawTwo}, card.ColorNone))

	// The next player picks up two and the turn lands on them
	assert.Len(t, gs.findPlayer("p2").Hand, 3)
	assert.Equal(t, "p2", gs.order.Current())
	assert.Empty(t, gs.deck)

	// Penalty cards are delivered privately
	dealt := clients["p2"].MessagesOfType(protocol.MsgCardsDealt)
	require.Len(t, dealt, 1)
	payload := decodePayload[protocol.CardsDealtPayload](t, dealt[0])
	assert.Equal(t, "draw_two", payload.Reason)
	assert.Len(t, payload.Cards, 2)
	assert.Empty(t, clients["p3"].MessagesOfType(protocol.MsgCardsDealt))
}

func TestGameSession_PlayCards_WildDrawFourSetsColor(t *testing.T) {
	s := newTestServer(t)
	gs, _ := newTestGame(t, s, "a", "b")

	wild4 := card.Card{Color: card.ColorNone, Value: card.ValueWildDrawFour}
	deck := card.Deck{
		{Color: card.ColorBlue, Value: card.Value1},
		{Color: card.ColorBlue, Value: card.Value2},
		{Color: card.ColorBlue, Value: card.Value3},
		{Color: card.ColorBlue, Value: card.Value4},
	}
	setGameState(t, gs,
		map[string][]card.Card{
			"p1": {wild4, {Color: card.ColorRed, Value: card.Value1}},
			"p2": {{Color: card.ColorYellow, Value: card.Value1}},
		},
		card.Card{Color: card.ColorRed, Value: card.Value3},
		deck,
	)

	require.NoError(t, gs.HandlePlayCards("p1", []card.Card{wild4}, card.ColorGreen))

	assert.Equal(t, card.ColorGreen, gs.topCard.Color)
	assert.Equal(t, card.ValueWildDrawFour, gs.topCard.Value)
	assert.Len(t, gs.findPlayer("p2").Hand, 5)

	// Only green (or wild) beats the pile now
	assert.True(t, card.Card{Color: card.ColorGreen, Value: card.Value9}.Matches(gs.topCard))
	assert.False(t, card.Card{Color: card.ColorRed, Value: card.Value9}.Matches(gs.topCard))
}

func TestGameSession_WinEndsGame(t *testing.T) {
	s := newTestServer(t)
	gs, clients := newTestGame(t, s, "alice", "bob")

	last := card.Card{Color: card.ColorRed, Value: card.Value5}
	setGameState(t, gs,
		map[string][]card.Card{
			"p1": {last},
			"p2": {{Color: card.ColorYellow, Value: card.Value1}},
		},
		card.Card{Color: card.ColorRed, Value: card.Value3},
		nil,
	)

	require.NoError(t, gs.HandlePlayCards("p1", []card.Card{last}, card.ColorNone))

	assert.Equal(t, GameStateEnded, gs.state)
	for _, c := range clients {
		overs := c.MessagesOfType(protocol.MsgGameOver)
		require.Len(t, overs, 1)
		payload := decodePayload[protocol.GameOverPayload](t, overs[0])
		assert.Equal(t, "p1", payload.WinnerID)
		assert.Equal(t, "alice", payload.WinnerName)
		assert.False(t, payload.Forfeit)
	}

	// The room drops back to waiting with ready flags cleared
	assert.Eventually(t, func() bool {
		gs.room.mu.RLock()
		defer gs.room.mu.RUnlock()
		return gs.room.State == RoomStateWaiting && gs.room.game == nil
	}, time.Second, 10*time.Millisecond)

	// Scores land in Redis: winner +15, loser floored at 0
	assert.Eventually(t, func() bool {
		stats, err := s.leaderboard.GetPlayerStats(t.Context(), "alice")
		return err == nil && stats != nil && stats.Score == storage.WinScore
	}, time.Second, 10*time.Millisecond)

	stats, err := s.leaderboard.GetPlayerStats(t.Context(), "bob")
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 0, stats.Score)
	assert.Equal(t, 1, stats.Losses)
}

func TestGameSession_DrawCard(t *testing.T) {
	s := newTestServer(t)
	gs, clients := newTestGame(t, s, "a", "b")

	setGameState(t, gs,
		map[string][]card.Card{
			"p1": {{Color: card.ColorGreen, Value: card.Value9}},
			"p2": {{Color: card.ColorYellow, Value: card.Value1}},
		},
		card.Card{Color: card.ColorRed, Value: card.Value3},
		card.Deck{{Color: card.ColorBlue, Value: card.Value8}},
	)

	assert.ErrorIs(t, gs.HandleDrawCard("p2"), apperrors.ErrNotYourTurn)

	require.NoError(t, gs.HandleDrawCard("p1"))

	// Drawing keeps the turn, the drawn card may be played right away
	assert.Equal(t, "p1", gs.order.Current())
	assert.Len(t, gs.findPlayer("p1").Hand, 2)
	assert.Empty(t, gs.deck)

	dealt := clients["p1"].MessagesOfType(protocol.MsgCardsDealt)
	require.Len(t, dealt, 1)
	assert.Equal(t, "draw", decodePayload[protocol.CardsDealtPayload](t, dealt[0]).Reason)

	// Deck and discard both exhausted
	assert.ErrorIs(t, gs.HandleDrawCard("p1"), apperrors.ErrDeckEmpty)
}

func TestGameSession_DrawCard_ReshufflesDiscard(t *testing.T) {
	s := newTestServer(t)
	gs, _ := newTestGame(t, s, "a", "b")

	setGameState(t, gs,
		map[string][]card.Card{
			"p1": {{Color: card.ColorGreen, Value: card.Value9}},
			"p2": {{Color: card.ColorYellow, Value: card.Value1}},
		},
		card.Card{Color: card.ColorRed, Value: card.Value3},
		nil,
	)
	// Pile has history to recycle, including a spent wild
	gs.discard = []card.Card{
		{Color: card.ColorBlue, Value: card.ValueWild}, // played with blue chosen
		{Color: card.ColorGreen, Value: card.Value4},
		{Color: card.ColorRed, Value: card.Value3},
	}

	require.NoError(t, gs.HandleDrawCard("p1"))

	// Top card stays, the rest became the deck and one was drawn
	assert.Len(t, gs.discard, 1)
	assert.Equal(t, card.Card{Color: card.ColorRed, Value: card.Value3}, gs.discard[0])
	assert.Len(t, gs.deck, 1)
	assert.Len(t, gs.findPlayer("p1").Hand, 2)

	// Recycled wilds are colorless again
	for _, c := range append(gs.deck, gs.findPlayer("p1").Hand...) {
		if c.IsWild() {
			assert.Equal(t, card.ColorNone, c.Color)
		}
	}
}

func TestGameSession_PlayerLeftShrinksOrder(t *testing.T) {
	s := newTestServer(t)
	gs, _ := newTestGame(t, s, "a", "b", "c")

	setGameState(t, gs,
		map[string][]card.Card{
			"p1": {{Color: card.ColorGreen, Value: card.Value9}},
			"p2": {{Color: card.ColorYellow, Value: card.Value1}},
			"p3": {{Color: card.ColorBlue, Value: card.Value1}},
		},
		card.Card{Color: card.ColorRed, Value: card.Value3},
		nil,
	)

	// The current player leaving passes the turn along
	gs.PlayerLeft("p1")

	assert.Equal(t, GameStatePlaying, gs.state)
	assert.Equal(t, "p2", gs.order.Current())
	assert.Nil(t, gs.findPlayer("p1"))
	assert.Equal(t, 2, gs.order.Len())
}

func TestGameSession_LastOpponentLeavingForfeits(t *testing.T) {
	s := newTestServer(t)
	gs, clients := newTestGame(t, s, "a", "b")

	setGameState(t, gs,
		map[string][]card.Card{
			"p1": {{Color: card.ColorGreen, Value: card.Value9}},
			"p2": {{Color: card.ColorYellow, Value: card.Value1}},
		},
		card.Card{Color: card.ColorRed, Value: card.Value3},
		nil,
	)

	gs.PlayerLeft("p2")

	assert.Equal(t, GameStateEnded, gs.state)
	overs := clients["p1"].MessagesOfType(protocol.MsgGameOver)
	require.Len(t, overs, 1)
	payload := decodePayload[protocol.GameOverPayload](t, overs[0])
	assert.Equal(t, "p1", payload.WinnerID)
	assert.True(t, payload.Forfeit)
}
