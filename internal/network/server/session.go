package server

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/palemoky/uno-online/internal/apperrors"
	"github.com/palemoky/uno-online/internal/game/card"
	"github.com/palemoky/uno-online/internal/game/turn"
	"github.com/palemoky/uno-online/internal/network/protocol"
)

// GameState 对局状态
type GameState int

const (
	GameStateDealing GameState = iota // 发牌中
	GameStatePlaying                  // 进行中
	GameStateEnded                    // 已结束
)

// GamePlayer 对局中的玩家
type GamePlayer struct {
	ID     string
	Name   string
	Hand   []card.Card
	client ClientConn
}

// GameSession 一局游戏的全部裁决状态。
// 所有入口都持 mu 串行执行，房间内同一时刻只有一个动作在裁决。
// 连接在开局时快照进来，持锁期间不回头碰房间锁
type GameSession struct {
	room *Room

	state   GameState
	players []*GamePlayer
	deck    card.Deck
	discard []card.Card
	topCard card.Card // 生效的堆顶牌（万能牌带指定颜色）
	order   *turn.Order

	// UNO 挑战窗口
	challengeTarget string // 只剩一张牌的玩家，空串表示没有挑战
	challengeGen    int    // 代数，用于识别过期的计时器回调
	challengeTimer  *time.Timer

	startedAt time.Time
	mu        sync.Mutex
}

// NewGameSession 创建游戏会话，调用方需持有 room.mu，
// 座位和连接在此刻快照
func NewGameSession(room *Room) *GameSession {
	gs := &GameSession{
		room:  room,
		state: GameStateDealing,
	}

	seats := make([]string, len(room.PlayerOrder))
	copy(seats, room.PlayerOrder)

	// 随机座位顺序，先手也随之随机
	rand.Shuffle(len(seats), func(i, j int) {
		seats[i], seats[j] = seats[j], seats[i]
	})

	gs.players = make([]*GamePlayer, 0, len(seats))
	for _, id := range seats {
		p := room.Players[id]
		gs.players = append(gs.players, &GamePlayer{
			ID:     id,
			Name:   p.Client.GetName(),
			client: p.Client,
		})
	}

	return gs
}

// Start 开局：发牌、翻出首张弃牌，然后给每人单发开局消息
func (gs *GameSession) Start() {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	seats := make([]string, 0, len(gs.players))
	for _, p := range gs.players {
		seats = append(seats, p.ID)
	}

	deck := card.NewDeck()
	deck.Shuffle()

	handSize := gs.room.server.config.Game.HandSize
	deck, hands := deck.Deal(seats, handSize)
	for _, p := range gs.players {
		p.Hand = hands[p.ID]
	}

	// 翻出首张弃牌，翻到万能牌就塞回去重洗再翻
	var top card.Card
	for {
		c, ok := deck.Draw()
		if !ok {
			// 不可能发生：108 张牌减去手牌足够剩
			log.Printf("⚠️ 房间 %s 开局时牌堆已空", gs.room.Code)
			return
		}
		if !c.IsWild() {
			top = c
			break
		}
		deck.Push(c)
		deck.Shuffle()
	}

	gs.deck = deck
	gs.discard = []card.Card{top}
	gs.topCard = top

	order, err := turn.New(seats)
	if err != nil {
		log.Printf("⚠️ 房间 %s 开局失败: %v", gs.room.Code, err)
		return
	}
	gs.order = order

	gs.state = GameStatePlaying
	gs.startedAt = time.Now()

	// 每人单发，手牌只给本人
	infos := gs.playersInfo()
	for _, p := range gs.players {
		p.client.SendMessage(protocol.MustNewMessage(protocol.MsgGameStart, protocol.GameStartPayload{
			Players:     infos,
			Hand:        protocol.CardsToInfos(p.Hand),
			TopCard:     protocol.CardToInfo(top),
			CurrentTurn: order.Current(),
		}))
	}

	log.Printf("🎮 房间 %s 开始游戏，%d 名玩家", gs.room.Code, len(seats))
}

// HandlePlayCards 出牌。一次可出多张同面值的牌，效果按张数叠加。
// 校验全部通过才落子，任何一步失败手牌原样不动
func (gs *GameSession) HandlePlayCards(playerID string, cards []card.Card, newColor card.Color) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.state != GameStatePlaying {
		return apperrors.ErrGameNotStart
	}
	if gs.order.Current() != playerID {
		return apperrors.ErrNotYourTurn
	}
	if len(cards) == 0 {
		return apperrors.ErrNoCards
	}

	// 多张牌必须同面值
	for _, c := range cards[1:] {
		if c.Value != cards[0].Value {
			return apperrors.ErrMixedValues
		}
	}

	player := gs.findPlayer(playerID)
	rest, ok := card.Remove(player.Hand, cards)
	if !ok {
		return apperrors.ErrCardsNotHeld
	}

	if !cards[0].Matches(gs.topCard) {
		return apperrors.ErrIllegalPlay
	}

	isWild := cards[0].IsWild()
	if isWild && !newColor.IsSolid() {
		return apperrors.ErrInvalidColor
	}

	// 校验通过，提交
	player.Hand = rest
	gs.discard = append(gs.discard, cards...)

	top := cards[len(cards)-1]
	if isWild {
		// 只有最后一张万能牌带上指定颜色
		top.Color = newColor
	}
	gs.topCard = top

	// 别人的挑战窗口随着新一手牌落地而关闭
	if gs.challengeTarget != "" && gs.challengeTarget != playerID {
		gs.cancelChallenge()
	}

	gs.applyEffects(cards)

	// 手牌清空即获胜
	if len(player.Hand) == 0 {
		gs.broadcastPlayed(player, cards)
		gs.endGame(player, false)
		return nil
	}

	gs.broadcastPlayed(player, cards)

	// 只剩一张牌，打开 UNO 挑战窗口
	if len(player.Hand) == 1 {
		gs.startChallenge(player)
	}

	return nil
}

// applyEffects 按牌面值结算效果并推进回合。
// k 张同面值的功能牌效果叠加 k 倍
func (gs *GameSession) applyEffects(cards []card.Card) {
	k := len(cards)

	switch cards[0].Value {
	case card.ValueSkip:
		// 跳过 k 个人
		gs.order.Advance(1 + k)

	case card.ValueReverse:
		for i := 0; i < k; i++ {
			gs.order.ToggleDirection()
		}
		gs.order.Advance(1)
		// 两人局里反转等价于跳过
		if gs.order.Len() == 2 && k%2 == 1 {
			gs.order.Advance(1)
		}

	case card.ValueDrawTwo:
		drawer := gs.order.PeekNext()
		gs.dealPenalty(drawer, 2*k, "draw_two")
		gs.order.Advance(1)

	case card.ValueWildDrawFour:
		drawer := gs.order.PeekNext()
		gs.dealPenalty(drawer, 4*k, "draw_four")
		gs.order.Advance(1)

	default:
		// 数字牌和纯变色牌只推进一步
		gs.order.Advance(1)
	}
}

// dealPenalty 给指定玩家发罚牌，牌堆不够就有多少发多少
func (gs *GameSession) dealPenalty(playerID string, count int, reason string) {
	target := gs.findPlayer(playerID)
	if target == nil {
		return
	}

	dealt := make([]card.Card, 0, count)
	for i := 0; i < count; i++ {
		gs.reshuffleIfNeeded()
		c, ok := gs.deck.Draw()
		if !ok {
			break
		}
		dealt = append(dealt, c)
	}
	if len(dealt) == 0 {
		return
	}

	target.Hand = append(target.Hand, dealt...)

	// 被罚的人手牌超过一张，挂在他身上的挑战窗口自动失效
	if gs.challengeTarget == playerID && len(target.Hand) > 1 {
		gs.cancelChallenge()
	}

	target.client.SendMessage(protocol.MustNewMessage(protocol.MsgCardsDealt, protocol.CardsDealtPayload{
		Cards:  protocol.CardsToInfos(dealt),
		Reason: reason,
	}))
	gs.broadcast(protocol.MustNewMessage(protocol.MsgPlayerDrew, protocol.PlayerDrewPayload{
		PlayerID:    target.ID,
		PlayerName:  target.Name,
		Count:       len(dealt),
		CardsLeft:   len(target.Hand),
		DeckSize:    len(gs.deck),
		CurrentTurn: gs.order.Current(),
	}))
}

// HandleDrawCard 主动摸一张牌。摸牌不结束回合，摸到能出的可以接着出
func (gs *GameSession) HandleDrawCard(playerID string) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.state != GameStatePlaying {
		return apperrors.ErrGameNotStart
	}
	if gs.order.Current() != playerID {
		return apperrors.ErrNotYourTurn
	}

	gs.reshuffleIfNeeded()

	c, ok := gs.deck.Draw()
	if !ok {
		return apperrors.ErrDeckEmpty
	}

	player := gs.findPlayer(playerID)
	player.Hand = append(player.Hand, c)

	// 摸回第二张牌，挑战窗口自动失效
	if gs.challengeTarget == playerID && len(player.Hand) > 1 {
		gs.cancelChallenge()
	}

	player.client.SendMessage(protocol.MustNewMessage(protocol.MsgCardsDealt, protocol.CardsDealtPayload{
		Cards:  protocol.CardsToInfos([]card.Card{c}),
		Reason: "draw",
	}))
	gs.broadcast(protocol.MustNewMessage(protocol.MsgPlayerDrew, protocol.PlayerDrewPayload{
		PlayerID:    player.ID,
		PlayerName:  player.Name,
		Count:       1,
		CardsLeft:   len(player.Hand),
		DeckSize:    len(gs.deck),
		CurrentTurn: gs.order.Current(),
	}))

	return nil
}

// PlayerLeft 游戏中途有人掉线：座位从回合环里收缩掉，
// 只剩一个人时这个人直接判胜
func (gs *GameSession) PlayerLeft(playerID string) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.state != GameStatePlaying {
		return
	}
	if gs.findPlayer(playerID) == nil {
		return
	}

	// 挑战目标掉线，窗口直接关掉
	if gs.challengeTarget == playerID {
		gs.cancelChallenge()
	}

	gs.order.Remove(playerID)
	for i, p := range gs.players {
		if p.ID == playerID {
			gs.players = append(gs.players[:i], gs.players[i+1:]...)
			break
		}
	}

	if len(gs.players) == 1 {
		gs.endGame(gs.players[0], true)
		return
	}

	// 告诉剩下的人现在轮到谁
	gs.broadcast(protocol.MustNewMessage(protocol.MsgCardPlayed, protocol.CardPlayedPayload{
		TopCard:     protocol.CardToInfo(gs.topCard),
		CurrentTurn: gs.order.Current(),
		Reversed:    gs.order.Reversed(),
		Players:     gs.playersInfo(),
	}))
}

// reshuffleIfNeeded 牌堆摸空时用弃牌堆重建，只保留堆顶一张。
// 回到牌堆的万能牌恢复无色
func (gs *GameSession) reshuffleIfNeeded() {
	if len(gs.deck) > 0 || len(gs.discard) <= 1 {
		return
	}

	deck, discard := card.Reshuffle(gs.discard)
	for i := range deck {
		if deck[i].IsWild() {
			deck[i].Color = card.ColorNone
		}
	}
	gs.deck = deck
	gs.discard = discard

	log.Printf("🔄 房间 %s 重洗弃牌堆，新牌堆 %d 张", gs.room.Code, len(deck))
}

// endGame 结束对局：取消计时器、广播结果、记分并把房间放回等待状态
func (gs *GameSession) endGame(winner *GamePlayer, forfeit bool) {
	gs.cancelChallenge()
	gs.state = GameStateEnded

	gs.broadcast(protocol.MustNewMessage(protocol.MsgGameOver, protocol.GameOverPayload{
		WinnerID:   winner.ID,
		WinnerName: winner.Name,
		Forfeit:    forfeit,
	}))

	// 记分：赢家加分，其他人扣分
	losers := make([]string, 0, len(gs.players)-1)
	for _, p := range gs.players {
		if p.ID != winner.ID {
			losers = append(losers, p.Name)
		}
	}
	winnerName := winner.Name
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := gs.room.server.leaderboard.RecordGameResult(ctx, winnerName, losers); err != nil {
			log.Printf("⚠️ 记分失败: %v", err)
		}
	}()

	gs.room.server.monitor.IncGamesPlayed()
	log.Printf("🏆 房间 %s 游戏结束，获胜者 %s（用时 %s）", gs.room.Code, winner.Name, time.Since(gs.startedAt).Round(time.Second))

	// 房间锁在会话锁外层，回写房间状态必须异步
	go gs.room.FinishGame()
}

// broadcast 给对局内所有玩家发消息
func (gs *GameSession) broadcast(msg *protocol.Message) {
	for _, p := range gs.players {
		p.client.SendMessage(msg)
	}
}

// broadcastPlayed 广播出牌结果
func (gs *GameSession) broadcastPlayed(player *GamePlayer, cards []card.Card) {
	gs.broadcast(protocol.MustNewMessage(protocol.MsgCardPlayed, protocol.CardPlayedPayload{
		PlayerID:    player.ID,
		PlayerName:  player.Name,
		Cards:       protocol.CardsToInfos(cards),
		CardsLeft:   len(player.Hand),
		TopCard:     protocol.CardToInfo(gs.topCard),
		CurrentTurn: gs.order.Current(),
		Reversed:    gs.order.Reversed(),
		Players:     gs.playersInfo(),
	}))
}

// playersInfo 按座位顺序收集玩家信息
func (gs *GameSession) playersInfo() []protocol.PlayerInfo {
	infos := make([]protocol.PlayerInfo, 0, len(gs.players))
	for _, p := range gs.players {
		infos = append(infos, protocol.PlayerInfo{
			ID:         p.ID,
			Name:       p.Name,
			CardsCount: len(p.Hand),
		})
	}
	return infos
}

// findPlayer 按 ID 查找对局玩家
func (gs *GameSession) findPlayer(playerID string) *GamePlayer {
	for _, p := range gs.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// GetPlayerCardsCount 获取玩家手牌数量
func (gs *GameSession) GetPlayerCardsCount(playerID string) int {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if p := gs.findPlayer(playerID); p != nil {
		return len(p.Hand)
	}
	return 0
}
