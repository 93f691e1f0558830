package server

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/palemoky/uno-online/internal/apperrors"
	"github.com/palemoky/uno-online/internal/game/card"
	"github.com/palemoky/uno-online/internal/network/protocol"
)

// Handler 消息处理器
type Handler struct {
	server *Server
}

// NewHandler 创建处理器
func NewHandler(s *Server) *Handler {
	return &Handler{server: s}
}

// Handle 处理消息
func (h *Handler) Handle(client *Client, msg *protocol.Message) {
	switch msg.Type {
	// 连接操作
	case protocol.MsgJoin:
		h.handleJoin(client, msg)
	case protocol.MsgPing:
		h.handlePing(client, msg)

	// 房间操作
	case protocol.MsgLeaveRoom:
		h.handleLeaveRoom(client)
	case protocol.MsgQuickMatch:
		h.handleQuickMatch(client, msg)
	case protocol.MsgReady:
		h.handleReady(client)

	// 游戏操作
	case protocol.MsgPlayCards:
		h.handlePlayCards(client, msg)
	case protocol.MsgDrawCard:
		h.handleDrawCard(client)
	case protocol.MsgChallengeCall:
		h.handleChallengeCall(client)

	// 查询
	case protocol.MsgGetLeaderboard:
		h.handleGetLeaderboard(client, msg)

	default:
		log.Printf("未知消息类型: %s", msg.Type)
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
	}
}

// sendError 按错误类型回发错误消息，只发给出错的人
func (h *Handler) sendError(client *Client, err error) {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		client.SendMessage(protocol.NewErrorMessage(gameErr.Code))
		return
	}
	client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeUnknown, err.Error()))
}

// handleJoin 连接后的第一条消息，用握手 URL 里的房间号报名。
// 昵称留空就随机生成一个
func (h *Handler) handleJoin(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.JoinPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if client.GetRoom() != "" {
		// 重复报名，忽略
		return
	}

	name := payload.Name
	if name == "" {
		name = GenerateNickname()
	}

	room, err := h.server.roomManager.JoinRoom(client, client.PendingCode, name)
	if err != nil {
		h.sendError(client, err)
		return
	}

	client.SendMessage(protocol.MustNewMessage(protocol.MsgJoined, protocol.JoinedPayload{
		RoomCode: room.Code,
		Player: protocol.PlayerInfo{
			ID:     client.ID,
			Name:   client.GetName(),
			IsHost: len(room.GetAllPlayersInfo()) == 1,
		},
		Players: room.GetAllPlayersInfo(),
	}))
}

// handlePing 处理心跳消息
func (h *Handler) handlePing(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}

	// 立即回复 pong
	client.SendMessage(protocol.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// handleLeaveRoom 处理离开房间
func (h *Handler) handleLeaveRoom(client *Client) {
	h.server.roomManager.LeaveRoom(client)
}

// handleQuickMatch 处理快速匹配，payload 可以带昵称
func (h *Handler) handleQuickMatch(client *Client, msg *protocol.Message) {
	if payload, err := protocol.ParsePayload[protocol.JoinPayload](msg); err == nil && payload.Name != "" {
		if err := ValidateNickname(payload.Name); err != nil {
			h.sendError(client, err)
			return
		}
		client.SetName(payload.Name)
	}

	// 如果已在房间中，先离开
	if client.GetRoom() != "" {
		h.server.roomManager.LeaveRoom(client)
	}

	h.server.matcher.AddToQueue(client)
}

// handleReady 处理准备/取消准备
func (h *Handler) handleReady(client *Client) {
	if err := h.server.roomManager.ToggleReady(client); err != nil {
		h.sendError(client, err)
	}
}

// gameSession 找到客户端所在房间的对局
func (h *Handler) gameSession(client *Client) (*GameSession, error) {
	room := h.server.roomManager.GetRoom(client.GetRoom())
	if room == nil {
		return nil, apperrors.ErrNotInRoom
	}

	game := room.GetGameSession()
	if game == nil {
		return nil, apperrors.ErrGameNotStart
	}
	return game, nil
}

// handlePlayCards 处理出牌
func (h *Handler) handlePlayCards(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.PlayCardsPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	game, err := h.gameSession(client)
	if err != nil {
		h.sendError(client, err)
		return
	}

	cards := protocol.InfosToCards(payload.Cards)
	// 手牌里的万能牌都是无色的，客户端传来的颜色只看 new_color 字段
	for i := range cards {
		if cards[i].IsWild() {
			cards[i].Color = card.ColorNone
		}
	}

	if err := game.HandlePlayCards(client.ID, cards, protocol.ColorFromInt(payload.NewColor)); err != nil {
		h.sendError(client, err)
	}
}

// handleDrawCard 处理摸牌
func (h *Handler) handleDrawCard(client *Client) {
	game, err := h.gameSession(client)
	if err != nil {
		h.sendError(client, err)
		return
	}

	if err := game.HandleDrawCard(client.ID); err != nil {
		h.sendError(client, err)
	}
}

// handleChallengeCall 处理喊 UNO / 抓人
func (h *Handler) handleChallengeCall(client *Client) {
	game, err := h.gameSession(client)
	if err != nil {
		h.sendError(client, err)
		return
	}

	if err := game.HandleChallengeCall(client.ID); err != nil {
		h.sendError(client, err)
	}
}

// handleGetLeaderboard 处理排行榜查询
func (h *Handler) handleGetLeaderboard(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.GetLeaderboardPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	limit := payload.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		entries, err := h.server.leaderboard.GetLeaderboard(ctx, limit)
		if err != nil {
			log.Printf("⚠️ 排行榜查询失败: %v", err)
			client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeUnknown, "排行榜暂时不可用"))
			return
		}

		client.SendMessage(protocol.MustNewMessage(protocol.MsgLeaderboard, protocol.LeaderboardPayload{
			Entries: entries,
		}))
	}()
}
