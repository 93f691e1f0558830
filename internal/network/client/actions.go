package client

import (
	"time"

	"github.com/palemoky/uno-online/internal/network/protocol"
)

// --- 便捷方法 ---

// Join 报名加入房间（连接后的第一条消息）
func (c *Client) Join(name string) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgJoin, protocol.JoinPayload{
		Name: name,
	}))
}

// LeaveRoom 离开房间
func (c *Client) LeaveRoom() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgLeaveRoom, nil))
}

// QuickMatch 快速匹配，昵称可以留空让服务器随机起名
func (c *Client) QuickMatch(name string) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgQuickMatch, protocol.JoinPayload{
		Name: name,
	}))
}

// ToggleReady 准备/取消准备
func (c *Client) ToggleReady() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgReady, nil))
}

// PlayCards 出牌，出万能牌时 newColor 指定新颜色
func (c *Client) PlayCards(cards []protocol.CardInfo, newColor int) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgPlayCards, protocol.PlayCardsPayload{
		Cards:    cards,
		NewColor: newColor,
	}))
}

// DrawCard 摸一张牌
func (c *Client) DrawCard() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgDrawCard, nil))
}

// ChallengeCall 喊 UNO / 抓没喊的人
func (c *Client) ChallengeCall() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgChallengeCall, nil))
}

// GetLeaderboard 获取排行榜
func (c *Client) GetLeaderboard(limit int) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgGetLeaderboard, protocol.GetLeaderboardPayload{
		Limit: limit,
	}))
}

// Ping 发送心跳
func (c *Client) Ping() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgPing, protocol.PingPayload{
		Timestamp: time.Now().UnixMilli(),
	}))
}
