package server

import (
	"log"
	"sync"

	"github.com/palemoky/uno-online/internal/network/protocol"
)

// UNO 两人即可开局，匹配凑够两人就发车
const matchSize = 2

// Matcher 快速匹配系统
type Matcher struct {
	server *Server
	queue  []*Client
	mu     sync.Mutex
}

// NewMatcher 创建匹配器
func NewMatcher(s *Server) *Matcher {
	return &Matcher{
		server: s,
		queue:  make([]*Client, 0),
	}
}

// AddToQueue 加入匹配队列
func (m *Matcher) AddToQueue(client *Client) {
	m.mu.Lock()

	// 检查是否已在队列中
	for _, c := range m.queue {
		if c.ID == client.ID {
			m.mu.Unlock()
			return
		}
	}

	m.queue = append(m.queue, client)
	log.Printf("🔍 玩家 %s 加入匹配队列，当前队列长度: %d", client.GetName(), len(m.queue))

	var matched []*Client
	if len(m.queue) >= matchSize {
		matched = m.queue[:matchSize]
		m.queue = m.queue[matchSize:]
	}
	m.mu.Unlock()

	if matched != nil {
		go m.createMatchRoom(matched)
	}
}

// RemoveFromQueue 从匹配队列移除
func (m *Matcher) RemoveFromQueue(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, c := range m.queue {
		if c.ID == client.ID {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			log.Printf("🔍 玩家 %s 离开匹配队列", client.GetName())
			return
		}
	}
}

// createMatchRoom 创建匹配房间，凑齐的玩家依次报名后直接开局
func (m *Matcher) createMatchRoom(players []*Client) {
	room := m.server.roomManager.CreateRoom()

	joined := make([]*Client, 0, len(players))
	for _, client := range players {
		name := client.GetName()
		if name == "" {
			name = GenerateNickname()
		}
		if _, err := m.server.roomManager.JoinRoom(client, room.Code, name); err != nil {
			log.Printf("匹配加入房间失败: %v", err)
			continue
		}
		joined = append(joined, client)
	}

	// 有人在入场前掉线，剩下的人放回队列重新等
	if len(joined) < matchSize {
		m.mu.Lock()
		m.queue = append(joined, m.queue...)
		m.mu.Unlock()
		m.server.roomManager.DeleteRoom(room.Code)
		return
	}

	log.Printf("🎮 匹配成功！房间 %s，%d 名玩家", room.Code, len(joined))

	for _, client := range joined {
		client.SendMessage(protocol.MustNewMessage(protocol.MsgMatchFound, protocol.MatchFoundPayload{
			RoomCode: room.Code,
			Players:  room.GetAllPlayersInfo(),
		}))
	}

	// 自动准备所有玩家并开局
	room.mu.Lock()
	for _, player := range room.Players {
		player.Ready = true
	}
	room.mu.Unlock()

	room.StartGame()
}

// GetQueueLength 获取队列长度
func (m *Matcher) GetQueueLength() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}
