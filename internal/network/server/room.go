package server

import (
	"context"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/palemoky/uno-online/internal/apperrors"
	"github.com/palemoky/uno-online/internal/network/protocol"
	"github.com/palemoky/uno-online/internal/network/server/storage"
)

const (
	// 房间号长度
	roomCodeLength = 5
	// 房间号字符集
	roomCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// RoomState 房间状态
type RoomState int

const (
	RoomStateWaiting RoomState = iota // 等待玩家
	RoomStatePlaying                  // 游戏中
	RoomStateEnded                    // 游戏结束
)

// RoomPlayer 房间中的玩家
type RoomPlayer struct {
	Client ClientConn
	IsHost bool // 第一个进房间的人是房主
	Ready  bool // 是否准备
}

// Room 游戏房间
type Room struct {
	Code        string                 // 房间号
	State       RoomState              // 房间状态
	Players     map[string]*RoomPlayer // 玩家列表
	PlayerOrder []string               // 玩家顺序（按加入先后）
	CreatedAt   time.Time              // 创建时间

	game   *GameSession // 游戏会话
	server *Server
	mu     sync.RWMutex
}

// RoomManager 房间管理器，按房间号索引所有房间
type RoomManager struct {
	server *Server
	rooms  map[string]*Room
	mu     sync.RWMutex
}

// NewRoomManager 创建房间管理器
func NewRoomManager(s *Server) *RoomManager {
	rm := &RoomManager{
		server: s,
		rooms:  make(map[string]*Room),
	}

	// 启动房间清理协程
	go rm.cleanupLoop()

	return rm
}

// CreateRoom 创建一个空房间并返回房间号，
// 创建者随后通过 WebSocket 报名加入
func (rm *RoomManager) CreateRoom() *Room {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	code := rm.generateRoomCode()

	room := &Room{
		Code:        code,
		State:       RoomStateWaiting,
		Players:     make(map[string]*RoomPlayer),
		PlayerOrder: make([]string, 0, rm.server.config.Game.MaxPlayers),
		CreatedAt:   time.Now(),
		server:      rm.server,
	}
	rm.rooms[code] = room

	rm.server.monitor.SetActiveRooms(len(rm.rooms))
	log.Printf("🏠 房间 %s 已创建", code)

	return room
}

// JoinRoom 报名加入房间，昵称在房间内不区分大小写地唯一
func (rm *RoomManager) JoinRoom(client *Client, code, name string) (*Room, error) {
	if err := ValidateNickname(name); err != nil {
		return nil, err
	}

	rm.mu.RLock()
	room, exists := rm.rooms[code]
	rm.mu.RUnlock()
	if !exists {
		return nil, apperrors.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if len(room.Players) >= rm.server.config.Game.MaxPlayers {
		return nil, apperrors.ErrRoomFull
	}

	if room.State != RoomStateWaiting {
		return nil, apperrors.ErrGameStarted
	}

	for _, p := range room.Players {
		if strings.EqualFold(p.Client.GetName(), name) {
			return nil, apperrors.ErrNameTaken
		}
	}

	client.SetName(name)
	player := &RoomPlayer{
		Client: client,
		IsHost: len(room.Players) == 0,
	}
	room.Players[client.ID] = player
	room.PlayerOrder = append(room.PlayerOrder, client.ID)
	client.SetRoom(code)

	log.Printf("👤 玩家 %s 加入房间 %s", name, code)

	// 通知房间内其他玩家
	room.broadcastExcept(client.ID, protocol.MustNewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
		Player:  room.getPlayerInfo(client.ID),
		Players: room.getAllPlayersInfo(),
	}))

	// 保存到 Redis
	go func() { _ = rm.server.redisStore.SaveRoom(context.Background(), room.Snapshot()) }()

	return room, nil
}

// LeaveRoom 离开房间
func (rm *RoomManager) LeaveRoom(client *Client) {
	roomCode := client.GetRoom()
	if roomCode == "" {
		return
	}

	rm.mu.RLock()
	room, exists := rm.rooms[roomCode]
	rm.mu.RUnlock()
	if !exists {
		return
	}

	room.mu.Lock()

	if _, exists := room.Players[client.ID]; !exists {
		room.mu.Unlock()
		return
	}

	// 移除玩家
	delete(room.Players, client.ID)
	for i, id := range room.PlayerOrder {
		if id == client.ID {
			room.PlayerOrder = append(room.PlayerOrder[:i], room.PlayerOrder[i+1:]...)
			break
		}
	}
	client.SetRoom("")

	// 通知其他玩家
	room.broadcastExcept(client.ID, protocol.MustNewMessage(protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{
		PlayerID:   client.ID,
		PlayerName: client.GetName(),
		Players:    room.getAllPlayersInfo(),
	}))

	game := room.game
	empty := len(room.Players) == 0
	room.mu.Unlock()

	log.Printf("👋 玩家 %s 离开房间 %s", client.GetName(), roomCode)

	// 游戏进行中掉线：座位从回合环中收缩掉
	if game != nil {
		game.PlayerLeft(client.ID)
	}

	// 如果房间空了，删除房间
	if empty {
		rm.DeleteRoom(roomCode)
	} else {
		go func() { _ = rm.server.redisStore.SaveRoom(context.Background(), room.Snapshot()) }()
	}
}

// ToggleReady 翻转玩家的准备状态；全员准备且不少于两人时开局
func (rm *RoomManager) ToggleReady(client *Client) error {
	roomCode := client.GetRoom()
	if roomCode == "" {
		return apperrors.ErrNotInRoom
	}

	rm.mu.RLock()
	room, exists := rm.rooms[roomCode]
	rm.mu.RUnlock()
	if !exists {
		return apperrors.ErrRoomNotFound
	}

	room.mu.Lock()

	player, exists := room.Players[client.ID]
	if !exists {
		room.mu.Unlock()
		return apperrors.ErrNotInRoom
	}

	if room.State != RoomStateWaiting {
		room.mu.Unlock()
		return apperrors.ErrGameStarted
	}

	player.Ready = !player.Ready

	// 广播准备状态
	room.broadcast(protocol.MustNewMessage(protocol.MsgPlayerReady, protocol.PlayerReadyPayload{
		PlayerID: client.ID,
		Ready:    player.Ready,
		Players:  room.getAllPlayersInfo(),
	}))

	if player.Ready && len(room.Players) == 1 {
		room.mu.Unlock()
		return apperrors.ErrAloneInRoom
	}

	allReady := room.checkAllReady()
	room.mu.Unlock()

	if allReady {
		room.StartGame()
	}

	return nil
}

// GetRoom 获取房间
func (rm *RoomManager) GetRoom(code string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[code]
}

// DeleteRoom 删除房间
func (rm *RoomManager) DeleteRoom(code string) {
	rm.mu.Lock()
	if _, exists := rm.rooms[code]; !exists {
		rm.mu.Unlock()
		return
	}
	delete(rm.rooms, code)
	count := len(rm.rooms)
	rm.mu.Unlock()

	rm.server.monitor.SetActiveRooms(count)
	go func() { _ = rm.server.redisStore.DeleteRoom(context.Background(), code) }()
	log.Printf("🏠 房间 %s 已解散", code)
}

// generateRoomCode 生成唯一房间号
func (rm *RoomManager) generateRoomCode() string {
	for {
		code := make([]byte, roomCodeLength)
		for i := range code {
			code[i] = roomCodeChars[rand.Intn(len(roomCodeChars))]
		}
		codeStr := string(code)
		if _, exists := rm.rooms[codeStr]; !exists {
			return codeStr
		}
	}
}

// cleanupLoop 定期清理超时房间
func (rm *RoomManager) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rm.cleanup()
	}
}

// cleanup 清理等待超时的房间
func (rm *RoomManager) cleanup() {
	timeout := rm.server.config.Game.RoomTimeoutDuration()
	now := time.Now()

	rm.mu.Lock()
	var expired []*Room
	for _, room := range rm.rooms {
		room.mu.RLock()
		if room.State == RoomStateWaiting && now.Sub(room.CreatedAt) > timeout {
			expired = append(expired, room)
		}
		room.mu.RUnlock()
	}
	for _, room := range expired {
		delete(rm.rooms, room.Code)
	}
	count := len(rm.rooms)
	rm.mu.Unlock()

	rm.server.monitor.SetActiveRooms(count)

	for _, room := range expired {
		room.mu.Lock()
		room.broadcast(protocol.NewErrorMessageWithText(protocol.ErrCodeUnknown, "房间超时已关闭"))
		for _, p := range room.Players {
			if c, ok := p.Client.(*Client); ok {
				c.SetRoom("")
			}
		}
		room.mu.Unlock()
		go func(code string) { _ = rm.server.redisStore.DeleteRoom(context.Background(), code) }(room.Code)
		log.Printf("🏠 房间 %s 超时已清理", room.Code)
	}
}

// GetActiveGamesCount 获取进行中的游戏数量
func (rm *RoomManager) GetActiveGamesCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	count := 0
	for _, room := range rm.rooms {
		room.mu.RLock()
		if room.State == RoomStatePlaying {
			count++
		}
		room.mu.RUnlock()
	}
	return count
}

// --- Room 方法 ---

// broadcast 广播消息给房间内所有玩家，调用方需持有 room.mu
func (r *Room) broadcast(msg *protocol.Message) {
	for _, player := range r.Players {
		player.Client.SendMessage(msg)
	}
}

// broadcastExcept 广播消息给除指定玩家外的所有玩家
func (r *Room) broadcastExcept(excludeID string, msg *protocol.Message) {
	for id, player := range r.Players {
		if id != excludeID {
			player.Client.SendMessage(msg)
		}
	}
}

// Broadcast 对外的广播入口，自行加锁
func (r *Room) Broadcast(msg *protocol.Message) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.broadcast(msg)
}

// SendTo 给房间内指定玩家单发消息
func (r *Room) SendTo(playerID string, msg *protocol.Message) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.Players[playerID]; ok {
		p.Client.SendMessage(msg)
	}
}

// checkAllReady 是否所有玩家都已准备且人数够开局
func (r *Room) checkAllReady() bool {
	if len(r.Players) < 2 {
		return false
	}
	for _, player := range r.Players {
		if !player.Ready {
			return false
		}
	}
	return true
}

// getPlayerInfo 获取玩家信息
func (r *Room) getPlayerInfo(playerID string) protocol.PlayerInfo {
	player := r.Players[playerID]
	cardsCount := 0
	if r.game != nil {
		cardsCount = r.game.GetPlayerCardsCount(playerID)
	}
	return protocol.PlayerInfo{
		ID:         player.Client.GetID(),
		Name:       player.Client.GetName(),
		IsHost:     player.IsHost,
		Ready:      player.Ready,
		CardsCount: cardsCount,
	}
}

// getAllPlayersInfo 按加入顺序获取所有玩家信息
func (r *Room) getAllPlayersInfo() []protocol.PlayerInfo {
	infos := make([]protocol.PlayerInfo, 0, len(r.Players))
	for _, id := range r.PlayerOrder {
		infos = append(infos, r.getPlayerInfo(id))
	}
	return infos
}

// GetAllPlayersInfo 对外的玩家列表入口，自行加锁
func (r *Room) GetAllPlayersInfo() []protocol.PlayerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getAllPlayersInfo()
}

// IsFull 房间是否已满
func (r *Room) IsFull() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Players) >= r.server.config.Game.MaxPlayers
}

// StartGame 开始游戏
func (r *Room) StartGame() {
	r.mu.Lock()

	if r.State != RoomStateWaiting || len(r.Players) < 2 {
		r.mu.Unlock()
		return
	}

	r.State = RoomStatePlaying
	r.game = NewGameSession(r)
	r.mu.Unlock()

	// 发牌、定先手并通知所有人
	r.game.Start()

	go func() { _ = r.server.redisStore.SaveRoom(context.Background(), r.Snapshot()) }()
}

// Snapshot 给 Redis 落盘用的房间快照
func (r *Room) Snapshot() storage.RoomSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := storage.RoomSnapshot{
		Code:        r.Code,
		State:       int(r.State),
		Players:     make([]storage.PlayerSnapshot, 0, len(r.Players)),
		PlayerOrder: append([]string(nil), r.PlayerOrder...),
		CreatedAt:   r.CreatedAt.Unix(),
	}
	for _, id := range r.PlayerOrder {
		p := r.Players[id]
		snapshot.Players = append(snapshot.Players, storage.PlayerSnapshot{
			ID:     p.Client.GetID(),
			Name:   p.Client.GetName(),
			IsHost: p.IsHost,
			Ready:  p.Ready,
		})
	}
	return snapshot
}

// GetGameSession 获取游戏会话
func (r *Room) GetGameSession() *GameSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.game
}

// FinishGame 游戏结束后回到等待状态，准备标记清零，可以直接再来一局
func (r *Room) FinishGame() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.State = RoomStateWaiting
	r.game = nil
	for _, p := range r.Players {
		p.Ready = false
	}
}
