package protocol

// --- 客户端请求 Payloads ---

// JoinPayload 报名加入请求（连接后的第一条消息）
type JoinPayload struct {
	Name string `json:"name"` // 显示昵称
}

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// PlayCardsPayload 出牌请求，可一次出多张同面值的牌
type PlayCardsPayload struct {
	Cards    []CardInfo `json:"cards"`
	NewColor int        `json:"new_color,omitempty"` // 万能牌指定的新颜色
}

// GetLeaderboardPayload 排行榜查询请求
type GetLeaderboardPayload struct {
	Limit int `json:"limit,omitempty"`
}

// --- 服务端响应 Payloads ---

// JoinedPayload 加入成功响应
type JoinedPayload struct {
	RoomCode string       `json:"room_code"`
	Player   PlayerInfo   `json:"player"`
	Players  []PlayerInfo `json:"players"` // 房间内所有玩家
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"server_timestamp"` // 服务器时间戳（毫秒）
}

// PlayerJoinedPayload 其他玩家加入通知
type PlayerJoinedPayload struct {
	Player  PlayerInfo   `json:"player"`
	Players []PlayerInfo `json:"players"`
}

// PlayerLeftPayload 玩家离开通知
type PlayerLeftPayload struct {
	PlayerID   string       `json:"player_id"`
	PlayerName string       `json:"player_name"`
	Players    []PlayerInfo `json:"players"`
}

// PlayerReadyPayload 玩家准备状态通知
type PlayerReadyPayload struct {
	PlayerID string       `json:"player_id"`
	Ready    bool         `json:"ready"`
	Players  []PlayerInfo `json:"players"`
}

// MatchFoundPayload 匹配成功通知
type MatchFoundPayload struct {
	RoomCode string       `json:"room_code"`
	Players  []PlayerInfo `json:"players"`
}

// GameStartPayload 游戏开始通知（每人单发，手牌只给本人）
type GameStartPayload struct {
	Players     []PlayerInfo `json:"players"` // 按随机后的座位顺序排列
	Hand        []CardInfo   `json:"hand"`    // 自己的手牌
	TopCard     CardInfo     `json:"top_card"`
	CurrentTurn string       `json:"current_turn"` // 先手玩家 ID
}

// CardPlayedPayload 出牌通知
type CardPlayedPayload struct {
	PlayerID    string       `json:"player_id"`
	PlayerName  string       `json:"player_name"`
	Cards       []CardInfo   `json:"cards"`
	CardsLeft   int          `json:"cards_left"` // 出牌人剩余手牌数
	TopCard     CardInfo     `json:"top_card"`   // 新的弃牌堆顶
	CurrentTurn string       `json:"current_turn"`
	Reversed    bool         `json:"reversed"` // 当前方向
	Players     []PlayerInfo `json:"players"`
}

// CardsDealtPayload 私发新到手的牌（摸牌或罚牌）
type CardsDealtPayload struct {
	Cards  []CardInfo `json:"cards"`
	Reason string     `json:"reason"` // draw / draw_two / draw_four / penalty
}

// PlayerDrewPayload 有人摸牌的公开通知
type PlayerDrewPayload struct {
	PlayerID    string `json:"player_id"`
	PlayerName  string `json:"player_name"`
	Count       int    `json:"count"`      // 摸了几张
	CardsLeft   int    `json:"cards_left"` // 摸完后的手牌数
	DeckSize    int    `json:"deck_size"`
	CurrentTurn string `json:"current_turn"`
}

// GameOverPayload 游戏结束通知
type GameOverPayload struct {
	WinnerID   string `json:"winner_id"`
	WinnerName string `json:"winner_name"`
	Forfeit    bool   `json:"forfeit"` // 对手全部离开导致的获胜
}

// ChallengeStartedPayload 挑战开始通知
type ChallengeStartedPayload struct {
	TargetID   string `json:"target_id"`
	TargetName string `json:"target_name"`
	Timeout    int    `json:"timeout"` // 超时时间（秒）
}

// ChallengeCaughtPayload 挑战抓人成功通知
type ChallengeCaughtPayload struct {
	TargetID   string `json:"target_id"`
	TargetName string `json:"target_name"`
	CallerID   string `json:"caller_id"`
	CallerName string `json:"caller_name"`
	Penalty    int    `json:"penalty"` // 罚牌张数
}

// ChallengeExpiredPayload 挑战超时通知
type ChallengeExpiredPayload struct {
	TargetID string `json:"target_id"`
}

// LeaderboardPayload 排行榜数据
type LeaderboardPayload struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	PlayerName string  `json:"player_name"`
	Score      int     `json:"score"`
	Wins       int     `json:"wins"`
	WinRate    float64 `json:"win_rate"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// --- 通用数据结构 ---

// PlayerInfo 玩家信息
type PlayerInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsHost     bool   `json:"is_host"`     // 第一个进房间的人是房主
	Ready      bool   `json:"ready"`       // 是否准备
	CardsCount int    `json:"cards_count"` // 手牌数量
}

// CardInfo 牌信息
type CardInfo struct {
	Color int `json:"color"` // 0=无色, 1=红, 2=黄, 3=绿, 4=蓝
	Value int `json:"value"` // 0-9 数字, 10=跳过, 11=+2, 12=反转, 13=变色, 14=+4
}
