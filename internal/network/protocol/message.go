package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgJoin MessageType = "join" // 报名加入（连接后的第一条消息，携带昵称）
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间操作
	MsgLeaveRoom  MessageType = "leave_room"  // 离开房间
	MsgQuickMatch MessageType = "quick_match" // 快速匹配
	MsgReady      MessageType = "ready"       // 准备/取消准备（开关）

	// 游戏操作
	MsgPlayCards     MessageType = "play_cards"     // 出牌
	MsgDrawCard      MessageType = "draw_card"      // 摸牌
	MsgChallengeCall MessageType = "challenge_call" // 喊 UNO / 抓人

	// 查询
	MsgGetLeaderboard MessageType = "get_leaderboard" // 查询排行榜
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgJoined MessageType = "joined" // 加入成功
	MsgPong   MessageType = "pong"   // 心跳 pong

	// 房间相关
	MsgPlayerJoined MessageType = "player_joined" // 其他玩家加入
	MsgPlayerLeft   MessageType = "player_left"   // 玩家离开
	MsgPlayerReady  MessageType = "player_ready"  // 玩家准备状态变更
	MsgMatchFound   MessageType = "match_found"   // 匹配成功

	// 游戏流程
	MsgGameStart  MessageType = "game_start"  // 游戏开始（含各自手牌）
	MsgCardPlayed MessageType = "card_played" // 有人出牌
	MsgCardsDealt MessageType = "cards_dealt" // 私发新到手的牌（摸牌/罚牌）
	MsgPlayerDrew MessageType = "player_drew" // 有人摸牌（公开张数）
	MsgGameOver   MessageType = "game_over"   // 游戏结束

	// UNO 挑战
	MsgChallengeStarted MessageType = "challenge_started" // 有人只剩一张牌，挑战开始
	MsgChallengeSafe    MessageType = "challenge_safe"    // 目标玩家喊到了 UNO（仅私发）
	MsgChallengeCaught  MessageType = "challenge_caught"  // 被别人抓住，罚两张
	MsgChallengeExpired MessageType = "challenge_expired" // 挑战超时，无人行动

	// 查询结果
	MsgLeaderboard MessageType = "leaderboard" // 排行榜数据

	// 错误
	MsgError MessageType = "error" // 错误消息
)

// --- 错误码 ---
const (
	ErrCodeUnknown     = 1000
	ErrCodeInvalidMsg  = 1001
	ErrCodeInvalidName = 1002
	ErrCodeRateLimit   = 1003

	ErrCodeRoomNotFound = 2001
	ErrCodeRoomFull     = 2002
	ErrCodeNotInRoom    = 2003
	ErrCodeNameTaken    = 2004
	ErrCodeGameStarted  = 2005
	ErrCodeAloneInRoom  = 2006

	ErrCodeGameNotStart = 3001
	ErrCodeNotYourTurn  = 3002
	ErrCodeNoCards      = 3003
	ErrCodeMixedValues  = 3004
	ErrCodeCardsNotHeld = 3005
	ErrCodeIllegalPlay  = 3006
	ErrCodeInvalidColor = 3007
	ErrCodeDeckEmpty    = 3008
	ErrCodeNoChallenge  = 3009
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:     "未知错误",
	ErrCodeInvalidMsg:  "无效的消息格式",
	ErrCodeInvalidName: "昵称不合法",
	ErrCodeRateLimit:   "操作过于频繁",

	ErrCodeRoomNotFound: "房间不存在",
	ErrCodeRoomFull:     "房间已满",
	ErrCodeNotInRoom:    "您不在房间中",
	ErrCodeNameTaken:    "昵称已被占用",
	ErrCodeGameStarted:  "游戏已开始",
	ErrCodeAloneInRoom:  "房间里只有你一个人，邀请朋友加入后再开始吧",

	ErrCodeGameNotStart: "游戏尚未开始",
	ErrCodeNotYourTurn:  "还没轮到您",
	ErrCodeNoCards:      "至少要出一张牌",
	ErrCodeMixedValues:  "一次只能出相同面值的牌",
	ErrCodeCardsNotHeld: "手牌中没有这些牌",
	ErrCodeIllegalPlay:  "这张牌压不住弃牌堆顶",
	ErrCodeInvalidColor: "万能牌需要指定有效的颜色",
	ErrCodeDeckEmpty:    "牌堆已经摸空了",
	ErrCodeNoChallenge:  "当前没有进行中的挑战",
}
