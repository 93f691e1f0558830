package apperrors

import (
	"github.com/palemoky/uno-online/internal/network/protocol"
)

// GameError 游戏错误（房间和会话共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// New 用错误码和消息表创建错误
func New(code int) *GameError {
	return &GameError{Code: code, Message: protocol.ErrorMessages[code]}
}

// 预定义错误
var (
	ErrRoomNotFound = New(protocol.ErrCodeRoomNotFound)
	ErrRoomFull     = New(protocol.ErrCodeRoomFull)
	ErrNotInRoom    = New(protocol.ErrCodeNotInRoom)
	ErrNameTaken    = New(protocol.ErrCodeNameTaken)
	ErrInvalidName  = New(protocol.ErrCodeInvalidName)
	ErrGameStarted  = New(protocol.ErrCodeGameStarted)
	ErrAloneInRoom  = New(protocol.ErrCodeAloneInRoom)

	ErrGameNotStart = New(protocol.ErrCodeGameNotStart)
	ErrNotYourTurn  = New(protocol.ErrCodeNotYourTurn)
	ErrNoCards      = New(protocol.ErrCodeNoCards)
	ErrMixedValues  = New(protocol.ErrCodeMixedValues)
	ErrCardsNotHeld = New(protocol.ErrCodeCardsNotHeld)
	ErrIllegalPlay  = New(protocol.ErrCodeIllegalPlay)
	ErrInvalidColor = New(protocol.ErrCodeInvalidColor)
	ErrDeckEmpty    = New(protocol.ErrCodeDeckEmpty)
	ErrNoChallenge  = New(protocol.ErrCodeNoChallenge)
)
