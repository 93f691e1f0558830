package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_EncodeDecodeRoundtrip(t *testing.T) {
	msg, err := NewMessage(MsgJoin, JoinPayload{Name: "alice"})
	require.NoError(t, err)

	data, err := msg.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, MsgJoin, decoded.Type)

	payload, err := ParsePayload[JoinPayload](decoded)
	require.NoError(t, err)
	assert.Equal(t, "alice", payload.Name)
}

func TestNewMessage_NilPayload(t *testing.T) {
	msg, err := NewMessage(MsgPong, nil)
	require.NoError(t, err)
	assert.Nil(t, msg.Payload)

	// A payload-less message still encodes and decodes
	data, err := msg.Encode()
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, MsgPong, decoded.Type)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)
}

func TestParsePayload_Malformed(t *testing.T) {
	msg := MustNewMessage(MsgJoin, JoinPayload{Name: "alice"})
	msg.Payload = []byte(`{"name": 42`)

	_, err := ParsePayload[JoinPayload](msg)
	assert.Error(t, err)
}

func TestNewErrorMessage(t *testing.T) {
	msg := NewErrorMessage(ErrCodeNotYourTurn)
	require.Equal(t, MsgError, msg.Type)

	payload, err := ParsePayload[ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, ErrCodeNotYourTurn, payload.Code)
	assert.Equal(t, ErrorMessages[ErrCodeNotYourTurn], payload.Message)
	assert.NotEmpty(t, payload.Message, "every code carries a text")
}

func TestNewErrorMessageWithText(t *testing.T) {
	msg := NewErrorMessageWithText(ErrCodeUnknown, "自定义错误")

	payload, err := ParsePayload[ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, "自定义错误", payload.Message)
}

func TestErrorMessages_CoverAllCodes(t *testing.T) {
	codes := []int{
		ErrCodeUnknown, ErrCodeInvalidMsg, ErrCodeInvalidName, ErrCodeRateLimit,
		ErrCodeRoomNotFound, ErrCodeRoomFull, ErrCodeNotInRoom, ErrCodeNameTaken,
		ErrCodeGameStarted, ErrCodeAloneInRoom,
		ErrCodeGameNotStart, ErrCodeNotYourTurn, ErrCodeNoCards, ErrCodeMixedValues,
		ErrCodeCardsNotHeld, ErrCodeIllegalPlay, ErrCodeInvalidColor, ErrCodeDeckEmpty,
		ErrCodeNoChallenge,
	}
	for _, code := range codes {
		assert.NotEmpty(t, ErrorMessages[code], "code %d has no message", code)
	}
}
