package server

import (
	"log"
	"time"

	"github.com/palemoky/uno-online/internal/apperrors"
	"github.com/palemoky/uno-online/internal/network/protocol"
)

// 被抓住没喊 UNO 的罚牌张数
const challengePenalty = 2

// startChallenge 玩家只剩一张牌时打开挑战窗口，调用方需持有 gs.mu。
// 窗口内目标自己喊 UNO 即安全，别人先喊则目标罚两张；
// 超时无人行动窗口静默关闭
func (gs *GameSession) startChallenge(target *GamePlayer) {
	gs.cancelChallenge()

	gs.challengeTarget = target.ID
	gs.challengeGen++
	gen := gs.challengeGen

	timeout := gs.room.server.config.Game.ChallengeTimeoutDuration()
	gs.challengeTimer = time.AfterFunc(timeout, func() {
		gs.expireChallenge(gen)
	})

	gs.broadcast(protocol.MustNewMessage(protocol.MsgChallengeStarted, protocol.ChallengeStartedPayload{
		TargetID:   target.ID,
		TargetName: target.Name,
		Timeout:    int(timeout.Seconds()),
	}))

	log.Printf("⏱️ 房间 %s 玩家 %s 只剩一张牌，挑战窗口 %s", gs.room.Code, target.Name, timeout)
}

// cancelChallenge 关闭挑战窗口，调用方需持有 gs.mu
func (gs *GameSession) cancelChallenge() {
	if gs.challengeTimer != nil {
		gs.challengeTimer.Stop()
		gs.challengeTimer = nil
	}
	gs.challengeTarget = ""
	gs.challengeGen++
}

// expireChallenge 挑战窗口超时回调。
// 用代数对账，旧窗口的计时器在新窗口开启后触发时直接作废
func (gs *GameSession) expireChallenge(gen int) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gen != gs.challengeGen || gs.challengeTarget == "" {
		return
	}

	targetID := gs.challengeTarget
	gs.challengeTarget = ""
	gs.challengeTimer = nil
	gs.challengeGen++

	gs.broadcast(protocol.MustNewMessage(protocol.MsgChallengeExpired, protocol.ChallengeExpiredPayload{
		TargetID: targetID,
	}))
}

// HandleChallengeCall 喊 UNO。目标自己喊即安全；
// 其他玩家先喊则目标罚两张。没有进行中的窗口时报错
func (gs *GameSession) HandleChallengeCall(callerID string) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.state != GameStatePlaying {
		return apperrors.ErrGameNotStart
	}
	if gs.challengeTarget == "" {
		return apperrors.ErrNoChallenge
	}

	target := gs.findPlayer(gs.challengeTarget)
	caller := gs.findPlayer(callerID)
	if target == nil || caller == nil {
		return apperrors.ErrNoChallenge
	}

	if callerID == target.ID {
		// 自己喊到了，安全
		gs.cancelChallenge()
		target.client.SendMessage(protocol.MustNewMessage(protocol.MsgChallengeSafe, nil))
		log.Printf("✅ 房间 %s 玩家 %s 喊到了 UNO", gs.room.Code, target.Name)
		return nil
	}

	// 被别人抓住，罚两张
	gs.cancelChallenge()
	gs.dealPenalty(target.ID, challengePenalty, "penalty")
	gs.broadcast(protocol.MustNewMessage(protocol.MsgChallengeCaught, protocol.ChallengeCaughtPayload{
		TargetID:   target.ID,
		TargetName: target.Name,
		CallerID:   caller.ID,
		CallerName: caller.Name,
		Penalty:    challengePenalty,
	}))

	log.Printf("🚫 房间 %s 玩家 %s 被 %s 抓住没喊 UNO，罚 %d 张", gs.room.Code, target.Name, caller.Name, challengePenalty)
	return nil
}
