//go:build ci

package sound

// 游戏事件对应的音效名
const (
	SoundDeal      = "deal"
	SoundPlay      = "play"
	SoundDraw      = "draw"
	SoundUno       = "uno"
	SoundChallenge = "challenge"
	SoundWin       = "win"
	SoundLose      = "lose"
)

type SoundManager struct{}

func NewSoundManager() *SoundManager {
	return &SoundManager{}
}

func (sm *SoundManager) Init() error {
	return nil
}

func (sm *SoundManager) Play(name string) {
	// No-op
}

func (sm *SoundManager) Close() {
	// No-op
}
