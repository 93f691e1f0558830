package server

import (
	"math/rand"
	"strings"
	"unicode/utf8"

	"github.com/palemoky/uno-online/internal/apperrors"
)

// 昵称长度限制（按字符数，不是字节数）
const (
	nicknameMinLen = 1
	nicknameMaxLen = 20
)

// 昵称词库，报名时没填昵称就随机生成一个
var (
	adjectives = []string{
		"勇敢的", "聪明的", "快乐的", "神秘的", "酷炫的",
		"优雅的", "可爱的", "威武的", "沉稳的", "活泼的",
		"机智的", "潇洒的", "温柔的", "霸气的", "淡定的",
		"闪亮的", "迷人的", "傲娇的", "呆萌的", "高冷的",
	}

	nouns = []string{
		"小鸡", "熊猫", "老虎", "狮子", "猴子",
		"兔子", "狐狸", "海豚", "企鹅", "考拉",
		"柯基", "柴犬", "布偶", "龙猫", "仓鼠",
		"刺猬", "松鼠", "浣熊", "水獭", "羊驼",
	}
)

// GenerateNickname 生成随机昵称
func GenerateNickname() string {
	adj := adjectives[rand.Intn(len(adjectives))]
	noun := nouns[rand.Intn(len(nouns))]
	return adj + noun
}

// ValidateNickname 校验昵称：去掉首尾空白后不能为空、不能超长、
// 不能包含换行等控制字符
func ValidateNickname(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed != name {
		return apperrors.ErrInvalidName
	}

	n := utf8.RuneCountInString(name)
	if n < nicknameMinLen || n > nicknameMaxLen {
		return apperrors.ErrInvalidName
	}

	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return apperrors.ErrInvalidName
		}
	}
	return nil
}
