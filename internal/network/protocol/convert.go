package protocol

import (
	"github.com/palemoky/uno-online/internal/game/card"
)

// CardToInfo 牌转传输结构
func CardToInfo(c card.Card) CardInfo {
	return CardInfo{
		Color: int(c.Color),
		Value: int(c.Value),
	}
}

// InfoToCard 传输结构转牌
func InfoToCard(info CardInfo) card.Card {
	return card.Card{
		Color: card.Color(info.Color),
		Value: card.Value(info.Value),
	}
}

// CardsToInfos 批量转换
func CardsToInfos(cards []card.Card) []CardInfo {
	infos := make([]CardInfo, len(cards))
	for i, c := range cards {
		infos[i] = CardToInfo(c)
	}
	return infos
}

// ColorFromInt 整数转颜色
func ColorFromInt(c int) card.Color {
	return card.Color(c)
}

// InfosToCards 批量转换
func InfosToCards(infos []CardInfo) []card.Card {
	cards := make([]card.Card, len(infos))
	for i, info := range infos {
		cards[i] = InfoToCard(info)
	}
	return cards
}
