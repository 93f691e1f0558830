package card

import (
	"math/rand/v2"
)

// DeckSize 标准 UNO 牌堆的张数
const DeckSize = 108

// Deck 定义一副牌，牌堆尾部是栈顶
type Deck []Card

// NewDeck 创建标准 108 张牌堆：
// 每种颜色 1 张 0、2 张 1-9、2 张跳过/+2/反转，外加 4 张变色和 4 张+4
func NewDeck() Deck {
	deck := make(Deck, 0, DeckSize)
	for _, color := range Colors {
		deck = append(deck, Card{Color: color, Value: Value0})
		for v := Value1; v <= ValueReverse; v++ {
			deck = append(deck,
				Card{Color: color, Value: v},
				Card{Color: color, Value: v},
			)
		}
	}
	for i := 0; i < 4; i++ {
		deck = append(deck,
			Card{Color: ColorNone, Value: ValueWild},
			Card{Color: ColorNone, Value: ValueWildDrawFour},
		)
	}
	return deck
}

// Shuffle 洗牌
func (d Deck) Shuffle() {
	rand.Shuffle(len(d), func(i, j int) {
		d[i], d[j] = d[j], d[i]
	})
}

// Draw 从牌堆顶（尾部）摸一张牌，牌堆为空返回 false
func (d *Deck) Draw() (Card, bool) {
	if len(*d) == 0 {
		return Card{}, false
	}
	top := (*d)[len(*d)-1]
	*d = (*d)[:len(*d)-1]
	return top, true
}

// Push 把一张牌放回牌堆
func (d *Deck) Push(c Card) {
	*d = append(*d, c)
}

// Deal 按玩家顺序轮流发牌，每人 handSize 张；
// 牌堆不足时后面的玩家少拿，不报错
func (d Deck) Deal(playerIDs []string, handSize int) (Deck, map[string][]Card) {
	hands := make(map[string][]Card, len(playerIDs))
	for _, id := range playerIDs {
		hands[id] = make([]Card, 0, handSize)
	}

	for i := 0; i < handSize; i++ {
		for _, id := range playerIDs {
			c, ok := d.Draw()
			if !ok {
				return d, hands
			}
			hands[id] = append(hands[id], c)
		}
	}
	return d, hands
}

// Reshuffle 牌堆摸空时用弃牌堆重建：
// 保留弃牌堆顶，其余洗成新牌堆。弃牌堆为空时原样返回
func Reshuffle(discard []Card) (Deck, []Card) {
	if len(discard) == 0 {
		return nil, discard
	}

	top := discard[len(discard)-1]
	deck := make(Deck, len(discard)-1)
	copy(deck, discard[:len(discard)-1])
	deck.Shuffle()

	return deck, []Card{top}
}

// Remove 从手牌中精确移除指定的牌（颜色+面值都要匹配），
// 重复的牌需要手牌中有同样多的副本。返回剩余手牌；
// 任何一张不在手牌中则返回 false，不做部分移除
func Remove(hand []Card, cards []Card) ([]Card, bool) {
	rest := make([]Card, len(hand))
	copy(rest, hand)

	for _, c := range cards {
		found := false
		for i, h := range rest {
			if h.Equals(c) {
				rest = append(rest[:i], rest[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return rest, true
}
