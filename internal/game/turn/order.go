// Package turn 实现可反转的环形回合顺序。
// 用固定切片加当前下标和方向标志表示环，不需要链表。
package turn

import (
	"errors"
)

// ErrNoSeats 构造空的回合顺序是配置错误
var ErrNoSeats = errors.New("turn: 回合顺序至少需要一个座位")

// Order 环形回合顺序
type Order struct {
	seats    []string // 座位上的玩家 ID，开局后只因掉线收缩
	idx      int      // 当前回合玩家的下标
	reversed bool     // 方向标志
}

// New 按给定座位顺序创建回合顺序，首个座位先行
func New(seats []string) (*Order, error) {
	if len(seats) == 0 {
		return nil, ErrNoSeats
	}
	s := make([]string, len(seats))
	copy(s, seats)
	return &Order{seats: s}, nil
}

// Current 当前回合的玩家
func (o *Order) Current() string {
	return o.seats[o.idx]
}

// PeekNext 一次 Advance 之后轮到谁，不改变状态。
// 反转时沿环的反方向取前驱
func (o *Order) PeekNext() string {
	return o.seats[o.step(o.idx, 1)]
}

// Advance 沿当前方向前进 n 步，n 大于 1 用于实现跳过
func (o *Order) Advance(n int) {
	o.idx = o.step(o.idx, n)
}

// ToggleDirection 反转方向
func (o *Order) ToggleDirection() {
	o.reversed = !o.reversed
}

// Reversed 当前是否反向
func (o *Order) Reversed() bool {
	return o.reversed
}

// Len 座位数量
func (o *Order) Len() int {
	return len(o.seats)
}

// Seats 返回座位顺序的副本
func (o *Order) Seats() []string {
	s := make([]string, len(o.seats))
	copy(s, o.seats)
	return s
}

// Contains 玩家是否在座位上
func (o *Order) Contains(id string) bool {
	for _, s := range o.seats {
		if s == id {
			return true
		}
	}
	return false
}

// Remove 把一个座位从环中移除并重接相邻座位。
// 如果移除的是当前回合玩家，回合沿当前方向交给下一个人。
// 玩家不在环中或者是最后一个座位时返回 false
func (o *Order) Remove(id string) bool {
	if len(o.seats) <= 1 {
		return false
	}

	target := -1
	for i, s := range o.seats {
		if s == id {
			target = i
			break
		}
	}
	if target == -1 {
		return false
	}

	// 记住移除后该轮到谁，删完再按 ID 找回下标
	keep := o.Current()
	if target == o.idx {
		keep = o.PeekNext()
	}

	o.seats = append(o.seats[:target], o.seats[target+1:]...)
	for i, s := range o.seats {
		if s == keep {
			o.idx = i
			break
		}
	}
	return true
}

// step 从 i 出发按方向走 n 步后的下标
func (o *Order) step(i, n int) int {
	size := len(o.seats)
	if o.reversed {
		n = -n
	}
	return ((i+n)%size + size) % size
}
