package card

import (
	"fmt"
)

// Color 定义牌的颜色，万能牌在打出前没有颜色
type Color int

const (
	ColorNone Color = iota // 无色（万能牌初始状态）
	ColorRed
	ColorYellow
	ColorGreen
	ColorBlue
)

// colorNames 颜色字符串映射表
var colorNames = map[Color]string{
	ColorNone:   "",
	ColorRed:    "红",
	ColorYellow: "黄",
	ColorGreen:  "绿",
	ColorBlue:   "蓝",
}

func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return ""
}

// IsSolid 是否是四种实色之一
func (c Color) IsSolid() bool {
	return c >= ColorRed && c <= ColorBlue
}

// Colors 四种实色，万能牌变色时从中选择
var Colors = []Color{ColorRed, ColorYellow, ColorGreen, ColorBlue}

// Value 定义牌面值：0-9 为数字牌，其余为功能牌
type Value int

const (
	Value0 Value = iota
	Value1
	Value2
	Value3
	Value4
	Value5
	Value6
	Value7
	Value8
	Value9
	ValueSkip         // 跳过
	ValueDrawTwo      // +2
	ValueReverse      // 反转
	ValueWild         // 变色
	ValueWildDrawFour // 变色+4
)

// valueNames 功能牌字符串映射表
var valueNames = map[Value]string{
	ValueSkip:         "跳过",
	ValueDrawTwo:      "+2",
	ValueReverse:      "反转",
	ValueWild:         "变色",
	ValueWildDrawFour: "+4",
}

func (v Value) String() string {
	if name, ok := valueNames[v]; ok {
		return name
	}
	return fmt.Sprintf("%d", int(v))
}

// IsWild 是否是万能牌（打出时需要指定颜色）
func (v Value) IsWild() bool {
	return v == ValueWild || v == ValueWildDrawFour
}

// Card 定义一张牌
type Card struct {
	Color Color
	Value Value
}

func (c Card) String() string {
	if c.Color == ColorNone {
		return c.Value.String()
	}
	return c.Color.String() + c.Value.String()
}

// IsWild 是否是万能牌
func (c Card) IsWild() bool {
	return c.Value.IsWild()
}

// Equals 颜色和面值都相同才算同一张牌，无色只等于无色
func (c Card) Equals(other Card) bool {
	return c.Color == other.Color && c.Value == other.Value
}

// Matches 检查能否压在 top 上：同色、同值或万能牌
func (c Card) Matches(top Card) bool {
	if c.IsWild() {
		return true
	}
	return c.Color == top.Color || c.Value == top.Value
}
