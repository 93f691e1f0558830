package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/uno-online/internal/game/card"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 2)

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	turnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)

	readyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46"))

	// 牌面配色
	cardColorStyles = map[card.Color]lipgloss.Style{
		card.ColorRed:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		card.ColorYellow: lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		card.ColorGreen:  lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true),
		card.ColorBlue:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		card.ColorNone:   lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true),
	}

	cardBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	selectedCardStyle = cardBoxStyle.
				BorderForeground(lipgloss.Color("226"))

	cursorCardStyle = cardBoxStyle.
			BorderForeground(lipgloss.Color("86"))
)

// renderCard 渲染一张牌
func renderCard(c card.Card, selected, cursor bool) string {
	style := cardColorStyles[c.Color]
	text := style.Render(c.String())

	switch {
	case cursor:
		return cursorCardStyle.Render(text)
	case selected:
		return selectedCardStyle.Render(text)
	default:
		return cardBoxStyle.Render(text)
	}
}
