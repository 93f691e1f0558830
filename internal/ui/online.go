// Package ui 实现基于 Bubble Tea 的终端客户端界面
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/uno-online/internal/game/card"
	"github.com/palemoky/uno-online/internal/network/client"
	"github.com/palemoky/uno-online/internal/network/protocol"
	"github.com/palemoky/uno-online/internal/sound"
)

// phase 界面所处阶段
type phase int

const (
	phaseConnect phase = iota // 输入昵称和房间号
	phaseLobby                // 房间等待
	phaseGame                 // 对局中
	phaseOver                 // 结算
)

// --- Bubble Tea 消息 ---

type wsMsg struct{ msg *protocol.Message }
type wsClosedMsg struct{}
type connectedMsg struct{ c *client.Client }
type connectFailedMsg struct{ err error }

// OnlineModel 在线对战的主模型
type OnlineModel struct {
	serverURL string
	httpBase  string
	client    *client.Client
	sounds    *sound.SoundManager

	phase phase

	// 连接表单
	nameInput textinput.Model
	codeInput textinput.Model
	focusIdx  int
	matching  bool // 正在快速匹配

	status string

	// 房间状态
	myID     string
	roomCode string
	players  []protocol.PlayerInfo

	// 对局状态
	hand        []card.Card
	topCard     card.Card
	currentTurn string
	reversed    bool
	deckSize    int

	challengeTarget string
	challengeName   string

	cursor        int
	selected      map[int]bool
	choosingColor bool

	leaderboard []protocol.LeaderboardEntry
	showBoard   bool

	winnerName string
	forfeit    bool

	width  int
	height int
}

// NewOnlineModel 创建在线模型，serverURL 形如 ws://host:port/ws
func NewOnlineModel(serverURL string) *OnlineModel {
	name := textinput.New()
	name.Placeholder = "你的昵称"
	name.CharLimit = 20
	name.Focus()

	code := textinput.New()
	code.Placeholder = "房间号（留空创建新房间）"
	code.CharLimit = 5

	sounds := sound.NewSoundManager()
	_ = sounds.Init()

	httpBase := strings.Replace(serverURL, "ws://", "http://", 1)
	httpBase = strings.Replace(httpBase, "wss://", "https://", 1)
	httpBase = strings.TrimSuffix(httpBase, "/ws")

	return &OnlineModel{
		serverURL: serverURL,
		httpBase:  httpBase,
		sounds:    sounds,
		phase:     phaseConnect,
		nameInput: name,
		codeInput: code,
		selected:  make(map[int]bool),
	}
}

// Init 实现 tea.Model
func (m *OnlineModel) Init() tea.Cmd {
	return textinput.Blink
}

// connectCmd 建立连接。房间号留空就先走 HTTP 创建一个
func (m *OnlineModel) connectCmd(code string, quickMatch bool) tea.Cmd {
	name := strings.TrimSpace(m.nameInput.Value())
	return func() tea.Msg {
		if code == "" && !quickMatch {
			created, err := createRoom(m.httpBase)
			if err != nil {
				return connectFailedMsg{err}
			}
			code = created
		}

		c := client.NewClient(m.serverURL)
		if err := c.Connect(code); err != nil {
			return connectFailedMsg{err}
		}
		c.StartHeartbeat()

		if quickMatch {
			_ = c.QuickMatch(name)
		} else {
			_ = c.Join(name)
		}
		return connectedMsg{c}
	}
}

// createRoom 通过 HTTP 接口创建房间
func createRoom(httpBase string) (string, error) {
	resp, err := http.Post(httpBase+"/create", "application/json", nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var result struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if result.Code == "" {
		return "", fmt.Errorf("创建房间失败: %s", string(body))
	}
	return result.Code, nil
}

// waitForMessage 等待下一条服务器消息
func (m *OnlineModel) waitForMessage() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		msg, err := c.Receive()
		if err != nil {
			return wsClosedMsg{}
		}
		return wsMsg{msg}
	}
}

// Update 实现 tea.Model
func (m *OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case connectedMsg:
		m.client = msg.c
		m.status = "已连接，等待加入房间..."
		return m, m.waitForMessage()

	case connectFailedMsg:
		m.status = errorStyle.Render("连接失败: " + msg.err.Error())
		return m, nil

	case wsClosedMsg:
		if m.phase != phaseConnect {
			m.status = errorStyle.Render("与服务器的连接已断开")
			m.phase = phaseConnect
		}
		return m, nil

	case wsMsg:
		cmd := m.handleServerMessage(msg.msg)
		return m, tea.Batch(cmd, m.waitForMessage())
	}

	return m, m.updateInputs(msg)
}

// updateInputs 把输入事件转给表单组件
func (m *OnlineModel) updateInputs(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.nameInput, cmd = m.nameInput.Update(msg)
	cmds = append(cmds, cmd)
	m.codeInput, cmd = m.codeInput.Update(msg)
	cmds = append(cmds, cmd)

	return tea.Batch(cmds...)
}

// handleKey 按阶段分发按键
func (m *OnlineModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		if m.client != nil {
			m.client.Close()
		}
		m.sounds.Close()
		return m, tea.Quit
	}

	switch m.phase {
	case phaseConnect:
		return m.handleConnectKey(msg)
	case phaseLobby:
		return m.handleLobbyKey(msg)
	case phaseGame:
		return m.handleGameKey(msg)
	case phaseOver:
		// 任意键回到大厅
		m.phase = phaseLobby
		m.resetGameState()
		return m, nil
	}
	return m, nil
}

func (m *OnlineModel) handleConnectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIdx = (m.focusIdx + 1) % 2
		if m.focusIdx == 0 {
			m.nameInput.Focus()
			m.codeInput.Blur()
		} else {
			m.nameInput.Blur()
			m.codeInput.Focus()
		}
		return m, nil

	case "enter":
		if strings.TrimSpace(m.nameInput.Value()) == "" {
			m.status = errorStyle.Render("请先输入昵称")
			return m, nil
		}
		code := strings.ToUpper(strings.TrimSpace(m.codeInput.Value()))
		m.status = "连接中..."
		return m, m.connectCmd(code, false)

	case "ctrl+q":
		// 快速匹配
		m.matching = true
		m.status = "匹配中..."
		return m, m.connectCmd("", true)
	}

	return m, m.updateInputs(msg)
}

func (m *OnlineModel) handleLobbyKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		_ = m.client.ToggleReady()
	case "b":
		m.showBoard = !m.showBoard
		if m.showBoard {
			_ = m.client.GetLeaderboard(10)
		}
	case "q", "esc":
		_ = m.client.LeaveRoom()
		m.client.Close()
		m.sounds.Close()
		return m, tea.Quit
	}
	return m, nil
}

func (m *OnlineModel) handleGameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// 万能牌选色模式
	if m.choosingColor {
		colors := map[string]card.Color{
			"1": card.ColorRed,
			"2": card.ColorYellow,
			"3": card.ColorGreen,
			"4": card.ColorBlue,
		}
		if c, ok := colors[msg.String()]; ok {
			m.choosingColor = false
			return m, m.playSelected(c)
		}
		if msg.String() == "esc" {
			m.choosingColor = false
		}
		return m, nil
	}

	switch msg.String() {
	case "left", "h":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor < len(m.hand)-1 {
			m.cursor++
		}
	case " ":
		if len(m.hand) > 0 {
			m.selected[m.cursor] = !m.selected[m.cursor]
		}
	case "enter":
		if len(m.hand) == 0 {
			return m, nil
		}
		if len(m.selectedIndexes()) == 0 {
			m.selected[m.cursor] = true
		}
		// 出的牌里有万能牌就先选色
		for _, i := range m.selectedIndexes() {
			if m.hand[i].IsWild() {
				m.choosingColor = true
				return m, nil
			}
		}
		return m, m.playSelected(card.ColorNone)
	case "d":
		_ = m.client.DrawCard()
	case "u":
		_ = m.client.ChallengeCall()
	case "q", "esc":
		_ = m.client.LeaveRoom()
		m.client.Close()
		m.sounds.Close()
		return m, tea.Quit
	}
	return m, nil
}

// selectedIndexes 当前选中的手牌下标，升序
func (m *OnlineModel) selectedIndexes() []int {
	var out []int
	for i := 0; i < len(m.hand); i++ {
		if m.selected[i] {
			out = append(out, i)
		}
	}
	return out
}

// playSelected 把选中的牌发给服务器
func (m *OnlineModel) playSelected(newColor card.Color) tea.Cmd {
	idxs := m.selectedIndexes()
	if len(idxs) == 0 {
		return nil
	}

	cards := make([]protocol.CardInfo, 0, len(idxs))
	for _, i := range idxs {
		cards = append(cards, protocol.CardToInfo(m.hand[i]))
	}

	_ = m.client.PlayCards(cards, int(newColor))
	return nil
}

// resetGameState 清掉上一局的状态
func (m *OnlineModel) resetGameState() {
	m.hand = nil
	m.topCard = card.Card{}
	m.currentTurn = ""
	m.reversed = false
	m.cursor = 0
	m.selected = make(map[int]bool)
	m.choosingColor = false
	m.challengeTarget = ""
	m.challengeName = ""
	m.winnerName = ""
	m.forfeit = false
}

// handleServerMessage 处理一条服务器消息并更新界面状态
func (m *OnlineModel) handleServerMessage(msg *protocol.Message) tea.Cmd {
	switch msg.Type {
	case protocol.MsgJoined:
		var p protocol.JoinedPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.myID = p.Player.ID
			m.roomCode = p.RoomCode
			m.players = p.Players
			m.phase = phaseLobby
			m.status = infoStyle.Render("已加入房间 " + p.RoomCode)
		}

	case protocol.MsgPlayerJoined:
		var p protocol.PlayerJoinedPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.players = p.Players
			m.status = infoStyle.Render(p.Player.Name + " 加入了房间")
		}

	case protocol.MsgPlayerLeft:
		var p protocol.PlayerLeftPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.players = p.Players
			if p.PlayerName != "" {
				m.status = subtleStyle.Render(p.PlayerName + " 离开了房间")
			}
		}

	case protocol.MsgPlayerReady:
		var p protocol.PlayerReadyPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.players = p.Players
		}

	case protocol.MsgMatchFound:
		var p protocol.MatchFoundPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.roomCode = p.RoomCode
			m.players = p.Players
			m.phase = phaseLobby
			m.status = infoStyle.Render("匹配成功！房间 " + p.RoomCode)
			// 匹配进来的玩家 joined 不会下发，自己从名单里认
			for _, pl := range p.Players {
				if pl.Name == strings.TrimSpace(m.nameInput.Value()) {
					m.myID = pl.ID
				}
			}
		}

	case protocol.MsgGameStart:
		var p protocol.GameStartPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.resetGameState()
			m.phase = phaseGame
			m.players = p.Players
			m.hand = protocol.InfosToCards(p.Hand)
			m.topCard = protocol.InfoToCard(p.TopCard)
			m.currentTurn = p.CurrentTurn
			m.sounds.Play(sound.SoundDeal)
		}

	case protocol.MsgCardPlayed:
		var p protocol.CardPlayedPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.topCard = protocol.InfoToCard(p.TopCard)
			m.currentTurn = p.CurrentTurn
			m.reversed = p.Reversed
			if p.Players != nil {
				m.players = p.Players
			}
			if p.PlayerID == m.myID {
				m.removeFromHand(protocol.InfosToCards(p.Cards))
			}
			m.challengeTarget = ""
			m.sounds.Play(sound.SoundPlay)
		}

	case protocol.MsgCardsDealt:
		var p protocol.CardsDealtPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.hand = append(m.hand, protocol.InfosToCards(p.Cards)...)
			m.sounds.Play(sound.SoundDraw)
		}

	case protocol.MsgPlayerDrew:
		var p protocol.PlayerDrewPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.deckSize = p.DeckSize
			m.currentTurn = p.CurrentTurn
			for i := range m.players {
				if m.players[i].ID == p.PlayerID {
					m.players[i].CardsCount = p.CardsLeft
				}
			}
		}

	case protocol.MsgChallengeStarted:
		var p protocol.ChallengeStartedPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.challengeTarget = p.TargetID
			m.challengeName = p.TargetName
			m.sounds.Play(sound.SoundUno)
		}

	case protocol.MsgChallengeSafe:
		m.challengeTarget = ""
		m.status = readyStyle.Render("UNO! 喊到了")

	case protocol.MsgChallengeCaught:
		var p protocol.ChallengeCaughtPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.challengeTarget = ""
			m.status = errorStyle.Render(fmt.Sprintf("%s 没喊 UNO，被 %s 抓住罚 %d 张！", p.TargetName, p.CallerName, p.Penalty))
			m.sounds.Play(sound.SoundChallenge)
		}

	case protocol.MsgChallengeExpired:
		m.challengeTarget = ""

	case protocol.MsgGameOver:
		var p protocol.GameOverPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.phase = phaseOver
			m.winnerName = p.WinnerName
			m.forfeit = p.Forfeit
			if p.WinnerID == m.myID {
				m.sounds.Play(sound.SoundWin)
			} else {
				m.sounds.Play(sound.SoundLose)
			}
		}

	case protocol.MsgLeaderboard:
		var p protocol.LeaderboardPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.leaderboard = p.Entries
		}

	case protocol.MsgError:
		var p protocol.ErrorPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.status = errorStyle.Render(p.Message)
		}
	}

	return nil
}

// removeFromHand 从本地手牌移除已被服务器确认的牌
func (m *OnlineModel) removeFromHand(played []card.Card) {
	rest, ok := card.Remove(m.hand, played)
	if ok {
		m.hand = rest
	}
	m.cursor = 0
	m.selected = make(map[int]bool)
	if m.cursor >= len(m.hand) && len(m.hand) > 0 {
		m.cursor = len(m.hand) - 1
	}
}

// View 实现 tea.Model
func (m *OnlineModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("UNO 在线对战"))
	b.WriteString("\n\n")

	switch m.phase {
	case phaseConnect:
		b.WriteString(m.viewConnect())
	case phaseLobby:
		b.WriteString(m.viewLobby())
	case phaseGame:
		b.WriteString(m.viewGame())
	case phaseOver:
		b.WriteString(m.viewOver())
	}

	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}

	return b.String()
}

func (m *OnlineModel) viewConnect() string {
	var b strings.Builder
	b.WriteString(m.nameInput.View() + "\n")
	b.WriteString(m.codeInput.View() + "\n\n")
	b.WriteString(subtleStyle.Render("Enter 加入/创建房间 · Ctrl+Q 快速匹配 · Tab 切换输入框 · Ctrl+C 退出"))
	b.WriteString("\n")
	return b.String()
}

func (m *OnlineModel) viewLobby() string {
	var b strings.Builder
	b.WriteString(infoStyle.Render("房间号: "+m.roomCode) + "\n\n")

	for _, p := range m.players {
		line := "  " + p.Name
		if p.IsHost {
			line += " 👑"
		}
		if p.ID == m.myID {
			line += subtleStyle.Render("（你）")
		}
		if p.Ready {
			line += readyStyle.Render("  已准备")
		} else {
			line += subtleStyle.Render("  未准备")
		}
		b.WriteString(line + "\n")
	}

	if m.showBoard && len(m.leaderboard) > 0 {
		b.WriteString("\n" + infoStyle.Render("排行榜") + "\n")
		for _, e := range m.leaderboard {
			b.WriteString(fmt.Sprintf("  %2d. %-12s %5d 分  %d 胜 (%.0f%%)\n",
				e.Rank, e.PlayerName, e.Score, e.Wins, e.WinRate))
		}
	}

	b.WriteString("\n" + subtleStyle.Render("R 准备/取消 · B 排行榜 · Q 退出"))
	b.WriteString("\n")
	return b.String()
}

func (m *OnlineModel) viewGame() string {
	var b strings.Builder

	// 对手状态
	for _, p := range m.players {
		if p.ID == m.myID {
			continue
		}
		line := fmt.Sprintf("  %s: %d 张", p.Name, p.CardsCount)
		if p.ID == m.currentTurn {
			line = turnStyle.Render("▶" + line)
		}
		b.WriteString(line + "\n")
	}

	// 弃牌堆顶和方向
	dir := "→"
	if m.reversed {
		dir = "←"
	}
	b.WriteString("\n  堆顶: " + renderCard(m.topCard, false, false) + "  方向 " + dir + "\n\n")

	// 挑战提示
	if m.challengeTarget != "" {
		if m.challengeTarget == m.myID {
			b.WriteString(errorStyle.Render("  你只剩一张牌了，快按 U 喊 UNO！") + "\n\n")
		} else {
			b.WriteString(turnStyle.Render(fmt.Sprintf("  %s 只剩一张牌！按 U 抓他没喊 UNO", m.challengeName)) + "\n\n")
		}
	}

	// 自己的手牌
	if m.currentTurn == m.myID {
		b.WriteString(turnStyle.Render("  轮到你了") + "\n")
	}
	cards := make([]string, 0, len(m.hand))
	for i, c := range m.hand {
		cards = append(cards, renderCard(c, m.selected[i], i == m.cursor))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...) + "\n")

	if m.choosingColor {
		b.WriteString("\n" + turnStyle.Render("  选择新颜色: 1 红 · 2 黄 · 3 绿 · 4 蓝 · Esc 取消") + "\n")
	} else {
		b.WriteString("\n" + subtleStyle.Render("  ←/→ 移动 · 空格 多选 · Enter 出牌 · D 摸牌 · U 喊UNO/抓人 · Q 退出") + "\n")
	}

	return b.String()
}

func (m *OnlineModel) viewOver() string {
	var b strings.Builder
	if m.forfeit {
		b.WriteString(turnStyle.Render(fmt.Sprintf("🏆 对手全部离开，%s 获胜！", m.winnerName)))
	} else {
		b.WriteString(turnStyle.Render(fmt.Sprintf("🏆 %s 获胜！", m.winnerName)))
	}
	b.WriteString("\n\n" + subtleStyle.Render("按任意键回到房间") + "\n")
	return b.String()
}

// 保证编译期实现 tea.Model
var _ tea.Model = (*OnlineModel)(nil)
