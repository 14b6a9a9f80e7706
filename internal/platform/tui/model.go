package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/arcade-sdk/internal/host"
	"github.com/vovakirdan/arcade-sdk/internal/protocol"
	"github.com/vovakirdan/arcade-sdk/internal/registry"
)

const (
	maxEventRows   = 200
	minTableHeight = 4
)

// ConsoleOptions configures the host console.
type ConsoleOptions struct {
	TickRate int
	Legacy   bool // send the older protocol's commands
	Embedded bool // back returns to the caller instead of quitting
}

// ConsoleModel is the Bubble Tea model of the host console. It forwards game
// keys to a local game and host keys to its session, and lists every message
// exchanged.
type ConsoleModel struct {
	local  *host.Local
	opts   ConsoleOptions
	keys   ConsoleKeyMap
	help   help.Model
	table  table.Model
	rows   []table.Row
	ctx    context.Context
	cancel context.CancelFunc

	legacy     bool
	started    bool // a legacy start was sent and the game has not ended since
	status     string
	statusErr  bool
	width      int
	height     int
	quitting   bool
	backToMenu bool
}

// NewConsoleModel creates a console driving l.
func NewConsoleModel(l *host.Local, opts ConsoleOptions) ConsoleModel {
	if opts.TickRate < 1 {
		opts.TickRate = DefaultTickRate
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := ConsoleModel{
		local:  l,
		opts:   opts,
		keys:   DefaultConsoleKeyMap(),
		help:   help.New(),
		ctx:    ctx,
		cancel: cancel,
		legacy: opts.Legacy,
		width:  80,
		height: 24,
	}
	m.table = m.createTable()
	return m
}

func (m *ConsoleModel) createTable() table.Model {
	detail := m.width - 8 - 6 - 14 - 10 - 12
	if detail < 16 {
		detail = 16
	}
	columns := []table.Column{
		{Title: "Time", Width: 8},
		{Title: "From", Width: 6},
		{Title: "Type", Width: 14},
		{Title: "Session", Width: 10},
		{Title: "Detail", Width: detail},
	}

	height := m.height - 18
	if height < minTableHeight {
		height = minTableHeight
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(m.rows),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Bold(false)
	t.SetStyles(s)
	t.GotoBottom()
	return t
}

// Init starts the tick loop and the event reader.
func (m ConsoleModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.opts.TickRate),
		waitForEvent(m.ctx, m.local.Session.Events()),
	)
}

// Update handles messages and updates the model state.
func (m ConsoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table = m.createTable()
		return m, nil

	case TickMsg:
		if m.quitting || m.backToMenu {
			return m, nil
		}
		if err := m.local.Game.Tick(); err != nil {
			m.setStatus(err)
		}
		return m, tickCmd(m.opts.TickRate)

	case EventMsg:
		m.addEvent(msg)
		return m, waitForEvent(m.ctx, m.local.Session.Events())
	}

	return m, nil
}

func (m ConsoleModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.cancel()
		if m.opts.Embedded {
			m.backToMenu = true
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Legacy):
		m.legacy = !m.legacy
		m.status = "host protocol: " + protocolName(m.legacy)
		m.statusErr = false
		return m, nil

	case key.Matches(msg, m.keys.Play):
		m.command("playGame", m.play)
	case key.Matches(msg, m.keys.Pause):
		m.command("pauseGame", m.pause)
	case key.Matches(msg, m.keys.Restart):
		m.command("restartGame", m.restart)
	case key.Matches(msg, m.keys.Score):
		m.command("requestScore", m.requestScore)

	default:
		if a := m.keys.Action(msg); a != registry.ActionNone {
			if err := m.local.Game.Input(a); err != nil {
				m.setStatus(err)
			}
		}
	}
	return m, nil
}

func (m *ConsoleModel) play() (string, error) {
	sess := m.local.Session
	if !m.legacy {
		return sess.Play()
	}
	if !m.started {
		m.started = true
		return "_startGame", sess.LegacyStart()
	}
	return "_resumeGame", sess.LegacyResume()
}

func (m *ConsoleModel) pause() (string, error) {
	if m.legacy {
		return "_pauseGame", m.local.Session.LegacyPause()
	}
	return "", m.local.Session.Pause()
}

func (m *ConsoleModel) restart() (string, error) {
	if m.legacy {
		m.started = true
		return "_startGame", m.local.Session.LegacyStart()
	}
	return m.local.Session.Restart()
}

func (m *ConsoleModel) requestScore() (string, error) {
	if m.legacy {
		return "_requestScore", m.local.Session.LegacyRequestScore()
	}
	return "", m.local.Session.RequestScore()
}

// command runs a host action and logs it in the event table. For the current
// protocol the action returns the token it sent; for legacy commands it
// returns the tag.
func (m *ConsoleModel) command(tag string, send func() (string, error)) {
	out, err := send()
	if err != nil {
		m.setStatus(err)
		return
	}
	token := out
	if m.legacy {
		tag, token = out, ""
	}
	m.appendRow(table.Row{"", "host", tag, shortToken(token), ""})
	m.status = ""
}

func (m *ConsoleModel) addEvent(msg EventMsg) {
	ev := msg.Event
	var detail string
	switch e := ev.(type) {
	case protocol.InitEvent:
		detail = "version " + e.Version
	case protocol.ScoreEvent:
		detail = fmt.Sprintf("score %d (challenge %d)", e.Score, e.ChallengeNumber)
	case protocol.GameOverEvent:
		m.started = false
		detail = fmt.Sprintf("final score %d (challenge %d)", e.Score, e.ChallengeNumber)
	case protocol.WarningEvent:
		detail = e.Msg
	case protocol.ErrEvent:
		detail = e.ErrMsg
	}
	m.appendRow(table.Row{
		msg.At.Format("15:04:05"),
		"game",
		string(ev.Type()),
		shortToken(protocol.SessionToken(ev)),
		detail,
	})
}

func (m *ConsoleModel) appendRow(row table.Row) {
	if row[0] == "" {
		row[0] = "-"
	}
	m.rows = append(m.rows, row)
	if len(m.rows) > maxEventRows {
		m.rows = m.rows[len(m.rows)-maxEventRows:]
	}
	m.table.SetRows(m.rows)
	m.table.GotoBottom()
}

func (m *ConsoleModel) setStatus(err error) {
	m.status = err.Error()
	m.statusErr = true
}

// View renders the console.
func (m ConsoleModel) View() string {
	if m.quitting || m.backToMenu {
		return ""
	}

	var b strings.Builder
	g := m.local.Game
	sess := m.local.Session

	b.WriteString(titleStyle.Render("ARCADE HOST - " + g.Title()))
	b.WriteString("\n")
	token := sess.Token()
	if token == "" {
		token = "-"
	}
	b.WriteString(statusStyle.Render(fmt.Sprintf(
		"challenge %d  session %s  host %s  last score %d  state ",
		m.local.SDK.ChallengeNumber(), shortToken(token), protocolName(m.legacy), sess.LastScore(),
	)))
	b.WriteString(renderState(m.local.SDK.State().String()))
	b.WriteString("\n\n")

	b.WriteString(boxStyle.Render(g.View()))
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(m.table.View()))
	b.WriteString("\n")

	if m.status != "" {
		if m.statusErr {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(statusStyle.Render(m.status))
		}
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// IsQuitting returns true if user requested to quit entirely.
func (m ConsoleModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m ConsoleModel) BackToMenu() bool {
	return m.backToMenu
}

// RunConsole runs the console for l until the user quits.
func RunConsole(l *host.Local, opts ConsoleOptions) error {
	opts.Embedded = false
	p := tea.NewProgram(
		NewConsoleModel(l, opts),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
