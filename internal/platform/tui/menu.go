package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/arcade-sdk/internal/registry"
)

// MenuModel is the Bubble Tea model for the game picker menu.
type MenuModel struct {
	items          []registry.GameInfo
	cursor         int
	width          int
	height         int
	keys           MenuKeyMap
	help           help.Model
	quitting       bool
	selected       *registry.GameInfo
	openScoreboard bool
	legacy         bool
}

// NewMenuModel creates a new menu model.
func NewMenuModel(width, height int) MenuModel {
	return MenuModel{
		items:  registry.List(),
		width:  width,
		height: height,
		keys:   DefaultMenuKeyMap(),
		help:   help.New(),
	}
}

// WithLegacy preselects the host protocol the chosen game is driven with.
func (m MenuModel) WithLegacy(on bool) MenuModel {
	m.legacy = on
	return m
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Select):
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
			return m, tea.Quit
		}

	case key.Matches(msg, m.keys.Scores):
		m.openScoreboard = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Legacy):
		m.legacy = !m.legacy
	}
	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("  A R C A D E   H O S T  "), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Select a game to host", m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		line := fmt.Sprintf("  %s (%s)", item.Title, item.ID)
		if i == m.cursor {
			line = selectedStyle.Render(fmt.Sprintf("> %s (%s)", item.Title, item.ID))
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText(statusStyle.Render("Host protocol: "+protocolName(m.legacy)), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(helpStyle.Render(m.help.View(m.keys)), m.width))
	b.WriteString("\n")
	return b.String()
}

// Selected returns the selected game, or nil if none selected.
func (m MenuModel) Selected() *registry.GameInfo {
	return m.selected
}

// Legacy reports whether the game should be driven with legacy host commands.
func (m MenuModel) Legacy() bool {
	return m.legacy
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsScoreboard returns true if user requested scoreboard.
func (m MenuModel) WantsScoreboard() bool {
	return m.openScoreboard
}

// MenuResult holds the result of running the menu.
type MenuResult struct {
	GameID          string
	Legacy          bool
	WantsScoreboard bool
	Quit            bool
}

// RunMenu runs the menu and returns the selection result. legacy is the
// initial host protocol choice.
func RunMenu(width, height int, legacy bool) (MenuResult, error) {
	p := tea.NewProgram(
		NewMenuModel(width, height).WithLegacy(legacy),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return MenuResult{}, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok {
		return MenuResult{Quit: true}, nil
	}

	switch {
	case m.WantsScoreboard():
		return MenuResult{WantsScoreboard: true, Legacy: m.Legacy()}, nil
	case m.Selected() != nil:
		return MenuResult{GameID: m.Selected().ID, Legacy: m.Legacy()}, nil
	default:
		return MenuResult{Quit: true}, nil
	}
}
