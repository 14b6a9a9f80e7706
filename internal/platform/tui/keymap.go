package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/arcade-sdk/internal/registry"
)

// ConsoleKeyMap defines the host console bindings. Game keys are forwarded
// to the game; host keys send protocol commands.
type ConsoleKeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Tap   key.Binding

	Play    key.Binding
	Pause   key.Binding
	Restart key.Binding
	Score   key.Binding
	Legacy  key.Binding

	Help key.Binding
	Back key.Binding
	Quit key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ConsoleKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Pause, k.Restart, k.Score, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ConsoleKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Tap},
		{k.Play, k.Pause, k.Restart, k.Score, k.Legacy},
		{k.Help, k.Back, k.Quit},
	}
}

// DefaultConsoleKeyMap returns default key bindings.
func DefaultConsoleKeyMap() ConsoleKeyMap {
	return ConsoleKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("left/h", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("right/l", "right"),
		),
		Tap: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "tap"),
		),
		Play: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "play"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		Score: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "request score"),
		),
		Legacy: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "toggle legacy host"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Action maps a key to a game action. It returns ActionNone for host keys.
func (k ConsoleKeyMap) Action(msg tea.KeyMsg) registry.Action {
	switch {
	case key.Matches(msg, k.Up):
		return registry.ActionUp
	case key.Matches(msg, k.Down):
		return registry.ActionDown
	case key.Matches(msg, k.Left):
		return registry.ActionLeft
	case key.Matches(msg, k.Right):
		return registry.ActionRight
	case key.Matches(msg, k.Tap):
		return registry.ActionPrimary
	}
	return registry.ActionNone
}

// MenuKeyMap defines the game picker bindings.
type MenuKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Scores key.Binding
	Legacy key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k MenuKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Scores, k.Legacy, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k MenuKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// DefaultMenuKeyMap returns default key bindings.
func DefaultMenuKeyMap() MenuKeyMap {
	return MenuKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k", "w"),
			key.WithHelp("up/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "s"),
			key.WithHelp("down/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select"),
		),
		Scores: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "scores"),
		),
		Legacy: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "host protocol"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
