// Package tui provides the Bubble Tea host console: it runs a demo game
// in-process, forwards keys to it and shows the protocol traffic.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/arcade-sdk/internal/protocol"
)

// DefaultTickRate is the console frame rate.
const DefaultTickRate = 20

// TickMsg is sent to trigger a game simulation tick.
type TickMsg time.Time

// EventMsg carries one event the game posted to the host.
type EventMsg struct {
	Event protocol.Event
	At    time.Time
}

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int) tea.Cmd {
	if tickRate < 1 {
		tickRate = DefaultTickRate
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// waitForEvent reads the next game event. It returns nil once ctx is done so
// the command goroutine does not outlive the console.
func waitForEvent(ctx context.Context, events <-chan protocol.Event) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-events:
			return EventMsg{Event: ev, At: time.Now()}
		case <-ctx.Done():
			return nil
		}
	}
}
