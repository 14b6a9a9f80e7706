package t2048

import (
	"strings"
	"sync"
	"testing"

	"github.com/vovakirdan/arcade-sdk/internal/config"
	"github.com/vovakirdan/arcade-sdk/internal/protocol"
	"github.com/vovakirdan/arcade-sdk/internal/registry"
	"github.com/vovakirdan/arcade-sdk/sdk"
)

type events struct {
	mu  sync.Mutex
	all []protocol.Event
}

func (e *events) post(data []byte) error {
	ev, err := protocol.DecodeEvent(data)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.all = append(e.all, ev)
	return nil
}

func (e *events) last() protocol.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.all[len(e.all)-1]
}

func attached(t *testing.T, challenge int) (*Game, *sdk.SDK, *events) {
	t.Helper()
	ev := &events{}
	s := sdk.New(sdk.Options{ChallengeNumber: challenge, Environment: sdk.Environment{Hook: ev.post}})
	g := New(config.Default().Games.T2048)
	if err := g.Attach(s); err != nil {
		t.Fatalf("Attach() failed: %v", err)
	}
	return g, s, ev
}

func command(t *testing.T, s *sdk.SDK, typ protocol.CommandType, token string) {
	t.Helper()
	data, _ := protocol.EncodeCommand(protocol.Command{Type: typ, GamePlayUUID: token})
	if err := s.HandleMessage(data); err != nil {
		t.Fatalf("HandleMessage(%s) failed: %v", typ, err)
	}
}

func tiles(b Board) int {
	n := 0
	for y := range b {
		for _, v := range b[y] {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

func TestGameStartsOnPlay(t *testing.T) {
	g, s, _ := attached(t, 1)
	if g.Status().Running {
		t.Fatal("running before playGame")
	}

	command(t, s, protocol.CommandPlayGame, "p1")
	if !g.Status().Running {
		t.Fatal("not running after playGame")
	}
	if got := tiles(g.Board()); got != 2 {
		t.Fatalf("start tiles = %d, want 2", got)
	}
}

func TestGameDeterministicPerChallenge(t *testing.T) {
	a, sa, _ := attached(t, 7)
	b, sb, _ := attached(t, 7)
	command(t, sa, protocol.CommandPlayGame, "a")
	command(t, sb, protocol.CommandPlayGame, "b")

	for _, act := range []registry.Action{registry.ActionLeft, registry.ActionUp, registry.ActionRight, registry.ActionDown} {
		_ = a.Input(act)
		_ = b.Input(act)
	}
	if a.View() != b.View() {
		t.Fatalf("same challenge produced different boards:\n%s\n%s", a.View(), b.View())
	}
}

func TestGameIgnoresInputWhilePaused(t *testing.T) {
	g, s, _ := attached(t, 1)
	command(t, s, protocol.CommandPlayGame, "p1")
	command(t, s, protocol.CommandPauseGame, "")

	before := g.Board()
	for _, act := range []registry.Action{registry.ActionLeft, registry.ActionRight, registry.ActionUp} {
		if err := g.Input(act); err != nil {
			t.Fatalf("Input() failed: %v", err)
		}
	}
	after := g.Board()
	for y := range before {
		for x := range before[y] {
			if before[y][x] != after[y][x] {
				t.Fatal("paused game moved tiles")
			}
		}
	}

	command(t, s, protocol.CommandPlayGame, "p1")
	if !g.Status().Running {
		t.Fatal("resume did not restart input")
	}
}

func TestGameReportsGameOver(t *testing.T) {
	g, s, ev := attached(t, 1)
	command(t, s, protocol.CommandPlayGame, "p1")

	// Sliding left merges the 2s; the spawned tile then fills the last gap.
	g.setBoard(Board{
		{2, 2, 8, 16},
		{32, 64, 128, 256},
		{64, 128, 256, 512},
		{128, 256, 512, 1024},
	})
	g.mu.Lock()
	g.score = 100
	g.mu.Unlock()

	if err := g.Input(registry.ActionLeft); err != nil {
		t.Fatalf("Input() failed: %v", err)
	}
	st := g.Status()
	if !st.Over || st.Running {
		t.Fatalf("Status() = %+v, want over", st)
	}
	over, ok := ev.last().(protocol.GameOverEvent)
	if !ok {
		t.Fatalf("last event = %#v, want GAME_OVER", ev.last())
	}
	if over.GamePlayUUID != "p1" || over.Score != st.Score {
		t.Fatalf("GAME_OVER = %+v, status %+v", over, st)
	}
	if s.State() != sdk.StateGameOver {
		t.Fatalf("State() = %v, want GAME_OVER", s.State())
	}

	command(t, s, protocol.CommandPlayGame, "p2")
	if st := g.Status(); !st.Running || st.Over || st.Score != 0 {
		t.Fatalf("after replay Status() = %+v", st)
	}
}

func TestGameRestartReportsScore(t *testing.T) {
	g, s, ev := attached(t, 1)
	command(t, s, protocol.CommandPlayGame, "p1")
	g.mu.Lock()
	g.score = 48
	g.mu.Unlock()

	command(t, s, protocol.CommandRestartGame, "p2")
	sc, ok := ev.last().(protocol.ScoreEvent)
	if !ok || sc.Score != 48 || sc.GamePlayUUID != "p1" {
		t.Fatalf("last event = %#v, want SCORE 48 for p1", ev.last())
	}
	if g.Status().Score != 0 {
		t.Fatal("restart kept the old score")
	}
}

func TestGameView(t *testing.T) {
	g := New(config.T2048Config{Size: 2})
	g.setBoard(Board{{2, 0}, {0, 1024}})
	view := g.View()
	if !strings.Contains(view, "1024") || !strings.Contains(view, "Best tile: 1024") {
		t.Fatalf("View() = %q", view)
	}
	if !strings.Contains(view, "PAUSED") {
		t.Fatalf("View() of idle game should read PAUSED: %q", view)
	}
}

func TestRegistered(t *testing.T) {
	if !registry.Exists(ID) {
		t.Fatal("2048 not registered")
	}
}
