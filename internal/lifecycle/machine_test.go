package lifecycle

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/vovakirdan/arcade-sdk/internal/protocol"
	"github.com/vovakirdan/arcade-sdk/internal/rng"
	"github.com/vovakirdan/arcade-sdk/internal/score"
)

type recorder struct {
	mu     sync.Mutex
	events []protocol.Event
}

func (r *recorder) Post(e protocol.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) all() []protocol.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]protocol.Event(nil), r.events...)
}

func (r *recorder) last() protocol.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

// fakeGame records which callback ran last.
type fakeGame struct {
	calls []string
	score float64
}

func (g *fakeGame) callbacks(restart bool) Callbacks {
	cb := Callbacks{
		StartGame:  func() { g.calls = append(g.calls, "startGame") },
		ResumeGame: func() { g.calls = append(g.calls, "resumeGame") },
		PauseGame:  func() { g.calls = append(g.calls, "pauseGame") },
		GetScore:   func() float64 { return g.score },
	}
	if restart {
		cb.RestartGame = func() { g.calls = append(g.calls, "restartGame") }
	}
	return cb
}

func (g *fakeGame) lastCall() string {
	if len(g.calls) == 0 {
		return ""
	}
	return g.calls[len(g.calls)-1]
}

func commandOf(tag, token string) protocol.Command {
	return protocol.Command{Type: protocol.CommandType(tag), GamePlayUUID: token}
}

func newInitialized(t *testing.T, restart bool) (*Machine, *fakeGame, *recorder) {
	t.Helper()
	rec := &recorder{}
	g := &fakeGame{}
	m := NewMachine(1, rec, nil)
	if err := m.Send(InitInput("test", g.callbacks(restart))); err != nil {
		t.Fatalf("Send(init) failed: %v", err)
	}
	if m.State() != StatePaused {
		t.Fatalf("State() = %v after init, want %v", m.State(), StatePaused)
	}
	return m, g, rec
}

const gameOverStep = "GAME_OVER"

func TestMachineCallbackScenarios(t *testing.T) {
	type step struct {
		command string
		want    string
	}
	tests := []struct {
		name    string
		restart bool
		steps   []step
	}{
		{"pause and play again", true, []step{
			{"playGame", "startGame"}, {"pauseGame", "pauseGame"}, {"playGame", "resumeGame"},
		}},
		{"restart", true, []step{
			{"playGame", "startGame"}, {"restartGame", "restartGame"},
		}},
		{"lose and play again", true, []step{
			{"playGame", "startGame"}, {gameOverStep, "startGame"}, {"playGame", "restartGame"},
		}},
		{"lose, play again, pause, resume", true, []step{
			{"playGame", "startGame"}, {gameOverStep, "startGame"}, {"playGame", "restartGame"},
			{"pauseGame", "pauseGame"}, {"playGame", "resumeGame"},
		}},
		{"legacy host pause and resume", true, []step{
			{"_startGame", "startGame"}, {"_pauseGame", "pauseGame"}, {"_resumeGame", "resumeGame"},
		}},
		{"legacy host restart", true, []step{
			{"_startGame", "startGame"}, {"_startGame", "restartGame"},
		}},
		{"legacy host lose and play again", true, []step{
			{"_startGame", "startGame"}, {gameOverStep, "startGame"}, {"_startGame", "restartGame"},
			{"_pauseGame", "pauseGame"}, {"_resumeGame", "resumeGame"},
		}},
		{"legacy game, legacy host restart", false, []step{
			{"_startGame", "startGame"}, {"_startGame", "startGame"},
		}},
		{"legacy game, legacy host lose and play again", false, []step{
			{"_startGame", "startGame"}, {gameOverStep, "startGame"}, {"_startGame", "startGame"},
			{"_pauseGame", "pauseGame"}, {"_resumeGame", "resumeGame"},
		}},
		{"legacy game, new host pause and play", false, []step{
			{"playGame", "startGame"}, {"pauseGame", "pauseGame"}, {"playGame", "resumeGame"},
		}},
		{"legacy game, new host restart", false, []step{
			{"playGame", "startGame"}, {"restartGame", "startGame"},
		}},
		{"legacy game, new host lose and play again", false, []step{
			{"playGame", "startGame"}, {gameOverStep, "startGame"}, {"playGame", "startGame"},
			{"pauseGame", "pauseGame"}, {"playGame", "resumeGame"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, g, _ := newInitialized(t, tt.restart)
			for i, s := range tt.steps {
				var err error
				if s.command == gameOverStep {
					err = m.Send(Input{Kind: InputGameOver})
				} else {
					err = m.Send(FromCommand(commandOf(s.command, "tok")))
				}
				if err != nil {
					t.Fatalf("step %d (%s) failed: %v", i, s.command, err)
				}
				if got := g.lastCall(); got != s.want {
					t.Fatalf("step %d (%s): last callback = %q, want %q", i, s.command, got, s.want)
				}
			}
			if m.State() == StateError {
				t.Fatal("machine entered ERROR")
			}
		})
	}
}

func TestMachineNeverRestartsOnResume(t *testing.T) {
	m, g, _ := newInitialized(t, true)
	for _, c := range []string{"playGame", "pauseGame", "playGame"} {
		if err := m.Send(FromCommand(commandOf(c, "tok"))); err != nil {
			t.Fatalf("Send(%s) failed: %v", c, err)
		}
	}
	want := []string{"startGame", "pauseGame", "resumeGame"}
	if !reflect.DeepEqual(g.calls, want) {
		t.Fatalf("calls = %v, want %v", g.calls, want)
	}
}

func TestMachineEvents(t *testing.T) {
	m, g, rec := newInitialized(t, true)

	if ev, ok := rec.last().(protocol.InitEvent); !ok || ev.Version != "test" {
		t.Fatalf("first event = %#v, want INIT", rec.last())
	}

	if err := m.Send(FromCommand(commandOf("playGame", "first"))); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	g.score = 10
	if err := m.Send(FromCommand(commandOf("requestScore", ""))); err != nil {
		t.Fatalf("requestScore failed: %v", err)
	}
	want := protocol.ScoreEvent{GamePlayUUID: "first", Score: 10, ChallengeNumber: 1}
	if rec.last() != protocol.Event(want) {
		t.Fatalf("last event = %#v, want %#v", rec.last(), want)
	}

	g.score = 20
	if err := m.Send(FromCommand(commandOf("restartGame", "second"))); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	want = protocol.ScoreEvent{GamePlayUUID: "first", Score: 20, ChallengeNumber: 1}
	if rec.last() != protocol.Event(want) {
		t.Fatalf("restart SCORE = %#v, want %#v (previous session)", rec.last(), want)
	}

	g.score = 30
	if err := m.Send(Input{Kind: InputGameOver}); err != nil {
		t.Fatalf("game over failed: %v", err)
	}
	over := protocol.GameOverEvent{GamePlayUUID: "second", Score: 30, ChallengeNumber: 1}
	if rec.last() != protocol.Event(over) {
		t.Fatalf("last event = %#v, want %#v", rec.last(), over)
	}
	if m.State() != StateGameOver {
		t.Fatalf("State() = %v, want %v", m.State(), StateGameOver)
	}
}

func TestMachineWarningOnDuplicatePlay(t *testing.T) {
	m, _, rec := newInitialized(t, true)
	_ = m.Send(FromCommand(commandOf("playGame", "tok")))
	n := len(rec.all())

	if err := m.Send(FromCommand(commandOf("playGame", "tok"))); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	events := rec.all()
	if len(events) != n+1 {
		t.Fatalf("got %d new events, want 1", len(events)-n)
	}
	want := protocol.WarningEvent{GamePlayUUID: "tok", Msg: "Received onAppPlay while in INIT.PLAYING"}
	if events[n] != protocol.Event(want) {
		t.Fatalf("event = %#v, want %#v", events[n], want)
	}
	if m.State() != StatePlaying {
		t.Fatalf("State() = %v, want %v", m.State(), StatePlaying)
	}
}

func TestMachineUnknownCommandThenInert(t *testing.T) {
	m, g, rec := newInitialized(t, true)
	_ = m.Send(FromCommand(commandOf("playGame", "tok")))

	cmd, err := protocol.DecodeCommand([]byte(`{"runeGameCommand":{"type":"dance"}}`))
	var unknown *protocol.UnknownCommandError
	if !errors.As(err, &unknown) {
		t.Fatalf("DecodeCommand error = %v, want UnknownCommandError", err)
	}
	if err := m.Send(FromCommand(cmd)); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if m.State() != StateError {
		t.Fatalf("State() = %v, want ERROR", m.State())
	}
	want := protocol.ErrEvent{GamePlayUUID: "tok", ErrMsg: "Received incorrect message: dance"}
	if rec.last() != protocol.Event(want) {
		t.Fatalf("last event = %#v, want %#v", rec.last(), want)
	}

	n, calls := len(rec.all()), len(g.calls)
	for _, c := range []string{"pauseGame", "playGame", "restartGame", "requestScore", "_startGame"} {
		_ = m.Send(FromCommand(commandOf(c, "x")))
	}
	_ = m.Send(Input{Kind: InputGameOver})
	if len(rec.all()) != n || len(g.calls) != calls {
		t.Fatal("machine reacted after entering ERROR")
	}
}

func TestMachineGameOverWhilePausedIsFatal(t *testing.T) {
	m, _, rec := newInitialized(t, true)
	_ = m.Send(Input{Kind: InputGameOver})

	if m.State() != StateError {
		t.Fatalf("State() = %v, want ERROR", m.State())
	}
	want := protocol.ErrEvent{GamePlayUUID: UnsetSessionID, ErrMsg: "Fatal issue: Received onGameOver while in INIT.PAUSED"}
	if rec.last() != protocol.Event(want) {
		t.Fatalf("last event = %#v, want %#v", rec.last(), want)
	}
}

func TestMachineInvalidScore(t *testing.T) {
	m, g, rec := newInitialized(t, true)
	_ = m.Send(FromCommand(commandOf("playGame", "tok")))
	n := len(rec.all())

	g.score = 1.5
	err := m.Send(Input{Kind: InputGameOver})
	if !errors.Is(err, score.ErrInvalidScore) {
		t.Fatalf("Send(gameOver) error = %v, want ErrInvalidScore", err)
	}
	if len(rec.all()) != n {
		t.Fatal("invalid score was posted")
	}
}

func TestMachinePanickingCallbackKeepsDispatching(t *testing.T) {
	rec := &recorder{}
	g := &fakeGame{}
	cb := g.callbacks(true)
	panicked := false
	cb.StartGame = func() {
		if !panicked {
			panicked = true
			panic("boom")
		}
		g.calls = append(g.calls, "startGame")
	}
	m := NewMachine(1, rec, nil)
	if err := m.Send(InitInput("test", cb)); err != nil {
		t.Fatalf("Send(init) failed: %v", err)
	}

	if err := m.Send(FromCommand(commandOf("playGame", "tok"))); err == nil {
		t.Fatal("Send(play) with a panicking callback returned nil")
	}
	if m.State() != StatePlaying {
		t.Fatalf("State() = %v, want %v", m.State(), StatePlaying)
	}

	if err := m.Send(Input{Kind: InputPause}); err != nil {
		t.Fatalf("Send(pause) failed: %v", err)
	}
	if m.State() != StatePaused || g.lastCall() != "pauseGame" {
		t.Fatalf("State() = %v, last call %q; want pause handled", m.State(), g.lastCall())
	}
}

func TestMachineRandomReseeds(t *testing.T) {
	m, _, _ := newInitialized(t, true)
	_ = m.Send(FromCommand(commandOf("playGame", "a")))

	first := []float64{m.Random(), m.Random(), m.Random()}
	_ = m.Send(Input{Kind: InputGameOver})
	_ = m.Send(FromCommand(commandOf("playGame", "b")))
	again := []float64{m.Random(), m.Random(), m.Random()}

	if !reflect.DeepEqual(first, again) {
		t.Fatalf("sequence after replay = %v, want fresh reseed %v", again, first)
	}

	if m.Context().RNG == rng.Seed(1) {
		t.Fatal("generator state not advanced by draws")
	}
}

func TestMachineResumeKeepsSequence(t *testing.T) {
	m, _, _ := newInitialized(t, true)
	_ = m.Send(FromCommand(commandOf("playGame", "a")))
	a := m.Random()
	_ = m.Send(FromCommand(commandOf("pauseGame", "")))
	_ = m.Send(FromCommand(commandOf("playGame", "a")))
	b := m.Random()

	g := rng.New(1)
	if want := []float64{g.Float64(), g.Float64()}; a != want[0] || b != want[1] {
		t.Fatalf("sequence = [%v %v], want %v", a, b, want)
	}
}

func TestMachineReentrantSendIsQueued(t *testing.T) {
	rec := &recorder{}
	m := NewMachine(1, rec, nil)

	var order []string
	cb := Callbacks{
		StartGame: func() {
			order = append(order, "start")
			// The game ends immediately; this must run after start returns.
			if err := m.Send(Input{Kind: InputGameOver}); err != nil {
				t.Errorf("nested Send failed: %v", err)
			}
			order = append(order, "start returned")
		},
		ResumeGame: func() {},
		PauseGame:  func() {},
		GetScore:   func() float64 { return 7 },
	}
	_ = m.Send(InitInput("test", cb))
	if err := m.Send(FromCommand(commandOf("playGame", "tok"))); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if want := []string{"start", "start returned"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	if m.State() != StateGameOver {
		t.Fatalf("State() = %v, want %v", m.State(), StateGameOver)
	}
	want := protocol.GameOverEvent{GamePlayUUID: "tok", Score: 7, ChallengeNumber: 1}
	if rec.last() != protocol.Event(want) {
		t.Fatalf("last event = %#v, want %#v", rec.last(), want)
	}
}

func TestMachineConcurrentSends(t *testing.T) {
	m, _, rec := newInitialized(t, true)
	_ = m.Send(FromCommand(commandOf("playGame", "tok")))

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Send(FromCommand(commandOf("requestScore", "")))
		}()
	}
	wg.Wait()

	scores := 0
	for _, e := range rec.all() {
		if _, ok := e.(protocol.ScoreEvent); ok {
			scores++
		}
	}
	if scores != 50 {
		t.Fatalf("got %d SCORE events, want 50", scores)
	}
}

func TestNewMachineDefaultsChallenge(t *testing.T) {
	for _, c := range []int{0, -4} {
		if got := NewMachine(c, nil, nil).Context().ChallengeNumber; got != 1 {
			t.Errorf("NewMachine(%d) challenge = %d, want 1", c, got)
		}
	}
	if got := NewMachine(9, nil, nil).Context().ChallengeNumber; got != 9 {
		t.Errorf("challenge = %d, want 9", got)
	}
}
