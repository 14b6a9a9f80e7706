package lifecycle

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/arcade-sdk/internal/protocol"
	"github.com/vovakirdan/arcade-sdk/internal/score"
)

// Poster delivers outbound events to the host.
type Poster interface {
	Post(protocol.Event) error
}

// Machine runs one game session. It is safe for concurrent use: inputs from
// any goroutine join a FIFO queue drained by a single goroutine at a time.
// Inputs sent from inside a callback are queued and handled right after the
// current one.
type Machine struct {
	poster Poster
	logger *log.Logger

	mu          sync.Mutex
	state       State
	ctx         Context
	callbacks   Callbacks
	pending     []Input
	dispatching bool
}

// NewMachine creates a machine in LOADING. A challenge of zero or less
// selects challenge 1.
func NewMachine(challenge int, poster Poster, logger *log.Logger) *Machine {
	if challenge <= 0 {
		challenge = 1
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Machine{
		poster: poster,
		logger: logger,
		state:  StateLoading,
		ctx:    NewContext(challenge),
	}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Context returns a copy of the session context.
func (m *Machine) Context() Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ctx
}

// Random draws the next value of the session generator.
func (m *Machine) Random() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, next := m.ctx.RNG.Next()
	m.ctx.RNG = next
	return v
}

// Send queues an input and, unless another goroutine is already draining,
// processes the queue. It returns the first effect error met while draining;
// later inputs are still processed.
func (m *Machine) Send(in Input) error {
	m.mu.Lock()
	m.pending = append(m.pending, in)
	if m.dispatching {
		m.mu.Unlock()
		return nil
	}
	m.dispatching = true
	m.mu.Unlock()

	var first error
	for {
		m.mu.Lock()
		if len(m.pending) == 0 {
			m.dispatching = false
			m.mu.Unlock()
			return first
		}
		next := m.pending[0]
		m.pending = m.pending[1:]
		from, ctx := m.state, m.ctx
		res := Transition(from, ctx, next)
		m.state, m.ctx = res.State, res.Context
		if next.Kind == InputInit && from == StateLoading && res.State == StatePaused && next.Callbacks != nil {
			m.callbacks = *next.Callbacks
		}
		cb := m.callbacks
		m.mu.Unlock()

		if res.State != from {
			m.logger.Debug("transition", "input", next.Kind, "from", from, "to", res.State)
		}
		if err := m.run(res, cb); err != nil && first == nil {
			first = err
		}
	}
}

// run executes effects in order and stops at the first failure. The state
// change is already committed. A panicking callback or poster becomes the
// returned error so the queue keeps draining.
func (m *Machine) run(res Result, cb Callbacks) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("effect panicked", "panic", r)
			err = fmt.Errorf("lifecycle: effect panicked: %v", r)
		}
	}()

	for _, e := range res.Effects {
		var err error
		switch e := e.(type) {
		case CallGame:
			err = invoke(cb, e.Callback)
		case EmitInit:
			m.post(protocol.InitEvent{Version: e.Version})
		case EmitScore:
			err = m.postScore(cb, e, res.Context.ChallengeNumber)
		case EmitErr:
			m.logger.Error("protocol error", "msg", e.Msg)
			m.post(protocol.ErrEvent{GamePlayUUID: e.Token, ErrMsg: e.Msg})
		case EmitWarning:
			m.logger.Warn("unhandled command", "msg", e.Msg)
			m.post(protocol.WarningEvent{GamePlayUUID: e.Token, Msg: e.Msg})
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) postScore(cb Callbacks, e EmitScore, challenge int) error {
	if cb.GetScore == nil {
		return fmt.Errorf("lifecycle: no score callback")
	}
	s, err := score.Int(cb.GetScore())
	if err != nil {
		return fmt.Errorf("lifecycle: cannot report score: %w", err)
	}
	if e.Final {
		m.post(protocol.GameOverEvent{GamePlayUUID: e.Token, Score: s, ChallengeNumber: challenge})
	} else {
		m.post(protocol.ScoreEvent{GamePlayUUID: e.Token, Score: s, ChallengeNumber: challenge})
	}
	return nil
}

func (m *Machine) post(ev protocol.Event) {
	if m.poster == nil {
		return
	}
	if err := m.poster.Post(ev); err != nil {
		m.logger.Warn("cannot post event", "type", ev.Type(), "error", err)
	}
}

func invoke(cb Callbacks, c Callback) error {
	var f func()
	switch c {
	case CallbackStart:
		f = cb.StartGame
	case CallbackResume:
		f = cb.ResumeGame
	case CallbackPause:
		f = cb.PauseGame
	case CallbackRestart:
		f = cb.RestartGame
	}
	if f == nil {
		return fmt.Errorf("lifecycle: %s callback is not registered", c)
	}
	f()
	return nil
}
