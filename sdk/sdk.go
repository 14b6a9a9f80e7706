// Package sdk is the game-facing API of the arcade lifecycle protocol.
//
// A game creates one SDK per embedding, calls Init once with its lifecycle
// callbacks and GameOver whenever a play session ends. The host drives the
// session by sending commands, which are delivered through HandleMessage or
// Listen. DeterministicRandom gives every player of a challenge the same
// sequence of numbers.
package sdk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/arcade-sdk/internal/bridge"
	"github.com/vovakirdan/arcade-sdk/internal/config"
	"github.com/vovakirdan/arcade-sdk/internal/lifecycle"
	"github.com/vovakirdan/arcade-sdk/internal/protocol"
	"github.com/vovakirdan/arcade-sdk/internal/score"
)

// Version is reported to the host in INIT.
const Version = "1.3.0"

var (
	// ErrAlreadyInitialized is returned by a second call to Init.
	ErrAlreadyInitialized = errors.New("sdk: Init should only be called once")
	// ErrNotInitialized is returned by GameOver before Init.
	ErrNotInitialized = errors.New("sdk: GameOver called before Init")
)

// CallbackError reports a required callback missing from Init.
type CallbackError struct {
	Name string
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("sdk: invalid %s function provided to Init", e.Name)
}

// Host channel types, re-exported for games outside this module.
type (
	Environment = bridge.Environment
	Transport   = bridge.Transport
	Source      = bridge.Source
	PostFunc    = bridge.PostFunc
	Mode        = bridge.Mode
	State       = lifecycle.State
	Policy      = lifecycle.Policy
)

const (
	ModeHook   = bridge.ModeHook
	ModeNative = bridge.ModeNative
	ModeParent = bridge.ModeParent
	ModeDev    = bridge.ModeDev
)

const (
	StateLoading  = lifecycle.StateLoading
	StatePaused   = lifecycle.StatePaused
	StatePlaying  = lifecycle.StatePlaying
	StateGameOver = lifecycle.StateGameOver
	StateError    = lifecycle.StateError
)

// Callbacks are the functions a game provides to Init. RestartGame is
// optional; without it StartGame also restarts.
type Callbacks struct {
	StartGame   func()
	ResumeGame  func()
	PauseGame   func()
	RestartGame func()
	GetScore    func() float64
}

// Options configure an SDK.
type Options struct {
	// ChallengeNumber seeds DeterministicRandom. Zero reads
	// ARCADE_CHALLENGE_NUMBER; values below one select challenge 1.
	ChallengeNumber int
	// Environment lists the host channels. With none set the SDK runs in
	// development mode and simulates a host.
	Environment Environment
	// DevDelay is how long the simulated host waits before starting a game.
	DevDelay time.Duration
	Logger   *log.Logger
}

// SDK is one game's connection to its host.
type SDK struct {
	logger  *log.Logger
	mode    bridge.Mode
	dev     *bridge.DevTransport
	bridge  *bridge.Bridge
	machine *lifecycle.Machine

	mu          sync.Mutex
	initialized bool
	score       func() float64
	gameOver    func() error
	replaced    bool
}

// New creates an SDK and resolves its host transport.
func New(opts Options) *SDK {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	challenge := opts.ChallengeNumber
	if challenge == 0 {
		challenge = config.ChallengeFromEnv()
	}

	s := &SDK{logger: logger}
	transport, mode := opts.Environment.Resolve()
	s.mode = mode
	if mode == bridge.ModeDev {
		s.dev = bridge.NewDevTransport(logger, opts.DevDelay)
		transport = s.dev
	}
	s.bridge = bridge.New(transport, bridge.HandlerFunc(s.handleCommand), logger)
	if s.dev != nil {
		s.dev.Attach(s.bridge.HandleMessage)
	}
	s.machine = lifecycle.NewMachine(challenge, s.bridge, logger)
	logger.Debug("sdk created", "mode", mode, "challenge", s.machine.Context().ChallengeNumber)
	return s
}

// Init registers the game's callbacks and reports INIT to the host. It fails
// on a second call, when a required callback is missing or when the current
// score is invalid.
func (s *SDK) Init(cb Callbacks) error {
	s.mu.Lock()
	done := s.initialized
	s.mu.Unlock()
	if done {
		return ErrAlreadyInitialized
	}
	if err := validateCallbacks(cb); err != nil {
		return err
	}
	if err := score.Validate(cb.GetScore()); err != nil {
		return fmt.Errorf("sdk: init: %w", err)
	}

	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return ErrAlreadyInitialized
	}
	s.initialized = true
	s.score = cb.GetScore
	if s.mode == bridge.ModeDev && !s.replaced {
		s.gameOver = s.devGameOver
	}
	s.mu.Unlock()

	err := s.machine.Send(lifecycle.InitInput(Version, lifecycle.Callbacks{
		StartGame:   cb.StartGame,
		ResumeGame:  cb.ResumeGame,
		PauseGame:   cb.PauseGame,
		RestartGame: cb.RestartGame,
		GetScore:    cb.GetScore,
	}))
	if err != nil {
		return fmt.Errorf("sdk: init: %w", err)
	}
	if s.dev != nil {
		s.dev.StartNewGame()
	}
	return nil
}

func validateCallbacks(cb Callbacks) error {
	switch {
	case cb.StartGame == nil:
		return &CallbackError{Name: "StartGame"}
	case cb.ResumeGame == nil:
		return &CallbackError{Name: "ResumeGame"}
	case cb.PauseGame == nil:
		return &CallbackError{Name: "PauseGame"}
	case cb.GetScore == nil:
		return &CallbackError{Name: "GetScore"}
	}
	return nil
}

// GameOver ends the current play session and reports the final score.
// A hook installed with SetGameOver runs instead.
func (s *SDK) GameOver() error {
	s.mu.Lock()
	hook := s.gameOver
	s.mu.Unlock()
	if hook != nil {
		return hook()
	}
	return s.endGame()
}

// SetGameOver replaces what GameOver does. The replacement survives Init.
// Passing nil restores the default, which in development mode keeps the
// simulated host restarting the game.
func (s *SDK) SetGameOver(f func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameOver = f
	s.replaced = f != nil
	if f == nil && s.mode == bridge.ModeDev && s.initialized {
		s.gameOver = s.devGameOver
	}
}

func (s *SDK) endGame() error {
	s.mu.Lock()
	initialized, getScore := s.initialized, s.score
	s.mu.Unlock()
	if !initialized {
		return ErrNotInitialized
	}
	if err := score.Validate(getScore()); err != nil {
		return fmt.Errorf("sdk: game over: %w", err)
	}
	if err := s.machine.Send(lifecycle.Input{Kind: lifecycle.InputGameOver}); err != nil {
		return fmt.Errorf("sdk: game over: %w", err)
	}
	return nil
}

// devGameOver ends the session and has the simulated host start another.
func (s *SDK) devGameOver() error {
	if err := s.endGame(); err != nil {
		return err
	}
	s.dev.StartNewGame()
	return nil
}

// ChallengeNumber returns the challenge this session plays.
func (s *SDK) ChallengeNumber() int {
	return s.machine.Context().ChallengeNumber
}

// DeterministicRandom returns the next number in [0, 1) of the challenge
// sequence. The sequence restarts with every new play attempt and carries on
// across pause and resume.
func (s *SDK) DeterministicRandom() float64 {
	return s.machine.Random()
}

// HandleMessage processes one raw message from the host. Messages that are
// not protocol commands are ignored.
func (s *SDK) HandleMessage(data []byte) error {
	return s.bridge.HandleMessage(data)
}

// Listen processes host messages from src until ctx is done or src closes.
func (s *SDK) Listen(ctx context.Context, src Source) error {
	return s.bridge.Listen(ctx, src)
}

// State returns the lifecycle state.
func (s *SDK) State() State {
	return s.machine.State()
}

// Policy reports how the SDK restarts the game. It is meaningful after Init.
func (s *SDK) Policy() Policy {
	return s.machine.Context().Policy
}

// Mode reports which host channel the SDK uses.
func (s *SDK) Mode() Mode {
	return s.mode
}

// Close stops the simulated host, if any.
func (s *SDK) Close() error {
	if s.dev != nil {
		return s.dev.Close()
	}
	return nil
}

func (s *SDK) handleCommand(cmd protocol.Command) error {
	return s.machine.Send(lifecycle.FromCommand(cmd))
}
