// Package lifecycle implements the game session state machine.
//
// Transition is a pure function from (state, context, input) to the next
// state, context and an ordered list of effects. Machine owns a session,
// serializes inputs and executes the effects: game callbacks, score reads and
// outbound events.
package lifecycle

import (
	"github.com/vovakirdan/arcade-sdk/internal/protocol"
	"github.com/vovakirdan/arcade-sdk/internal/rng"
)

// UnsetSessionID is the play session identifier before any play attempt.
const UnsetSessionID = "UNSET"

// State is a lifecycle phase. Paused, Playing and GameOver are substates of INIT.
type State int

const (
	StateLoading State = iota
	StatePaused
	StatePlaying
	StateGameOver
	StateError
)

// String returns the hierarchical state path used in diagnostics.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "LOADING"
	case StatePaused:
		return "INIT.PAUSED"
	case StatePlaying:
		return "INIT.PLAYING"
	case StateGameOver:
		return "INIT.GAME_OVER"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Initialized reports whether s is inside the INIT composite state.
func (s State) Initialized() bool {
	return s == StatePaused || s == StatePlaying || s == StateGameOver
}

// Policy decides which callback starts a new play attempt. It is resolved
// once when the game initializes.
type Policy int

const (
	// PolicyLegacyStart is used by games without a restart callback: the
	// start callback doubles as restart.
	PolicyLegacyStart Policy = iota
	// PolicyDedicatedRestart is used by games that registered RestartGame.
	PolicyDedicatedRestart
)

func (p Policy) String() string {
	if p == PolicyDedicatedRestart {
		return "dedicated-restart"
	}
	return "legacy-start"
}

// Context is the mutable session record. It is comparable so the machine
// can tell whether an input changed anything.
type Context struct {
	PlaySessionID     string
	ChallengeNumber   int
	RNG               rng.State
	LegacyGameStarted bool
	Policy            Policy
}

// NewContext returns the context of a fresh session.
func NewContext(challenge int) Context {
	return Context{
		PlaySessionID:   UnsetSessionID,
		ChallengeNumber: challenge,
		RNG:             rng.Seed(challenge),
	}
}

// InputKind identifies what arrived at the machine.
type InputKind int

const (
	InputInit InputKind = iota
	InputGameOver
	InputPlay
	InputPause
	InputRestart
	InputRequestScore
	InputLegacyStart
	InputUnknown
)

// String names the input the way diagnostics report it.
func (k InputKind) String() string {
	switch k {
	case InputInit:
		return "onGameInit"
	case InputGameOver:
		return "onGameOver"
	case InputPlay:
		return "onAppPlay"
	case InputPause:
		return "onAppPause"
	case InputRestart:
		return "onAppRestart"
	case InputRequestScore:
		return "onAppRequestScore"
	case InputLegacyStart:
		return "onAppStart (legacy)"
	default:
		return "onUnknownCommand"
	}
}

// Callbacks are the game functions the machine invokes.
type Callbacks struct {
	StartGame   func()
	ResumeGame  func()
	PauseGame   func()
	RestartGame func() // optional
	GetScore    func() float64
}

// Policy resolves which restart behavior the callbacks support.
func (c Callbacks) Policy() Policy {
	if c.RestartGame != nil {
		return PolicyDedicatedRestart
	}
	return PolicyLegacyStart
}

// Input is one item processed by the machine: a host command or a game signal.
type Input struct {
	Kind  InputKind
	Token string // play session token; empty for legacy hosts
	Tag   string // raw tag of an unrecognized command

	// Init only.
	Version   string
	Callbacks *Callbacks
}

// FromCommand maps a decoded host command to a machine input.
func FromCommand(cmd protocol.Command) Input {
	switch cmd.Type {
	case protocol.CommandPlayGame, protocol.CommandLegacyResumeGame:
		return Input{Kind: InputPlay, Token: cmd.GamePlayUUID}
	case protocol.CommandPauseGame, protocol.CommandLegacyPauseGame:
		return Input{Kind: InputPause}
	case protocol.CommandRestartGame:
		return Input{Kind: InputRestart, Token: cmd.GamePlayUUID}
	case protocol.CommandRequestScore, protocol.CommandLegacyRequestScore:
		return Input{Kind: InputRequestScore}
	case protocol.CommandLegacyStartGame:
		return Input{Kind: InputLegacyStart}
	default:
		return Input{Kind: InputUnknown, Tag: string(cmd.Type)}
	}
}

// InitInput builds the input sent when the game calls init.
func InitInput(version string, cb Callbacks) Input {
	return Input{Kind: InputInit, Version: version, Callbacks: &cb}
}

// Callback names a game callback.
type Callback int

const (
	CallbackStart Callback = iota
	CallbackResume
	CallbackPause
	CallbackRestart
)

func (c Callback) String() string {
	switch c {
	case CallbackStart:
		return "startGame"
	case CallbackResume:
		return "resumeGame"
	case CallbackPause:
		return "pauseGame"
	case CallbackRestart:
		return "restartGame"
	default:
		return "unknown"
	}
}

// Effect is a side effect requested by a transition.
type Effect interface {
	effect()
}

// CallGame invokes a game callback.
type CallGame struct {
	Callback Callback
}

// EmitInit posts INIT.
type EmitInit struct {
	Version string
}

// EmitScore reads and validates the game's score, then posts SCORE or, when
// Final is set, GAME_OVER. Token is captured when the transition is computed.
type EmitScore struct {
	Token string
	Final bool
}

// EmitErr posts ERR.
type EmitErr struct {
	Token string
	Msg   string
}

// EmitWarning posts WARNING.
type EmitWarning struct {
	Token string
	Msg   string
}

func (CallGame) effect()    {}
func (EmitInit) effect()    {}
func (EmitScore) effect()   {}
func (EmitErr) effect()     {}
func (EmitWarning) effect() {}

// Result is the outcome of Transition.
type Result struct {
	State   State
	Context Context
	Effects []Effect

	// Unhandled is set when the input changed nothing and a warning was produced.
	Unhandled bool
}
