package lifecycle

import (
	"fmt"

	"github.com/vovakirdan/arcade-sdk/internal/protocol"
	"github.com/vovakirdan/arcade-sdk/internal/rng"
)

// Transition computes the next state, context and effects for an input.
// It has no side effects. ERROR is terminal: every input there yields the
// unchanged state and no effects.
//
// When an input leaves state and context unchanged and requests nothing, the
// result carries a single WARNING effect and Unhandled is set.
func Transition(s State, ctx Context, in Input) Result {
	if s == StateError {
		return Result{State: s, Context: ctx}
	}

	t := &step{from: s, state: s, ctx: ctx, in: in}
	t.apply()

	r := Result{State: t.state, Context: t.ctx, Effects: t.effects}
	if r.State == s && r.Context == ctx && len(r.Effects) == 0 {
		r.Effects = []Effect{EmitWarning{
			Token: ctx.PlaySessionID,
			Msg:   fmt.Sprintf("Received %s while in %s", in.Kind, s),
		}}
		r.Unhandled = true
	}
	return r
}

type step struct {
	from    State
	state   State
	ctx     Context
	in      Input
	effects []Effect
}

func (t *step) apply() {
	if t.in.Kind == InputUnknown {
		t.fail(fmt.Sprintf("Received incorrect message: %s", protocol.CommandType(t.in.Tag).Label()))
		return
	}

	if t.from == StateLoading {
		switch t.in.Kind {
		case InputInit:
			if t.in.Callbacks != nil {
				t.ctx.Policy = t.in.Callbacks.Policy()
			}
			t.emit(EmitInit{Version: t.in.Version})
			t.state = StatePaused
		case InputGameOver:
			t.fatal()
		}
		return
	}

	// Handlers shared by every INIT substate.
	switch t.in.Kind {
	case InputInit:
		t.fatal()
		return
	case InputRequestScore:
		t.emit(EmitScore{Token: t.ctx.PlaySessionID})
		return
	}

	switch t.from {
	case StatePaused:
		t.paused()
	case StatePlaying:
		t.playing()
	case StateGameOver:
		t.gameOver()
	}
}

func (t *step) paused() {
	switch t.in.Kind {
	case InputPlay:
		t.assignToken()
		t.resumeOrStart()
		t.enterPlaying()
	case InputLegacyStart:
		t.resumeOrStart()
		t.enterPlaying()
	case InputGameOver:
		t.fatal()
	}
}

func (t *step) playing() {
	switch t.in.Kind {
	case InputPause:
		t.call(CallbackPause)
		t.state = StatePaused
	case InputGameOver:
		t.emit(EmitScore{Token: t.ctx.PlaySessionID, Final: true})
		t.resetRNG()
		t.ctx.LegacyGameStarted = false
		t.state = StateGameOver
	case InputRestart:
		t.emit(EmitScore{Token: t.ctx.PlaySessionID})
		t.assignToken()
		t.resetRNG()
		t.restartOrStart()
	case InputLegacyStart:
		t.emit(EmitScore{Token: t.ctx.PlaySessionID})
		t.resetRNG()
		t.restartOrStart()
	}
}

func (t *step) gameOver() {
	switch t.in.Kind {
	case InputPlay, InputLegacyStart:
		t.assignToken()
		t.restartOrStart()
		t.enterPlaying()
	case InputGameOver:
		t.fatal()
	}
}

func (t *step) emit(e Effect) {
	t.effects = append(t.effects, e)
}

func (t *step) call(cb Callback) {
	t.emit(CallGame{Callback: cb})
}

// assignToken adopts the host token. Legacy hosts send none and the current
// session identifier is kept.
func (t *step) assignToken() {
	if t.in.Token != "" {
		t.ctx.PlaySessionID = t.in.Token
	}
}

func (t *step) resetRNG() {
	t.ctx.RNG = rng.Seed(t.ctx.ChallengeNumber)
}

func (t *step) resumeOrStart() {
	if t.ctx.LegacyGameStarted {
		t.call(CallbackResume)
		return
	}
	t.call(CallbackStart)
}

func (t *step) restartOrStart() {
	if t.ctx.Policy == PolicyDedicatedRestart {
		t.call(CallbackRestart)
		return
	}
	t.call(CallbackStart)
}

func (t *step) enterPlaying() {
	t.state = StatePlaying
	t.ctx.LegacyGameStarted = true
}

func (t *step) fatal() {
	t.fail(fmt.Sprintf("Fatal issue: Received %s while in %s", t.in.Kind, t.from))
}

// fail discards any pending effects and enters ERROR with a single ERR.
func (t *step) fail(msg string) {
	t.effects = []Effect{EmitErr{Token: t.ctx.PlaySessionID, Msg: msg}}
	t.state = StateError
}
