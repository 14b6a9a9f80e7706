package host

import (
	"github.com/vovakirdan/arcade-sdk/internal/registry"
	"github.com/vovakirdan/arcade-sdk/internal/rng"
)

// autoplayActions are the inputs an Autoplay chooses from.
var autoplayActions = []registry.Action{
	registry.ActionLeft,
	registry.ActionUp,
	registry.ActionPrimary,
	registry.ActionRight,
	registry.ActionDown,
}

// Autoplay picks a player input every few ticks. Its choices come from a
// generator seeded by the challenge number, so two runs of the same challenge
// press the same keys.
type Autoplay struct {
	every int
	gen   *rng.Generator
}

// NewAutoplay returns an Autoplay acting every n ticks. n below one disables it.
func NewAutoplay(every, challenge int) *Autoplay {
	return &Autoplay{every: every, gen: rng.New(challenge)}
}

// Next returns the action for tick n, if this tick gets one.
func (a *Autoplay) Next(n int) (registry.Action, bool) {
	if a.every < 1 || n%a.every != 0 {
		return registry.ActionNone, false
	}
	return autoplayActions[a.gen.Intn(len(autoplayActions))], true
}

// Reset replays the input sequence from the start.
func (a *Autoplay) Reset() {
	a.gen.Reset()
}
