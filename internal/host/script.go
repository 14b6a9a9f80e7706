package host

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vovakirdan/arcade-sdk/internal/protocol"
	"github.com/vovakirdan/arcade-sdk/internal/registry"
)

// StepKind names a script step.
type StepKind string

const (
	StepPlay         StepKind = "play"
	StepPause        StepKind = "pause"
	StepRestart      StepKind = "restart"
	StepScore        StepKind = "score"
	StepTick         StepKind = "tick"
	StepKey          StepKind = "key"
	StepLegacyStart  StepKind = "legacy-start"
	StepLegacyPause  StepKind = "legacy-pause"
	StepLegacyResume StepKind = "legacy-resume"
	StepLegacyScore  StepKind = "legacy-score"
	StepSend         StepKind = "send"
	StepWait         StepKind = "wait"
)

// ErrLocalStep is returned by Session.Apply for steps that drive the game
// directly and therefore need a local game.
var ErrLocalStep = errors.New("host: step needs a local game")

// Step is one scripted host action.
type Step struct {
	Kind   StepKind
	Count  int             // ticks for StepTick, repeats for StepKey
	Action registry.Action // StepKey
	Tag    string          // StepSend
	Wait   time.Duration   // StepWait
}

func (s Step) String() string {
	switch s.Kind {
	case StepTick:
		return fmt.Sprintf("tick %d", s.Count)
	case StepKey:
		return fmt.Sprintf("key %s %d", s.Action, s.Count)
	case StepSend:
		return "send " + s.Tag
	case StepWait:
		return "wait " + s.Wait.String()
	default:
		return string(s.Kind)
	}
}

// ParseScript reads steps separated by newlines or ';'. Blank entries and
// lines starting with '#' are skipped. A bare action word such as "left" or
// "tap" is shorthand for "key left".
func ParseScript(src string) ([]Step, error) {
	var steps []Step
	for lineNo, line := range strings.Split(src, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		for _, part := range strings.Split(line, ";") {
			fields := strings.Fields(part)
			if len(fields) == 0 {
				continue
			}
			step, err := parseStep(fields)
			if err != nil {
				return nil, fmt.Errorf("host: script line %d: %w", lineNo+1, err)
			}
			steps = append(steps, step)
		}
	}
	return steps, nil
}

func parseStep(fields []string) (Step, error) {
	word := strings.ToLower(fields[0])
	args := fields[1:]

	count := func() (int, error) {
		if len(args) == 0 {
			return 1, nil
		}
		n, err := strconv.Atoi(args[len(args)-1])
		if err != nil || n < 1 {
			return 0, fmt.Errorf("invalid count %q", args[len(args)-1])
		}
		return n, nil
	}

	switch StepKind(word) {
	case StepPlay, StepPause, StepRestart, StepScore,
		StepLegacyStart, StepLegacyPause, StepLegacyResume, StepLegacyScore:
		if len(args) > 0 {
			return Step{}, fmt.Errorf("%s takes no arguments", word)
		}
		return Step{Kind: StepKind(word)}, nil

	case StepTick:
		n, err := count()
		if err != nil {
			return Step{}, err
		}
		return Step{Kind: StepTick, Count: n}, nil

	case StepKey:
		if len(args) == 0 {
			return Step{}, fmt.Errorf("key needs an action")
		}
		a, ok := registry.ParseAction(strings.ToLower(args[0]))
		if !ok {
			return Step{}, fmt.Errorf("unknown action %q", args[0])
		}
		args = args[1:]
		n, err := count()
		if err != nil {
			return Step{}, err
		}
		return Step{Kind: StepKey, Action: a, Count: n}, nil

	case StepSend:
		if len(args) != 1 {
			return Step{}, fmt.Errorf("send needs exactly one command tag")
		}
		return Step{Kind: StepSend, Tag: args[0]}, nil

	case StepWait:
		if len(args) != 1 {
			return Step{}, fmt.Errorf("wait needs a duration")
		}
		d, err := time.ParseDuration(args[0])
		if err != nil || d < 0 {
			return Step{}, fmt.Errorf("invalid duration %q", args[0])
		}
		return Step{Kind: StepWait, Wait: d}, nil
	}

	if a, ok := registry.ParseAction(word); ok {
		n, err := count()
		if err != nil {
			return Step{}, err
		}
		return Step{Kind: StepKey, Action: a, Count: n}, nil
	}
	return Step{}, fmt.Errorf("unknown step %q", fields[0])
}

// Apply performs one protocol step. Steps that act on the game directly
// return ErrLocalStep.
func (s *Session) Apply(ctx context.Context, step Step) error {
	var err error
	switch step.Kind {
	case StepPlay:
		_, err = s.Play()
	case StepPause:
		err = s.Pause()
	case StepRestart:
		_, err = s.Restart()
	case StepScore:
		err = s.RequestScore()
	case StepLegacyStart:
		err = s.LegacyStart()
	case StepLegacyPause:
		err = s.LegacyPause()
	case StepLegacyResume:
		err = s.LegacyResume()
	case StepLegacyScore:
		err = s.LegacyRequestScore()
	case StepSend:
		err = s.SendCommand(protocol.Command{Type: protocol.CommandType(step.Tag), GamePlayUUID: s.Token()})
	case StepWait:
		t := time.NewTimer(step.Wait)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			err = ctx.Err()
		}
	case StepTick, StepKey:
		err = ErrLocalStep
	default:
		err = fmt.Errorf("unknown step %q", step.Kind)
	}
	return err
}

// RunScript applies protocol steps in order, stopping at the first failure.
func (s *Session) RunScript(ctx context.Context, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Apply(ctx, step); err != nil {
			return fmt.Errorf("host: step %d (%s): %w", i+1, step, err)
		}
	}
	return nil
}

// Run executes steps against the local game. It stops at the first step that
// fails to send or when ctx is cancelled. Errors returned by the game's own
// input handling are logged and do not stop the script.
func (l *Local) Run(ctx context.Context, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.step(ctx, step); err != nil {
			return fmt.Errorf("host: step %d (%s): %w", i+1, step, err)
		}
	}
	return nil
}

func (l *Local) step(ctx context.Context, step Step) error {
	switch step.Kind {
	case StepTick:
		for range step.Count {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := l.Game.Tick(); err != nil {
				l.Session.logger.Debug("tick", "error", err)
			}
		}
		return nil
	case StepKey:
		for range step.Count {
			if err := l.Game.Input(step.Action); err != nil {
				l.Session.logger.Debug("input", "error", err)
			}
		}
		return nil
	default:
		return l.Session.Apply(ctx, step)
	}
}
