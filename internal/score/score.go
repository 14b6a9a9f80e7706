// Package score validates scores reported by games before they reach the host.
package score

import (
	"errors"
	"fmt"
	"math"
)

// Max is the highest score a host accepts.
const Max = 1_000_000_000

// ErrInvalidScore is matched by every validation failure.
var ErrInvalidScore = errors.New("invalid score")

// InvalidScoreError describes why a score was rejected.
type InvalidScoreError struct {
	Score  float64
	Reason string
}

func (e *InvalidScoreError) Error() string {
	return fmt.Sprintf("score %s: %s", formatScore(e.Score), e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidScore.
func (e *InvalidScoreError) Unwrap() error {
	return ErrInvalidScore
}

// Validate reports whether s is an integer in [0, Max].
func Validate(s float64) error {
	switch {
	case math.IsNaN(s) || math.IsInf(s, 0):
		return &InvalidScoreError{Score: s, Reason: "is not a finite number"}
	case s < 0 || s > Max:
		return &InvalidScoreError{Score: s, Reason: fmt.Sprintf("is not between 0 and %d", Max)}
	case s != math.Trunc(s):
		return &InvalidScoreError{Score: s, Reason: "is not an integer"}
	}
	return nil
}

// Int validates s and converts it to an int.
func Int(s float64) (int, error) {
	if err := Validate(s); err != nil {
		return 0, err
	}
	return int(s), nil
}

func formatScore(s float64) string {
	if s == math.Trunc(s) && !math.IsInf(s, 0) {
		return fmt.Sprintf("%.0f", s)
	}
	return fmt.Sprintf("%v", s)
}
