// Package rng implements the deterministic random number generator that backs
// challenge-based play sessions.
//
// A challenge number is hashed through the xmur3 string hash and then fed to a
// Mulberry32 generator. Every step is plain uint32 arithmetic, so a given
// challenge number yields the same sequence on every platform and every run.
package rng

import "strconv"

// increment is the Mulberry32 Weyl sequence constant.
const increment = 0x6D2B79F5

// State is the complete state of the generator. It is a value type: Next
// returns the successor instead of mutating the receiver.
type State struct {
	a uint32
}

// Seed derives the initial state for a challenge number.
func Seed(challenge int) State {
	return State{a: hashString(strconv.Itoa(challenge))}
}

// Next returns a float64 in [0, 1) and the successor state.
func (s State) Next() (float64, State) {
	s.a += increment
	t := s.a
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0, s
}

// hashString runs one round of the xmur3 avalanche hash over s.
// Small seeds such as 1, 2, 3 end up far apart in the generator's state space.
func hashString(s string) uint32 {
	h := uint32(1779033703) ^ uint32(len(s))
	for i := 0; i < len(s); i++ {
		h = (h ^ uint32(s[i])) * 3432918353
		h = h<<13 | h>>19
	}
	h = (h ^ (h >> 16)) * 2246822507
	h = (h ^ (h >> 13)) * 3266489909
	return h ^ (h >> 16)
}

// Generator is a mutable convenience wrapper around State that remembers the
// challenge number it was seeded with.
type Generator struct {
	challenge int
	state     State
}

// New creates a generator seeded from the challenge number.
func New(challenge int) *Generator {
	return &Generator{challenge: challenge, state: Seed(challenge)}
}

// Float64 returns the next value in [0, 1).
func (g *Generator) Float64() float64 {
	v, next := g.state.Next()
	g.state = next
	return v
}

// Intn returns the next value as an int in [0, n). Returns 0 when n <= 0.
func (g *Generator) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(g.Float64() * float64(n))
}

// Reset discards the current state and reseeds from the original challenge number.
func (g *Generator) Reset() {
	g.state = Seed(g.challenge)
}
