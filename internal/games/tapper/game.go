// Package tapper is a one-button timing game on the legacy SDK contract: it
// registers no restart callback, so the SDK restarts it through StartGame.
//
// A marker sweeps back and forth across a track. Tapping while the marker is
// inside the target window scores a point and respawns the marker; tapping
// outside it ends the game. The sweep speeds up and the window narrows as the
// score grows.
package tapper

import (
	"math"
	"sync"

	"github.com/vovakirdan/arcade-sdk/internal/config"
	"github.com/vovakirdan/arcade-sdk/internal/registry"
	"github.com/vovakirdan/arcade-sdk/sdk"
)

// ID is the registry identifier.
const ID = "tapper"

const minTrackWidth = 7

// Game implements the tapper demo.
type Game struct {
	cfg        config.TapperConfig
	difficulty *config.DifficultyManager

	mu      sync.Mutex
	sdk     *sdk.SDK
	pos     float64
	dir     float64
	score   int
	ticks   int
	running bool
	over    bool
}

// New creates a game with the given settings.
func New(cfg config.TapperConfig) *Game {
	if cfg.TrackWidth < minTrackWidth {
		cfg.TrackWidth = minTrackWidth
	}
	if cfg.BaseSpeed <= 0 {
		cfg.BaseSpeed = 0.5
	}
	return &Game{
		cfg:        cfg,
		difficulty: config.NewDifficultyManager(cfg.Difficulty),
		dir:        1,
	}
}

func init() {
	registry.Register(ID, func(cfg config.GamesConfig) registry.Game {
		return New(cfg.Tapper)
	})
}

// ID returns the game identifier.
func (g *Game) ID() string { return ID }

// Title returns the display name.
func (g *Game) Title() string { return "Tapper" }

// Attach implements registry.Game.
func (g *Game) Attach(s *sdk.SDK) error {
	g.mu.Lock()
	g.sdk = s
	g.mu.Unlock()

	return s.Init(sdk.Callbacks{
		StartGame:  g.start,
		ResumeGame: g.resume,
		PauseGame:  g.pause,
		GetScore:   g.getScore,
	})
}

func (g *Game) start() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.score = 0
	g.ticks = 0
	g.over = false
	g.respawn()
	g.running = true
}

func (g *Game) resume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.over {
		g.running = true
	}
}

func (g *Game) pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.running = false
}

func (g *Game) getScore() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return float64(g.score)
}

// respawn moves the marker to a random cell outside the window. Caller holds mu.
func (g *Game) respawn() {
	w := g.cfg.TrackWidth
	r := g.sdk.DeterministicRandom()
	g.pos = math.Floor(r * float64(w))
	if g.inWindow() {
		g.pos = 0
	}
	g.dir = 1
	if g.sdk.DeterministicRandom() < 0.5 {
		g.dir = -1
	}
}

func (g *Game) center() float64 {
	return float64(g.cfg.TrackWidth / 2)
}

func (g *Game) window() int {
	return g.difficulty.Window(g.cfg.Window, g.score, g.ticks)
}

func (g *Game) inWindow() bool {
	return math.Abs(math.Round(g.pos)-g.center()) <= float64(g.window())
}

// Tick moves the marker, bouncing at both ends of the track.
func (g *Game) Tick() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.running {
		return nil
	}
	g.ticks++

	last := float64(g.cfg.TrackWidth - 1)
	g.pos += g.dir * g.difficulty.Speed(g.cfg.BaseSpeed, g.score, g.ticks)
	switch {
	case g.pos < 0:
		g.pos = -g.pos
		g.dir = 1
	case g.pos > last:
		g.pos = 2*last - g.pos
		g.dir = -1
	}
	return nil
}

// Input handles a tap. A miss ends the game.
func (g *Game) Input(a registry.Action) error {
	if a != registry.ActionPrimary {
		return nil
	}

	g.mu.Lock()
	if !g.running {
		g.mu.Unlock()
		return nil
	}
	hit := g.inWindow()
	if hit {
		g.score++
		g.respawn()
	} else {
		g.running = false
		g.over = true
	}
	s := g.sdk
	g.mu.Unlock()

	if !hit {
		return s.GameOver()
	}
	return nil
}

// Status implements registry.Game.
func (g *Game) Status() registry.Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return registry.Status{Score: g.score, Running: g.running, Over: g.over}
}

// setMarker places the marker; used by tests.
func (g *Game) setMarker(pos float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pos = pos
}
