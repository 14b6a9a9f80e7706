// Package t2048 is the 2048 sliding-tile puzzle, driven by the arcade SDK.
// It registers a dedicated restart callback and draws tile spawns from the
// challenge's deterministic random sequence.
package t2048

import (
	"sync"

	"github.com/vovakirdan/arcade-sdk/internal/config"
	"github.com/vovakirdan/arcade-sdk/internal/registry"
	"github.com/vovakirdan/arcade-sdk/sdk"
)

// ID is the registry identifier.
const ID = "2048"

// Game implements the 2048 puzzle.
type Game struct {
	cfg config.T2048Config

	mu      sync.Mutex
	sdk     *sdk.SDK
	board   Board
	score   int
	moves   int
	running bool
	over    bool
}

// New creates a game with the given settings.
func New(cfg config.T2048Config) *Game {
	if cfg.Size < 2 {
		cfg.Size = DefaultSize
	}
	if cfg.StartTiles < 1 {
		cfg.StartTiles = 2
	}
	return &Game{cfg: cfg, board: NewBoard(cfg.Size)}
}

func init() {
	registry.Register(ID, func(cfg config.GamesConfig) registry.Game {
		return New(cfg.T2048)
	})
}

// ID returns the game identifier.
func (g *Game) ID() string { return ID }

// Title returns the display name.
func (g *Game) Title() string { return "2048" }

// Attach implements registry.Game.
func (g *Game) Attach(s *sdk.SDK) error {
	g.mu.Lock()
	g.sdk = s
	g.mu.Unlock()

	return s.Init(sdk.Callbacks{
		StartGame:   g.newRound,
		ResumeGame:  g.resume,
		PauseGame:   g.pause,
		RestartGame: g.newRound,
		GetScore:    g.getScore,
	})
}

func (g *Game) newRound() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.board = NewBoard(g.cfg.Size)
	g.score = 0
	g.moves = 0
	g.over = false
	for range g.cfg.StartTiles {
		g.spawnTile()
	}
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

// spawnTile places a 2 or a 4 in a random empty cell. Caller holds mu.
func (g *Game) spawnTile() {
	cells := EmptyCells(g.board)
	if len(cells) == 0 {
		return
	}
	cell := cells[int(g.sdk.DeterministicRandom()*float64(len(cells)))]

	value := 2
	if g.sdk.DeterministicRandom() < g.cfg.FourChance {
		value = 4
	}
	g.board[cell.Y][cell.X] = value
}

// Input slides the board. When no move is left the game reports game over.
func (g *Game) Input(a registry.Action) error {
	var dir Direction
	switch a {
	case registry.ActionUp:
		dir = DirUp
	case registry.ActionDown:
		dir = DirDown
	case registry.ActionLeft:
		dir = DirLeft
	case registry.ActionRight:
		dir = DirRight
	default:
		return nil
	}

	g.mu.Lock()
	if !g.running {
		g.mu.Unlock()
		return nil
	}
	next, gained, changed := Slide(g.board, dir)
	if changed {
		g.board = next
		g.score += gained
		g.moves++
		g.spawnTile()
	}
	ended := !CanMove(g.board)
	if ended {
		g.running = false
		g.over = true
	}
	s := g.sdk
	g.mu.Unlock()

	if ended {
		return s.GameOver()
	}
	return nil
}

// Tick is a no-op; 2048 only changes on input.
func (g *Game) Tick() error { return nil }

// Status implements registry.Game.
func (g *Game) Status() registry.Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return registry.Status{Score: g.score, Running: g.running, Over: g.over}
}

// Board returns a copy of the board.
func (g *Game) Board() Board {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.Clone()
}

// setBoard replaces the board; used by tests to reach end states.
func (g *Game) setBoard(b Board) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.board = b
}
