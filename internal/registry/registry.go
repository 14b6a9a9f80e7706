// Package registry provides a global registry for demo game factories.
// Games register themselves in init() functions, allowing the tooling to
// discover and instantiate games without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/arcade-sdk/internal/config"
	"github.com/vovakirdan/arcade-sdk/sdk"
)

// Action is a player input, independent of any terminal or key map.
type Action int

const (
	ActionNone Action = iota
	ActionUp
	ActionDown
	ActionLeft
	ActionRight
	ActionPrimary
)

func (a Action) String() string {
	switch a {
	case ActionUp:
		return "up"
	case ActionDown:
		return "down"
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	case ActionPrimary:
		return "tap"
	default:
		return "none"
	}
}

// ParseAction maps a script word to an Action.
func ParseAction(s string) (Action, bool) {
	switch s {
	case "up":
		return ActionUp, true
	case "down":
		return ActionDown, true
	case "left":
		return ActionLeft, true
	case "right":
		return ActionRight, true
	case "tap", "space", "primary":
		return ActionPrimary, true
	default:
		return ActionNone, false
	}
}

// Status is a snapshot of a game.
type Status struct {
	Score   int
	Running bool // between a start/resume callback and pause or game over
	Over    bool // the game ended its last play attempt
}

// Game is a playable demo that talks to its host only through the SDK.
// Implementations are safe for concurrent use: callbacks arrive on the
// SDK's dispatch goroutine while input and ticks come from the UI.
type Game interface {
	// ID returns a unique identifier used for CLI commands and score storage.
	ID() string

	// Title returns a human-readable name.
	Title() string

	// Attach registers the game's lifecycle callbacks by calling s.Init.
	Attach(s *sdk.SDK) error

	// Input applies a player action. Ignored unless the game is running.
	Input(a Action) error

	// Tick advances the simulation by one fixed step.
	Tick() error

	// View renders the game as plain text.
	View() string

	// Status returns the current score and flags.
	Status() Status
}

// GameInfo contains metadata about a registered game.
type GameInfo struct {
	ID    string
	Title string
}

// Factory creates a new game instance.
type Factory func(cfg config.GamesConfig) Game

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a game factory to the registry.
// Panics if a game with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", id))
	}

	factories[id] = f
	titles[id] = f(config.Default().Games).Title()
}

// List returns information about all registered games, sorted by ID.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]GameInfo, 0, len(factories))
	for id := range factories {
		result = append(result, GameInfo{ID: id, Title: titles[id]})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Create instantiates a new game by its ID.
func Create(id string, cfg config.GamesConfig) (Game, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown game %q", id)
	}
	return f(cfg), nil
}

// Exists checks if a game with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
