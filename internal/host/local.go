package host

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/arcade-sdk/internal/bridge"
	"github.com/vovakirdan/arcade-sdk/internal/registry"
	"github.com/vovakirdan/arcade-sdk/sdk"
)

// Local is a game running in the same process as its host. Commands are
// delivered synchronously, so every command has been fully handled, events
// included, when the Session method returns.
type Local struct {
	Game    registry.Game
	SDK     *sdk.SDK
	Session *Session
}

// NewLocal attaches g to a new SDK whose post hook feeds a new session.
func NewLocal(g registry.Game, cfg Config, recorder Recorder, logger *log.Logger) (*Local, error) {
	if cfg.GameID == "" {
		cfg.GameID = g.ID()
	}
	sess := NewSession(cfg, nil, recorder, logger)
	s := sdk.New(sdk.Options{
		ChallengeNumber: cfg.ChallengeNumber,
		Environment:     sdk.Environment{Hook: sess.Deliver},
		Logger:          logger,
	})
	sess.Connect(bridge.PostFunc(s.HandleMessage))

	if err := g.Attach(s); err != nil {
		return nil, fmt.Errorf("host: cannot attach %s: %w", g.ID(), err)
	}
	return &Local{Game: g, SDK: s, Session: sess}, nil
}

// Close releases the SDK.
func (l *Local) Close() error {
	return l.SDK.Close()
}
