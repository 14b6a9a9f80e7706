package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-sdk/internal/bridge"
	"github.com/vovakirdan/arcade-sdk/internal/host"
	"github.com/vovakirdan/arcade-sdk/internal/registry"
	"github.com/vovakirdan/arcade-sdk/sdk"
)

var (
	flagURL      string
	flagAutoplay int
	flagOffline  bool
)

var connectCmd = &cobra.Command{
	Use:   "connect <game>",
	Short: "Connect a game to a WebSocket host",
	Long: `Run a demo game headless on the game side of the protocol. The game dials
the host and follows its commands until the host disconnects.

With --offline no host is dialled: the SDK falls back to development mode,
logs what it would post and simulates a host that starts a new game shortly
after each game over.

Examples:
  arcade connect 2048 --autoplay 5
  arcade connect tapper --url ws://arcade.local:8089/game --autoplay 3
  arcade connect 2048 --offline --autoplay 2 --log-level debug`,
	Args: cobra.ExactArgs(1),
	Run:  runConnect,
}

func init() {
	connectCmd.Flags().StringVar(&flagURL, "url", "", "Host URL (default from config)")
	connectCmd.Flags().IntVar(&flagAutoplay, "autoplay", 0, "Send an input every n ticks (0 = none)")
	connectCmd.Flags().BoolVar(&flagOffline, "offline", false, "Run without a host in development mode")
}

func runConnect(_ *cobra.Command, args []string) {
	gameID := args[0]
	requireGame(gameID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := sdk.Options{
		ChallengeNumber: cfg.SDK.ChallengeNumber,
		DevDelay:        cfg.SDK.DevDelay,
		Logger:          logger,
	}

	var transport *bridge.WebSocketTransport
	if !flagOffline {
		target := flagURL
		if target == "" {
			target = cfg.Host.URL
		}
		target, err := withGame(target, gameID)
		if err != nil {
			exitf("%v", err)
		}
		transport, err = bridge.DialWebSocket(ctx, target)
		if err != nil {
			exitf("%v", err)
		}
		defer transport.Close() //nolint:errcheck
		opts.Environment = sdk.Environment{Native: transport}
		logger.Info("connected", "url", target)
	}

	s := sdk.New(opts)
	defer s.Close() //nolint:errcheck

	hostGone := make(chan error, 1)
	if transport != nil {
		go func() { hostGone <- s.Listen(ctx, transport) }()
	}

	game, err := registry.Create(gameID, cfg.Games)
	if err != nil {
		exitf("%v", err)
	}
	if err := game.Attach(s); err != nil {
		exitf("%v", err)
	}

	auto := host.NewAutoplay(flagAutoplay, s.ChallengeNumber())
	if err := loop(ctx, game, auto, hostGone); err != nil {
		exitf("%v", err)
	}
	st := game.Status()
	fmt.Fprintf(os.Stderr, "state=%s score=%d\n", s.State(), st.Score)
}

// loop ticks the game until ctx is done or the host goes away.
func loop(ctx context.Context, game registry.Game, auto *host.Autoplay, hostGone <-chan error) error {
	fps := max(flagFPS, 1)
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return nil
		case err := <-hostGone:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logger.Info("host disconnected")
			return nil
		case <-ticker.C:
		}

		if err := game.Tick(); err != nil {
			logger.Warn("tick failed", "error", err)
		}
		if a, ok := auto.Next(n); ok {
			if err := game.Input(a); err != nil {
				logger.Warn("input failed", "action", a, "error", err)
			}
		}
	}
}

// withGame adds the game query parameter the host uses to name sessions.
func withGame(raw, gameID string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid host URL %q: %w", raw, err)
	}
	q := u.Query()
	q.Set("game", gameID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
