package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-sdk/internal/host"
)

var (
	flagListen     string
	flagHostScript string
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Accept game connections over WebSocket",
	Long: `Listen for games connecting over WebSocket and drive each one with a host
script once it reports INIT. Only protocol steps (play, pause, restart, score,
legacy steps, send, wait) are allowed; ticks and keys belong to the game side.

Results and the protocol log are recorded in the scores database.

Examples:
  arcade host
  arcade host --listen :9000 --script "play; wait 30s; score; wait 1m; pause"`,
	Run: runHost,
}

func init() {
	hostCmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (default from config)")
	hostCmd.Flags().StringVar(&flagHostScript, "script", "play", "Host script run for each connected game")
}

func runHost(_ *cobra.Command, _ []string) {
	steps, err := host.ParseScript(flagHostScript)
	if err != nil {
		exitf("%v", err)
	}
	for _, st := range steps {
		if st.Kind == host.StepTick || st.Kind == host.StepKey {
			exitf("host scripts cannot use %q", st.Kind)
		}
	}

	addr := cfg.Host.Listen
	if flagListen != "" {
		addr = flagListen
	}

	store := openStore()
	if store != nil {
		defer store.Close() //nolint:errcheck
	}

	srv := host.NewServer(host.ServerConfig{
		Addr:            addr,
		ChallengeNumber: cfg.SDK.ChallengeNumber,
		EventBuffer:     cfg.Host.PipeBuffer,
	}, recorder(store), logger, func(ctx context.Context, sess *host.Session) {
		if err := sess.WaitReady(ctx); err != nil {
			return
		}
		if err := sess.RunScript(ctx, steps); err != nil && ctx.Err() == nil {
			logger.Warn("host script failed", "game", sess.GameID(), "error", err)
		}
	})

	fmt.Printf("Games connect to ws://%s%s?game=<id>\n", addr, host.DefaultPath)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.ListenAndServe(ctx); err != nil {
		exitf("%v", err)
	}
}
