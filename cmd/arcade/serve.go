package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-sdk/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the host console over SSH",
	Long: `Start an SSH server that gives every connection its own host console.

Each SSH connection gets a game picker; the chosen game runs on the server
and all connections share one scores database.

Examples:
  arcade serve                           # Listen on the configured address
  arcade serve --ssh :2222               # Listen on port 2222
  arcade serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 2222`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port, default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (generated if missing)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
	srvCfg := tui.NewSSHServerConfig(&cfg)
	srvCfg.TickRate = flagFPS
	srvCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	if flagSSHAddr != "" {
		srvCfg.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		srvCfg.HostKeyPath = flagHostKey
	}

	store := openStore()
	if store != nil {
		defer store.Close() //nolint:errcheck
	}

	server, err := tui.NewSSHServer(srvCfg, store, logger.WithPrefix("arcade-ssh"))
	if err != nil {
		exitf("creating server: %v", err)
	}

	fmt.Printf("Starting arcade SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.ListenAndServe(ctx); err != nil {
		exitf("server: %v", err)
	}
}
