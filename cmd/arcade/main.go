// arcade is the host tooling for the arcade game SDK: it runs the demo games
// against a simulated host, serves them over SSH and WebSocket, and reports
// the recorded results.
//
// Usage:
//
//	arcade list                  - List demo games
//	arcade play <game>           - Host a game in the terminal console
//	arcade menu                  - Pick games interactively
//	arcade run <game>            - Run a host script against a game headless
//	arcade serve                 - Serve the host console over SSH
//	arcade host                  - Accept game connections over WebSocket
//	arcade connect <game>        - Connect a game to a WebSocket host
//	arcade scores <game>         - Show recorded scores
//	arcade events                - Show the protocol event log
//
// Global flags:
//
//	--config <path>     - Config file (default: search ~/.arcade/configs, ./configs)
//	--db <path>         - Scores database (default from config)
//	--challenge <n>     - Challenge number (default from config or ARCADE_CHALLENGE_NUMBER)
//	--log-level <lvl>   - debug, info, warn, error
//	--fps <rate>        - Tick rate
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-sdk/internal/config"
	"github.com/vovakirdan/arcade-sdk/internal/host"
	"github.com/vovakirdan/arcade-sdk/internal/logging"
	"github.com/vovakirdan/arcade-sdk/internal/registry"
	"github.com/vovakirdan/arcade-sdk/internal/storage"

	// Import games to register them
	_ "github.com/vovakirdan/arcade-sdk/internal/games/t2048"
	_ "github.com/vovakirdan/arcade-sdk/internal/games/tapper"
)

var (
	// Global flags
	flagConfig    string
	flagDBPath    string
	flagChallenge int
	flagLogLevel  string
	flagFPS       int

	cfg    config.Config
	logger *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arcade",
	Short: "Arcade SDK host tooling",
	Long: `Host tooling for games built on the arcade SDK.

Games talk to their host through a small message protocol: the host sends
play, pause, restart and score requests, and the game reports INIT, SCORE,
GAME_OVER, WARNING and ERR events. These commands play the host role.

Examples:
  arcade list
  arcade play 2048
  arcade run tapper --script "play; tick 40; tap; score"
  arcade host --listen :8089
  arcade connect 2048 --url ws://localhost:8089/game
  arcade scores 2048 --challenge 3`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to scores database")
	rootCmd.PersistentFlags().IntVar(&flagChallenge, "challenge", 0, "Challenge number (0 = from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 20, "Tick rate (frames per second)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(hostCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(eventsCmd)
}

// loadConfig resolves the config file, environment and flags, in that order.
func loadConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	cfg = loaded

	if cmd.Flags().Changed("db") {
		cfg.Storage.DBPath = flagDBPath
	}
	if flagChallenge > 0 {
		cfg.SDK.ChallengeNumber = flagChallenge
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if cfg.SDK.ChallengeNumber < 1 {
		cfg.SDK.ChallengeNumber = 1
	}

	logger = logging.New("arcade", cfg.Log.Level)
	logger.Debug("config loaded", "challenge", cfg.SDK.ChallengeNumber, "db", cfg.Storage.DBPath)
	return nil
}

// openStore opens the scores database, or returns nil with a warning.
func openStore() *storage.Store {
	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		logger.Warn("could not open scores database", "error", err)
		return nil
	}
	return store
}

// recorder returns store as a host.Recorder, keeping a nil store nil.
func recorder(store *storage.Store) host.Recorder {
	if store == nil {
		return nil
	}
	return store
}

// consoleLogger returns the logger for full-screen commands, which own the
// terminal. At debug level it writes to debug.log; otherwise it is silent.
func consoleLogger() (*log.Logger, func()) {
	if logging.ParseLevel(cfg.Log.Level) != log.DebugLevel {
		return logging.Discard(), func() {}
	}
	f, err := os.OpenFile("debug.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return logging.Discard(), func() {}
	}
	return logging.NewWriter(f, "arcade", cfg.Log.Level), func() { _ = f.Close() }
}

func hostConfig() host.Config {
	return host.Config{
		ChallengeNumber: cfg.SDK.ChallengeNumber,
		EventBuffer:     cfg.Host.PipeBuffer,
	}
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func requireGame(id string) {
	if !registry.Exists(id) {
		fmt.Fprintf(os.Stderr, "Error: unknown game %q\n", id)
		fmt.Fprintln(os.Stderr, "Run 'arcade list' to see available games.")
		os.Exit(1)
	}
}
