package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/arcade-sdk/internal/host"
	"github.com/vovakirdan/arcade-sdk/internal/platform/tui"
	"github.com/vovakirdan/arcade-sdk/internal/registry"
)

var flagLegacy bool

var playCmd = &cobra.Command{
	Use:   "play <game>",
	Short: "Host a game in the terminal console",
	Long: `Run a demo game in-process and act as its host.

The console shows the game, the SDK state and every message exchanged.

Controls:
  Arrows/hjkl  - Game input
  Space        - Tap
  Enter        - playGame (start or resume)
  P            - pauseGame
  R            - restartGame
  S            - requestScore
  L            - Toggle the legacy host protocol
  ?            - Full help
  Q/Ctrl+C     - Quit

Examples:
  arcade play 2048
  arcade play tapper --legacy
  arcade play 2048 --challenge 7`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&flagLegacy, "legacy", false, "Start with the legacy host protocol")
}

func runPlay(_ *cobra.Command, args []string) {
	gameID := args[0]
	requireGame(gameID)

	store := openStore()
	if store != nil {
		defer store.Close() //nolint:errcheck
	}

	consoleLog, closeLog := consoleLogger()
	defer closeLog()

	game, err := registry.Create(gameID, cfg.Games)
	if err != nil {
		exitf("%v", err)
	}
	local, err := host.NewLocal(game, hostConfig(), recorder(store), consoleLog)
	if err != nil {
		exitf("%v", err)
	}
	defer local.Close() //nolint:errcheck

	if err := tui.RunConsole(local, tui.ConsoleOptions{TickRate: flagFPS, Legacy: flagLegacy}); err != nil {
		exitf("%v", err)
	}
}

// terminalSize returns the terminal size, falling back to 80x24.
func terminalSize() (int, int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return w, h
	}
	return 80, 24
}
