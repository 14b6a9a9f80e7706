package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-sdk/internal/host"
	"github.com/vovakirdan/arcade-sdk/internal/platform/tui"
	"github.com/vovakirdan/arcade-sdk/internal/registry"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick games to host interactively",
	Long: `Start the host console in menu mode.

Use arrow keys or j/k to navigate, Enter to select a game and Tab for the
scoreboard. L switches between the current and the legacy host protocol.
Leaving a game with Esc returns to the menu.

Examples:
  arcade menu
  arcade menu --challenge 3`,
	Run: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) {
	store := openStore()
	if store != nil {
		defer store.Close() //nolint:errcheck
	}
	consoleLog, closeLog := consoleLogger()
	defer closeLog()

	legacy := false
	for {
		width, height := terminalSize()
		result, err := tui.RunMenu(width, height, legacy)
		if err != nil {
			exitf("%v", err)
		}
		legacy = result.Legacy

		switch {
		case result.Quit:
			return

		case result.WantsScoreboard:
			back, err := tui.RunScoreboard(store, width, height)
			if err != nil {
				exitf("%v", err)
			}
			if !back {
				return
			}

		default:
			game, err := registry.Create(result.GameID, cfg.Games)
			if err != nil {
				exitf("%v", err)
			}
			local, err := host.NewLocal(game, hostConfig(), recorder(store), consoleLog)
			if err != nil {
				exitf("%v", err)
			}
			err = tui.RunConsole(local, tui.ConsoleOptions{TickRate: flagFPS, Legacy: legacy})
			_ = local.Close()
			if err != nil {
				exitf("%v", err)
			}
		}
	}
}
