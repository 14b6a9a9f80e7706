package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-sdk/internal/host"
	"github.com/vovakirdan/arcade-sdk/internal/protocol"
	"github.com/vovakirdan/arcade-sdk/internal/registry"
)

var (
	flagScript     string
	flagScriptFile string
	flagShowView   bool
)

var runCmd = &cobra.Command{
	Use:   "run <game>",
	Short: "Run a host script against a game",
	Long: `Drive a demo game headless with a host script and print every event the
game posts, one JSON object per line.

Steps are separated by newlines or ';':
  play | pause | restart | score          - protocol commands
  legacy-start | legacy-pause |
  legacy-resume | legacy-score            - older protocol commands
  send <tag>                              - arbitrary command tag
  tick [n]                                - advance the game n ticks
  key <action> [n] | <action> [n]         - up, down, left, right, tap
  wait <duration>                         - sleep, e.g. 250ms

Examples:
  arcade run 2048 --script "play; left; up; right 3; score"
  arcade run tapper --script "legacy-start; tick 20; tap" --challenge 4
  arcade run 2048 --script-file ./session.txt --view`,
	Args: cobra.ExactArgs(1),
	Run:  runScript,
}

func init() {
	runCmd.Flags().StringVar(&flagScript, "script", "play; score", "Host script")
	runCmd.Flags().StringVar(&flagScriptFile, "script-file", "", "Read the host script from a file")
	runCmd.Flags().BoolVar(&flagShowView, "view", false, "Print the final game screen")
}

func runScript(_ *cobra.Command, args []string) {
	gameID := args[0]
	requireGame(gameID)

	src := flagScript
	if flagScriptFile != "" {
		data, err := os.ReadFile(flagScriptFile)
		if err != nil {
			exitf("cannot read script: %v", err)
		}
		src = string(data)
	}
	steps, err := host.ParseScript(src)
	if err != nil {
		exitf("%v", err)
	}

	store := openStore()
	if store != nil {
		defer store.Close() //nolint:errcheck
	}

	game, err := registry.Create(gameID, cfg.Games)
	if err != nil {
		exitf("%v", err)
	}
	// Events are printed after the script, so keep all of them.
	hcfg := hostConfig()
	hcfg.EventBuffer = max(hcfg.EventBuffer, 4096)
	local, err := host.NewLocal(game, hcfg, recorder(store), logger)
	if err != nil {
		exitf("%v", err)
	}
	defer local.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runErr := local.Run(ctx, steps)
	printEvents(local.Session)

	if flagShowView {
		fmt.Println()
		fmt.Println(game.View())
	}
	st := game.Status()
	fmt.Fprintf(os.Stderr, "state=%s score=%d session=%s\n",
		local.SDK.State(), st.Score, orDash(local.Session.Token()))

	if runErr != nil {
		exitf("%v", runErr)
	}
}

// printEvents writes the queued events as JSON lines.
func printEvents(sess *host.Session) {
	for {
		select {
		case ev := <-sess.Events():
			data, err := protocol.MarshalEvent(ev)
			if err != nil {
				logger.Warn("cannot encode event", "error", err)
				continue
			}
			fmt.Println(string(data))
		default:
			return
		}
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
