package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-sdk/internal/storage"
)

var (
	flagEventsGame    string
	flagEventsSession string
	flagEventsLimit   int
	flagEventsRaw     bool
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the protocol event log",
	Long: `Print messages recorded by the host tooling, oldest first. "in" rows are
commands sent to the game, "out" rows are events the game posted.

Examples:
  arcade events
  arcade events --game 2048 --limit 100
  arcade events --session 3f2c0b1e-... --raw`,
	Run: runEvents,
}

func init() {
	eventsCmd.Flags().StringVar(&flagEventsGame, "game", "", "Only this game")
	eventsCmd.Flags().StringVar(&flagEventsSession, "session", "", "Only this play session")
	eventsCmd.Flags().IntVar(&flagEventsLimit, "limit", 50, "Number of events to show")
	eventsCmd.Flags().BoolVar(&flagEventsRaw, "raw", false, "Print the raw JSON payloads")
}

func runEvents(_ *cobra.Command, _ []string) {
	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		exitf("opening scores database: %v", err)
	}
	defer store.Close() //nolint:errcheck

	var entries []storage.EventEntry
	if flagEventsSession != "" {
		entries, err = store.SessionEvents(flagEventsSession)
	} else {
		entries, err = store.RecentEvents(flagEventsGame, flagEventsLimit)
	}
	if err != nil {
		exitf("retrieving events: %v", err)
	}

	if len(entries) == 0 {
		fmt.Println("No events recorded.")
		return
	}

	for _, e := range entries {
		if flagEventsRaw {
			fmt.Println(e.Payload)
			continue
		}
		fmt.Printf("%s  %-8s  %-3s  %-14s  %s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.GameID, e.Direction, e.Type, orDash(e.PlaySession))
	}
}
