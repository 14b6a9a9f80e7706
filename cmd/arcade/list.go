package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-sdk/internal/bridge"
	"github.com/vovakirdan/arcade-sdk/internal/logging"
	"github.com/vovakirdan/arcade-sdk/internal/registry"
	"github.com/vovakirdan/arcade-sdk/internal/storage"
	"github.com/vovakirdan/arcade-sdk/sdk"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all demo games",
	Long: `Shows the demo games registered with the host tooling, the restart
contract each one initializes with and its best score, if a scores
database is available.`,
	Run: runList,
}

func runList(_ *cobra.Command, _ []string) {
	games := registry.List()
	if len(games) == 0 {
		fmt.Println("No games available.")
		return
	}

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	idWidth := len("ID")
	titleWidth := len("Title")
	for _, g := range games {
		idWidth = max(idWidth, len(g.ID))
		titleWidth = max(titleWidth, len(g.Title))
	}

	fmt.Printf("  %-*s  %-*s  %-17s  %s\n", idWidth, "ID", titleWidth, "Title", "Restart", "Best")
	for _, g := range games {
		fmt.Printf("  %-*s  %-*s  %-17s  %s\n",
			idWidth, g.ID, titleWidth, g.Title, contractOf(g.ID), bestOf(store, g.ID))
	}

	fmt.Println()
	fmt.Println("Run 'arcade play <id>' to host a game.")
}

// contractOf initializes a throwaway instance against a silent hook to
// read which restart policy the game registers.
func contractOf(id string) string {
	game, err := registry.Create(id, cfg.Games)
	if err != nil {
		return "-"
	}
	s := sdk.New(sdk.Options{
		Environment: bridge.Environment{Hook: func([]byte) error { return nil }},
		Logger:      logging.Discard(),
	})
	defer s.Close()
	if err := game.Attach(s); err != nil {
		return "init failed"
	}
	return s.Policy().String()
}

func bestOf(store *storage.Store, id string) string {
	if store == nil {
		return "-"
	}
	best, err := store.HighScore(id)
	if err != nil || best == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", best)
}
