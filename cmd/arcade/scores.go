package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-sdk/internal/registry"
	"github.com/vovakirdan/arcade-sdk/internal/storage"
)

var (
	flagScoresLimit int
	flagScoresAll   bool
	flagClear       bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores <game>",
	Short: "Show recorded scores for a game",
	Long: `Display the best recorded scores for a game. Scores are filtered to the
current challenge number unless --all is given.

Examples:
  arcade scores 2048
  arcade scores tapper --challenge 3
  arcade scores 2048 --all --limit 25
  arcade scores 2048 --clear`,
	Args: cobra.ExactArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of scores to show")
	scoresCmd.Flags().BoolVar(&flagScoresAll, "all", false, "Show every challenge")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all scores for the game")
}

func runScores(_ *cobra.Command, args []string) {
	gameID := args[0]
	requireGame(gameID)

	game, err := registry.Create(gameID, cfg.Games)
	if err != nil {
		exitf("creating game: %v", err)
	}

	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		exitf("opening scores database: %v", err)
	}
	defer store.Close() //nolint:errcheck

	if flagClear {
		if err := store.ClearScores(gameID); err != nil {
			exitf("%v", err)
		}
		fmt.Printf("Cleared scores for %s.\n", game.Title())
		return
	}

	challenge := cfg.SDK.ChallengeNumber
	heading := fmt.Sprintf("challenge %d", challenge)
	if flagScoresAll {
		challenge = 0
		heading = "all challenges"
	}

	scores, err := store.TopScores(gameID, challenge, flagScoresLimit)
	if err != nil {
		exitf("retrieving scores: %v", err)
	}

	fmt.Printf("High Scores - %s (%s)\n", game.Title(), heading)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Run 'arcade play %s' to record the first one!\n", gameID)
		return
	}

	fmt.Printf("  %-4s  %-10s  %-9s  %-36s  %s\n", "Rank", "Score", "Challenge", "Session", "Date")
	fmt.Printf("  %-4s  %-10s  %-9s  %-36s  %s\n", "----", "-----", "---------", "-------", "----")
	for i, e := range scores {
		fmt.Printf("  %-4d  %-10d  %-9d  %-36s  %s\n",
			i+1, e.Score, e.Challenge, orDash(e.PlaySession), e.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Println()
	if stats, err := store.GameStats(gameID); err == nil && stats.GamesCount > 0 {
		fmt.Printf("Best: %d  Games: %d  Average: %.1f  Last played: %s\n",
			stats.HighScore, stats.GamesCount, stats.AvgScore, stats.LastPlayed.Format("2006-01-02 15:04"))
	}
}
