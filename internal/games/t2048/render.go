package t2048

import (
	"fmt"
	"strings"
)

const cellWidth = 6

// View renders the board as a text grid with the score underneath.
func (g *Game) View() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var sb strings.Builder
	n := g.board.Size()
	border := "+" + strings.Repeat(strings.Repeat("-", cellWidth)+"+", n) + "\n"

	sb.WriteString(border)
	for y := range n {
		sb.WriteString("|")
		for x := range n {
			v := g.board[y][x]
			if v == 0 {
				sb.WriteString(strings.Repeat(" ", cellWidth))
			} else {
				fmt.Fprintf(&sb, "%*d", cellWidth-1, v)
				sb.WriteString(" ")
			}
			sb.WriteString("|")
		}
		sb.WriteString("\n")
		sb.WriteString(border)
	}

	fmt.Fprintf(&sb, "Score: %d  Best tile: %d  Moves: %d", g.score, MaxTile(g.board), g.moves)
	switch {
	case g.over:
		sb.WriteString("  GAME OVER")
	case !g.running:
		sb.WriteString("  PAUSED")
	}
	return sb.String()
}
