package tapper

import (
	"fmt"
	"math"
	"strings"
)

// View draws the track: the window as '=' cells, the marker as 'O'.
func (g *Game) View() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	w := g.cfg.TrackWidth
	c := int(g.center())
	win := g.window()
	marker := int(math.Round(g.pos))

	track := make([]byte, w)
	for i := range track {
		track[i] = '-'
		if i >= c-win && i <= c+win {
			track[i] = '='
		}
	}
	if marker >= 0 && marker < w {
		track[marker] = 'O'
	}

	var sb strings.Builder
	sb.WriteString("[" + string(track) + "]\n")
	fmt.Fprintf(&sb, "Score: %d", g.score)
	switch {
	case g.over:
		sb.WriteString("  MISSED - GAME OVER")
	case !g.running:
		sb.WriteString("  PAUSED")
	}
	return sb.String()
}
