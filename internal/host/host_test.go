package host

import (
	"sync"
	"testing"

	"github.com/vovakirdan/arcade-sdk/internal/registry"
	"github.com/vovakirdan/arcade-sdk/internal/storage"
	"github.com/vovakirdan/arcade-sdk/sdk"
)

type memRecorder struct {
	mu     sync.Mutex
	scores []storage.ScoreEntry
	events []storage.EventEntry
}

func (m *memRecorder) SaveScore(e storage.ScoreEntry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = append(m.scores, e)
	return int64(len(m.scores)), nil
}

func (m *memRecorder) LogEvent(e storage.EventEntry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return int64(len(m.events)), nil
}

func (m *memRecorder) savedScores() []storage.ScoreEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]storage.ScoreEntry(nil), m.scores...)
}

func (m *memRecorder) loggedTypes(direction string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.events {
		if e.Direction == direction {
			out = append(out, e.Type)
		}
	}
	return out
}

// counter scores a point per tap and ends on "down".
type counter struct {
	mu      sync.Mutex
	sdk     *sdk.SDK
	score   int
	running bool
	over    bool
	starts  int
}

func (c *counter) ID() string    { return "counter" }
func (c *counter) Title() string { return "Counter" }
func (c *counter) View() string  { return "" }
func (c *counter) Tick() error   { return nil }

func (c *counter) Attach(s *sdk.SDK) error {
	c.sdk = s
	reset := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.starts++
		c.score = 0
		c.over = false
		c.running = true
	}
	return s.Init(sdk.Callbacks{
		StartGame:   reset,
		RestartGame: reset,
		ResumeGame: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.running = true
		},
		PauseGame: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.running = false
		},
		GetScore: func() float64 {
			c.mu.Lock()
			defer c.mu.Unlock()
			return float64(c.score)
		},
	})
}

func (c *counter) Input(a registry.Action) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	switch a {
	case registry.ActionPrimary:
		c.score++
		c.mu.Unlock()
		return nil
	case registry.ActionDown:
		c.running = false
		c.over = true
		c.mu.Unlock()
		return c.sdk.GameOver()
	}
	c.mu.Unlock()
	return nil
}

func (c *counter) Status() registry.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return registry.Status{Score: c.score, Running: c.running, Over: c.over}
}

func newLocal(t *testing.T) (*Local, *counter, *memRecorder) {
	t.Helper()
	rec := &memRecorder{}
	g := &counter{}
	l, err := NewLocal(g, Config{ChallengeNumber: 4}, rec, nil)
	if err != nil {
		t.Fatalf("NewLocal() failed: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l, g, rec
}

func mustRun(t *testing.T, l *Local, script string) {
	t.Helper()
	steps, err := ParseScript(script)
	if err != nil {
		t.Fatalf("ParseScript(%q) failed: %v", script, err)
	}
	if err := l.Run(t.Context(), steps); err != nil {
		t.Fatalf("Run(%q) failed: %v", script, err)
	}
}
