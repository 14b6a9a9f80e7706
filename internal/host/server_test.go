package host

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/arcade-sdk/internal/bridge"
	"github.com/vovakirdan/arcade-sdk/internal/registry"
	"github.com/vovakirdan/arcade-sdk/sdk"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServerDrivesRemoteGame(t *testing.T) {
	rec := &memRecorder{}
	srv := NewServer(ServerConfig{ChallengeNumber: 2}, rec, nil, func(ctx context.Context, sess *Session) {
		if err := sess.WaitReady(ctx); err != nil {
			return
		}
		_, _ = sess.Play()
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + DefaultPath + "?game=counter"
	transport, err := bridge.DialWebSocket(ctx, url)
	if err != nil {
		t.Fatalf("DialWebSocket() failed: %v", err)
	}
	defer transport.Close() //nolint:errcheck

	s := sdk.New(sdk.Options{ChallengeNumber: 2, Environment: sdk.Environment{Native: transport}})
	g := &counter{}
	go func() { _ = s.Listen(ctx, transport) }()
	if err := g.Attach(s); err != nil {
		t.Fatalf("Attach() failed: %v", err)
	}

	waitFor(t, "game start", func() bool { return g.Status().Running })
	if srv.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", srv.Count())
	}

	_ = g.Input(registry.ActionPrimary)
	_ = g.Input(registry.ActionPrimary)
	if err := g.Input(registry.ActionDown); err != nil {
		t.Fatalf("GameOver failed: %v", err)
	}

	waitFor(t, "saved score", func() bool { return len(rec.savedScores()) == 1 })
	got := rec.savedScores()[0]
	if got.GameID != "counter" || got.Score != 2 || got.Challenge != 2 {
		t.Fatalf("saved %+v", got)
	}
}
