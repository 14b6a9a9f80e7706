package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"

	"github.com/vovakirdan/arcade-sdk/internal/bridge"
)

// DefaultPath is where games connect.
const DefaultPath = "/game"

// ServerConfig configures a WebSocket host.
type ServerConfig struct {
	Addr            string
	Path            string
	ChallengeNumber int
	EventBuffer     int
}

// SessionFunc drives a connected game. It runs on its own goroutine and the
// connection stays open until the game disconnects or ctx is done.
type SessionFunc func(ctx context.Context, sess *Session)

// Server accepts game connections over WebSocket. Games name themselves with
// the "game" query parameter.
type Server struct {
	cfg       ServerConfig
	recorder  Recorder
	logger    *log.Logger
	onSession SessionFunc

	mu       sync.Mutex
	sessions map[*Session]struct{}
}

// NewServer creates a server. recorder and onSession may be nil.
func NewServer(cfg ServerConfig, recorder Recorder, logger *log.Logger, onSession SessionFunc) *Server {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{
		cfg:       cfg,
		recorder:  recorder,
		logger:    logger,
		onSession: onSession,
		sessions:  make(map[*Session]struct{}),
	}
}

// Handler returns the HTTP handler serving game connections.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.handleConn)
	return mux
}

// Count returns the number of connected games.
func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting host", "addr", s.cfg.Addr, "path", s.cfg.Path)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("host: listen %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	s.logger.Info("Stopping host")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("host: shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleConn(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game")
	if gameID == "" {
		gameID = "remote"
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.logger.Warn("accept failed", "error", err)
		return
	}
	transport := bridge.NewWebSocketTransport(conn)
	defer transport.Close() //nolint:errcheck

	sess := NewSession(Config{
		GameID:          gameID,
		ChallengeNumber: s.cfg.ChallengeNumber,
		EventBuffer:     s.cfg.EventBuffer,
	}, transport, s.recorder, s.logger.With("game", gameID))

	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.sessions, sess)
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	s.logger.Info("game connected", "game", gameID, "remote", r.RemoteAddr)
	if s.onSession != nil {
		go s.onSession(ctx, sess)
	}
	if err := sess.Run(ctx, transport); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("connection ended", "game", gameID, "error", err)
	}
	s.logger.Info("game disconnected", "game", gameID)
}
