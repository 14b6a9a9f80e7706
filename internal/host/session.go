// Package host implements the embedding side of the game protocol: it issues
// commands to a game, tracks play sessions and records the results.
package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/arcade-sdk/internal/bridge"
	"github.com/vovakirdan/arcade-sdk/internal/protocol"
	"github.com/vovakirdan/arcade-sdk/internal/storage"
)

// ErrNoTransport is returned when a command is issued before the session is
// connected to a game.
var ErrNoTransport = errors.New("host: session has no transport")

// Recorder persists results and the protocol log. *storage.Store satisfies it.
type Recorder interface {
	SaveScore(e storage.ScoreEntry) (int64, error)
	LogEvent(e storage.EventEntry) (int64, error)
}

// Config identifies the game a session drives.
type Config struct {
	GameID          string
	ChallengeNumber int
	EventBuffer     int // events kept for Events() readers before dropping the oldest
}

// Session drives one game instance.
type Session struct {
	cfg      Config
	recorder Recorder
	logger   *log.Logger
	events   chan protocol.Event
	readyCh  chan struct{}

	mu         sync.Mutex
	out        bridge.Transport
	token      string
	ended      bool // the current token's play session reported GAME_OVER
	restarting string
	lastScore  int
	ready      bool
	failed     bool
}

// NewSession creates a session. out may be nil and set later with Connect;
// recorder may be nil.
func NewSession(cfg Config, out bridge.Transport, recorder Recorder, logger *log.Logger) *Session {
	if cfg.EventBuffer < 1 {
		cfg.EventBuffer = 64
	}
	if cfg.ChallengeNumber <= 0 {
		cfg.ChallengeNumber = 1
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Session{
		cfg:      cfg,
		recorder: recorder,
		logger:   logger,
		events:   make(chan protocol.Event, cfg.EventBuffer),
		readyCh:  make(chan struct{}),
		out:      out,
	}
}

// Connect sets the transport commands are sent on.
func (s *Session) Connect(out bridge.Transport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = out
}

// GameID returns the game this session drives.
func (s *Session) GameID() string { return s.cfg.GameID }

// Token returns the active play session identifier.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// LastScore returns the most recent score the game reported.
func (s *Session) LastScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastScore
}

// Ready reports whether the game sent INIT.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// WaitReady blocks until the game sends INIT or ctx is done.
func (s *Session) WaitReady(ctx context.Context) error {
	select {
	case <-s.readyCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Failed reports whether the game reported a fatal protocol error.
func (s *Session) Failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// Events returns decoded game events. The channel keeps the most recent
// EventBuffer events; older ones are dropped when nobody reads.
func (s *Session) Events() <-chan protocol.Event {
	return s.events
}

// Play starts a new play session, or resumes the current one if it has not
// ended. It returns the token sent.
func (s *Session) Play() (string, error) {
	s.mu.Lock()
	if s.token == "" || s.ended {
		s.token = uuid.NewString()
		s.ended = false
	}
	token := s.token
	s.mu.Unlock()

	return token, s.send(protocol.Command{Type: protocol.CommandPlayGame, GamePlayUUID: token})
}

// Pause pauses the game.
func (s *Session) Pause() error {
	return s.send(protocol.Command{Type: protocol.CommandPauseGame})
}

// Restart abandons the current play session and starts a new one. The final
// score of the abandoned session is recorded when the game reports it.
func (s *Session) Restart() (string, error) {
	s.mu.Lock()
	s.restarting = s.token
	s.token = uuid.NewString()
	s.ended = false
	token := s.token
	s.mu.Unlock()

	return token, s.send(protocol.Command{Type: protocol.CommandRestartGame, GamePlayUUID: token})
}

// RequestScore asks the game to report its current score.
func (s *Session) RequestScore() error {
	return s.send(protocol.Command{Type: protocol.CommandRequestScore})
}

// LegacyStart sends the older protocol's start command. It carries no
// token; the game keeps whatever token it had.
func (s *Session) LegacyStart() error {
	s.mu.Lock()
	s.ended = false
	s.mu.Unlock()

	return s.send(protocol.Command{Type: protocol.CommandLegacyStartGame})
}

// LegacyPause sends the older protocol's pause command.
func (s *Session) LegacyPause() error {
	return s.send(protocol.Command{Type: protocol.CommandLegacyPauseGame})
}

// LegacyResume sends the older protocol's resume command. It carries no token.
func (s *Session) LegacyResume() error {
	return s.send(protocol.Command{Type: protocol.CommandLegacyResumeGame})
}

// LegacyRequestScore sends the older protocol's score request.
func (s *Session) LegacyRequestScore() error {
	return s.send(protocol.Command{Type: protocol.CommandLegacyRequestScore})
}

// SendCommand sends an arbitrary command, including tags the game does not know.
func (s *Session) SendCommand(cmd protocol.Command) error {
	return s.send(cmd)
}

// SendRaw writes data to the game unchanged.
func (s *Session) SendRaw(data []byte) error {
	s.mu.Lock()
	out := s.out
	s.mu.Unlock()
	if out == nil {
		return ErrNoTransport
	}

	s.record(storage.EventEntry{Direction: storage.DirectionInbound, Type: "raw", Payload: string(data)})
	if err := out.Send(data); err != nil {
		return fmt.Errorf("host: cannot send raw message: %w", err)
	}
	return nil
}

func (s *Session) send(cmd protocol.Command) error {
	s.mu.Lock()
	out := s.out
	s.mu.Unlock()
	if out == nil {
		return ErrNoTransport
	}

	data, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return err
	}
	s.logger.Debug("command", "type", cmd.Type, "token", cmd.GamePlayUUID)
	s.record(storage.EventEntry{
		PlaySession: cmd.GamePlayUUID,
		Direction:   storage.DirectionInbound,
		Type:        string(cmd.Type),
		Payload:     string(data),
	})

	// Games on an in-process transport answer before Send returns, so the
	// session lock must not be held here.
	if err := out.Send(data); err != nil {
		return fmt.Errorf("host: cannot send %s: %w", cmd.Type, err)
	}
	return nil
}

// Deliver handles one message from the game. Messages that are not event
// envelopes are ignored. It has the shape of a post hook, so an in-process
// game can use it directly.
func (s *Session) Deliver(data []byte) error {
	ev, err := protocol.DecodeEvent(data)
	if errors.Is(err, protocol.ErrNotEnvelope) {
		s.logger.Debug("ignoring message", "size", len(data))
		return nil
	}
	if err != nil {
		s.logger.Warn("bad event", "error", err)
		return err
	}

	s.handle(ev, data)
	s.push(ev)
	return nil
}

func (s *Session) handle(ev protocol.Event, data []byte) {
	token := protocol.SessionToken(ev)
	s.record(storage.EventEntry{
		PlaySession: token,
		Direction:   storage.DirectionOutbound,
		Type:        string(ev.Type()),
		Payload:     string(data),
	})

	switch e := ev.(type) {
	case protocol.InitEvent:
		s.mu.Lock()
		if !s.ready {
			s.ready = true
			close(s.readyCh)
		}
		s.mu.Unlock()
		s.logger.Info("game ready", "game", s.cfg.GameID, "version", e.Version)

	case protocol.ScoreEvent:
		s.mu.Lock()
		s.lastScore = e.Score
		final := s.restarting != "" && s.restarting == e.GamePlayUUID
		if final {
			s.restarting = ""
		}
		s.mu.Unlock()
		if final {
			s.saveScore(e.GamePlayUUID, e.Score, e.ChallengeNumber)
		}

	case protocol.GameOverEvent:
		s.mu.Lock()
		s.lastScore = e.Score
		if s.token == "" || e.GamePlayUUID == s.token {
			s.ended = true
		}
		s.mu.Unlock()
		s.logger.Info("game over", "game", s.cfg.GameID, "score", e.Score, "token", e.GamePlayUUID)
		s.saveScore(e.GamePlayUUID, e.Score, e.ChallengeNumber)

	case protocol.WarningEvent:
		s.logger.Warn("game warning", "msg", e.Msg)

	case protocol.ErrEvent:
		s.mu.Lock()
		s.failed = true
		s.mu.Unlock()
		s.logger.Error("game error", "msg", e.ErrMsg)
	}
}

func (s *Session) saveScore(token string, score, challenge int) {
	if s.recorder == nil {
		return
	}
	if challenge <= 0 {
		challenge = s.cfg.ChallengeNumber
	}
	_, err := s.recorder.SaveScore(storage.ScoreEntry{
		GameID:      s.cfg.GameID,
		Score:       score,
		Challenge:   challenge,
		PlaySession: token,
	})
	if err != nil {
		s.logger.Warn("cannot save score", "error", err)
	}
}

func (s *Session) record(e storage.EventEntry) {
	if s.recorder == nil {
		return
	}
	e.GameID = s.cfg.GameID
	if _, err := s.recorder.LogEvent(e); err != nil {
		s.logger.Warn("cannot log event", "error", err)
	}
}

// push queues an event for readers, dropping the oldest when full.
func (s *Session) push(ev protocol.Event) {
	select {
	case s.events <- ev:
		return
	default:
	}
	select {
	case <-s.events:
	default:
	}
	select {
	case s.events <- ev:
	default:
	}
}

// Run reads events from src until it is exhausted or ctx is cancelled.
func (s *Session) Run(ctx context.Context, src bridge.Source) error {
	for {
		data, err := src.Receive(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, bridge.ErrClosed) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("host: receive: %w", err)
		}
		if err := s.Deliver(data); err != nil {
			s.logger.Debug("event dropped", "error", err)
		}
	}
}
