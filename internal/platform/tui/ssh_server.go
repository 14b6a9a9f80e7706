package tui

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/arcade-sdk/internal/config"
	"github.com/vovakirdan/arcade-sdk/internal/host"
	"github.com/vovakirdan/arcade-sdk/internal/registry"
	"github.com/vovakirdan/arcade-sdk/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on.
	Address string

	// HostKeyPath is the path to the host key file. Wish generates the key
	// when the file does not exist.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	ChallengeNumber int
	TickRate        int
	EventBuffer     int
	Games           config.GamesConfig
}

// NewSSHServerConfig derives the server settings from the arcade config.
func NewSSHServerConfig(cfg *config.Config) SSHServerConfig {
	return SSHServerConfig{
		Address:         net.JoinHostPort(cfg.SSH.Host, strconv.Itoa(cfg.SSH.Port)),
		HostKeyPath:     config.ExpandHome(cfg.SSH.HostKeyPath),
		IdleTimeout:     30 * time.Minute,
		ChallengeNumber: cfg.SDK.ChallengeNumber,
		TickRate:        DefaultTickRate,
		EventBuffer:     cfg.Host.PipeBuffer,
		Games:           cfg.Games,
	}
}

// SSHServer serves the host console to SSH clients. Every connection hosts
// its own game instances.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a new SSH server. store may be nil.
func NewSSHServer(cfg SSHServerConfig, store *storage.Store, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	if cfg.HostKeyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("tui: cannot get home directory: %w", err)
		}
		cfg.HostKeyPath = filepath.Join(home, ".arcade", "ssh_host_ed25519")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.HostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("tui: cannot create host key directory: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tui: cannot create SSH server: %w", err)
	}
	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	model := NewSessionModel(SessionOptions{
		Store:           s.store,
		Logger:          s.logger.With("user", sshSession.User()),
		ChallengeNumber: s.config.ChallengeNumber,
		TickRate:        s.config.TickRate,
		EventBuffer:     s.config.EventBuffer,
		Games:           s.config.Games,
		Width:           pty.Window.Width,
		Height:          pty.Window.Height,
	})
	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			return fmt.Errorf("tui: SSH server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// SessionOptions configures a SessionModel.
type SessionOptions struct {
	Store           *storage.Store
	Logger          *log.Logger
	ChallengeNumber int
	TickRate        int
	EventBuffer     int
	Games           config.GamesConfig
	Width, Height   int
}

type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenConsole
	screenScores
)

// SessionModel manages the full flow of one SSH session: menu, console and
// scoreboard.
type SessionModel struct {
	opts       SessionOptions
	screen     sessionScreen
	menu       MenuModel
	console    ConsoleModel
	local      *host.Local
	scoreboard ScoreboardModel
	err        string
	quitting   bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(opts SessionOptions) SessionModel {
	return SessionModel{
		opts: opts,
		menu: NewMenuModel(opts.Width, opts.Height),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.opts.Width = wsm.Width
		m.opts.Height = wsm.Height
	}

	switch m.screen {
	case screenConsole:
		return m.updateConsole(msg)
	case screenScores:
		return m.updateScores(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	if menu, ok := next.(MenuModel); ok {
		m.menu = menu
	}

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	// The menu quits its program on a choice; inside a session the quit
	// command is dropped and the session switches screens instead.
	case m.menu.WantsScoreboard():
		m.scoreboard = NewScoreboardModel(m.opts.Store, m.opts.Width, m.opts.Height)
		m.screen = screenScores
		return m, m.scoreboard.Init()

	case m.menu.Selected() != nil:
		local, err := m.startGame(m.menu.Selected().ID)
		if err != nil {
			m.err = err.Error()
			m.menu = NewMenuModel(m.opts.Width, m.opts.Height).WithLegacy(m.menu.Legacy())
			return m, nil
		}
		m.err = ""
		m.local = local
		m.console = NewConsoleModel(local, ConsoleOptions{
			TickRate: m.opts.TickRate,
			Legacy:   m.menu.Legacy(),
			Embedded: true,
		})
		next, _ := m.console.Update(tea.WindowSizeMsg{Width: m.opts.Width, Height: m.opts.Height})
		m.console = next.(ConsoleModel)
		m.screen = screenConsole
		return m, m.console.Init()
	}

	return m, cmd
}

func (m SessionModel) startGame(id string) (*host.Local, error) {
	game, err := registry.Create(id, m.opts.Games)
	if err != nil {
		return nil, err
	}
	var rec host.Recorder
	if m.opts.Store != nil {
		rec = m.opts.Store
	}
	return host.NewLocal(game, host.Config{
		ChallengeNumber: m.opts.ChallengeNumber,
		EventBuffer:     m.opts.EventBuffer,
	}, rec, m.opts.Logger)
}

func (m SessionModel) updateConsole(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.console.Update(msg)
	if console, ok := next.(ConsoleModel); ok {
		m.console = console
	}

	if m.console.IsQuitting() {
		m.closeGame()
		m.quitting = true
		return m, tea.Quit
	}
	if m.console.BackToMenu() {
		m.closeGame()
		m.menu = NewMenuModel(m.opts.Width, m.opts.Height).WithLegacy(m.menu.Legacy())
		m.screen = screenMenu
		return m, m.menu.Init()
	}
	return m, cmd
}

func (m *SessionModel) closeGame() {
	if m.local != nil {
		_ = m.local.Close()
		m.local = nil
	}
}

func (m SessionModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.scoreboard.Update(msg)
	if sb, ok := next.(ScoreboardModel); ok {
		m.scoreboard = sb
	}

	if m.scoreboard.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.scoreboard.IsGoingBack() {
		m.menu = NewMenuModel(m.opts.Width, m.opts.Height).WithLegacy(m.menu.Legacy())
		m.screen = screenMenu
		return m, m.menu.Init()
	}
	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	switch m.screen {
	case screenConsole:
		return m.console.View()
	case screenScores:
		return m.scoreboard.View()
	}
	if m.err != "" {
		return m.menu.View() + "\n" + errorStyle.Render(m.err)
	}
	return m.menu.View()
}
