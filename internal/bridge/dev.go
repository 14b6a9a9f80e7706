package bridge

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/arcade-sdk/internal/protocol"
)

// DefaultDevDelay is how long the development host waits before starting a
// new game.
const DefaultDevDelay = 3 * time.Second

// DevTransport stands in for a host during local development. Posted events
// are logged and StartNewGame simulates the player tapping play.
type DevTransport struct {
	logger *log.Logger
	delay  time.Duration

	mu      sync.Mutex
	deliver func([]byte) error
	timers  []*time.Timer
	closed  bool
}

// NewDevTransport creates a development host. A delay of zero selects
// DefaultDevDelay.
func NewDevTransport(logger *log.Logger, delay time.Duration) *DevTransport {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if delay <= 0 {
		delay = DefaultDevDelay
	}
	return &DevTransport{logger: logger, delay: delay}
}

// Attach sets where simulated host commands are delivered, usually
// Bridge.HandleMessage.
func (d *DevTransport) Attach(deliver func([]byte) error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deliver = deliver
}

// Send logs an outbound message.
func (d *DevTransport) Send(data []byte) error {
	d.logger.Info("posted", "event", string(data))
	return nil
}

// StartNewGame sends playGame with a fresh session token after the delay.
func (d *DevTransport) StartNewGame() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.logger.Info("starting new game", "in", d.delay)
	d.timers = append(d.timers, time.AfterFunc(d.delay, d.play))
}

func (d *DevTransport) play() {
	d.mu.Lock()
	deliver, closed := d.deliver, d.closed
	d.mu.Unlock()
	if closed || deliver == nil {
		return
	}

	data, err := protocol.EncodeCommand(protocol.Command{
		Type:         protocol.CommandPlayGame,
		GamePlayUUID: uuid.NewString(),
	})
	if err != nil {
		d.logger.Error("cannot encode command", "error", err)
		return
	}
	if err := deliver(data); err != nil {
		d.logger.Error("simulated play failed", "error", err)
		return
	}
	d.logger.Info("started new game")
}

// Close cancels pending simulated commands.
func (d *DevTransport) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for _, t := range d.timers {
		t.Stop()
	}
	d.timers = nil
	return nil
}
