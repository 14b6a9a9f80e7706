// Package bridge connects a game session to its host: it resolves the host
// transport, posts outbound events and turns inbound messages into commands.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/arcade-sdk/internal/protocol"
)

// ErrClosed is returned by transports used after Close.
var ErrClosed = errors.New("bridge: transport closed")

// ErrFull is returned when a buffered transport cannot take another message.
// The message is not delivered.
var ErrFull = errors.New("bridge: transport buffer full")

// Transport delivers encoded outbound messages to the host.
type Transport interface {
	Send(data []byte) error
}

// Source yields inbound messages. Receive returns io.EOF once the source is
// exhausted.
type Source interface {
	Receive(ctx context.Context) ([]byte, error)
}

// PostFunc is a host-installed hook receiving outbound messages.
type PostFunc func(data []byte) error

// Send implements Transport.
func (f PostFunc) Send(data []byte) error { return f(data) }

// Mode names the transport Resolve selected.
type Mode int

const (
	ModeHook Mode = iota
	ModeNative
	ModeParent
	ModeDev
)

func (m Mode) String() string {
	switch m {
	case ModeHook:
		return "hook"
	case ModeNative:
		return "native"
	case ModeParent:
		return "parent"
	default:
		return "dev"
	}
}

// Environment lists the host channels available to a game.
type Environment struct {
	Hook   PostFunc  // explicitly installed post hook
	Native Transport // in-process embedding
	Parent Transport // remote parent frame
}

// Resolve picks the outbound transport: the installed hook, then the native
// embedding, then the parent. With none available it reports ModeDev and a
// nil transport.
func (e Environment) Resolve() (Transport, Mode) {
	switch {
	case e.Hook != nil:
		return e.Hook, ModeHook
	case e.Native != nil:
		return e.Native, ModeNative
	case e.Parent != nil:
		return e.Parent, ModeParent
	default:
		return nil, ModeDev
	}
}

// Handler receives decoded commands, including ones with unrecognized tags.
type Handler interface {
	HandleCommand(cmd protocol.Command) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(cmd protocol.Command) error

// HandleCommand implements Handler.
func (f HandlerFunc) HandleCommand(cmd protocol.Command) error { return f(cmd) }

// Bridge couples one transport with one command handler.
type Bridge struct {
	transport Transport
	handler   Handler
	logger    *log.Logger
}

// New creates a bridge. A nil logger discards output.
func New(transport Transport, handler Handler, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Bridge{transport: transport, handler: handler, logger: logger}
}

// Post encodes an event in its envelope and sends it to the host.
func (b *Bridge) Post(ev protocol.Event) error {
	data, err := protocol.EncodeEvent(ev)
	if err != nil {
		return fmt.Errorf("bridge: cannot encode %s: %w", ev.Type(), err)
	}
	if b.transport == nil {
		return fmt.Errorf("bridge: no transport for %s", ev.Type())
	}
	if err := b.transport.Send(data); err != nil {
		return fmt.Errorf("bridge: cannot post %s: %w", ev.Type(), err)
	}
	return nil
}

// HandleMessage decodes one inbound message. Messages that are not command
// envelopes are ignored. Commands with unrecognized tags are still handed to
// the handler, which decides how to fail.
func (b *Bridge) HandleMessage(data []byte) error {
	cmd, err := protocol.DecodeCommand(data)
	if errors.Is(err, protocol.ErrNotEnvelope) {
		b.logger.Debug("ignoring message", "size", len(data))
		return nil
	}
	var unknown *protocol.UnknownCommandError
	if errors.As(err, &unknown) {
		b.logger.Warn("unrecognized command", "type", unknown.Type)
	}
	if b.handler == nil {
		return nil
	}
	return b.handler.HandleCommand(cmd)
}

// Listen feeds messages from src to HandleMessage until ctx is done or the
// source is exhausted. Handler errors are logged and do not stop the loop.
func (b *Bridge) Listen(ctx context.Context, src Source) error {
	for {
		data, err := src.Receive(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrClosed) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("bridge: receive failed: %w", err)
		}
		if err := b.HandleMessage(data); err != nil {
			b.logger.Error("command failed", "error", err)
		}
	}
}
