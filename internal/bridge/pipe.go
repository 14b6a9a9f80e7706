package bridge

import (
	"context"
	"io"
	"sync"
)

const defaultPipeBuffer = 64

// ChannelEndpoint is one side of an in-process pipe. It implements both
// Transport and Source.
type ChannelEndpoint struct {
	in   chan []byte
	out  chan []byte
	done chan struct{}
	once *sync.Once
}

// Pipe returns two connected endpoints: what one sends the other receives.
// buffer controls how many messages may queue per direction before Send
// fails with ErrFull.
func Pipe(buffer int) (*ChannelEndpoint, *ChannelEndpoint) {
	if buffer < 1 {
		buffer = defaultPipeBuffer
	}
	ab := make(chan []byte, buffer)
	ba := make(chan []byte, buffer)
	done := make(chan struct{})
	once := &sync.Once{}
	return &ChannelEndpoint{in: ba, out: ab, done: done, once: once},
		&ChannelEndpoint{in: ab, out: ba, done: done, once: once}
}

// Send queues data for the peer without blocking. Queued messages are never
// dropped: if the buffer is full, Send fails with ErrFull.
func (e *ChannelEndpoint) Send(data []byte) error {
	select {
	case <-e.done:
		return ErrClosed
	default:
	}

	msg := append([]byte(nil), data...)
	select {
	case e.out <- msg:
		return nil
	default:
		return ErrFull
	}
}

// Receive waits for the next message from the peer. Messages already queued
// are still delivered after Close; then io.EOF is returned.
func (e *ChannelEndpoint) Receive(ctx context.Context) ([]byte, error) {
	select {
	case msg := <-e.in:
		return msg, nil
	default:
	}

	select {
	case msg := <-e.in:
		return msg, nil
	case <-e.done:
		select {
		case msg := <-e.in:
			return msg, nil
		default:
			return nil, io.EOF
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done returns a channel closed when the pipe is closed.
func (e *ChannelEndpoint) Done() <-chan struct{} {
	return e.done
}

// Close shuts down both ends of the pipe. Safe to call multiple times.
func (e *ChannelEndpoint) Close() error {
	e.once.Do(func() {
		close(e.done)
	})
	return nil
}
