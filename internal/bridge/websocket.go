package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/coder/websocket"
)

const writeTimeout = 3 * time.Second

// WebSocketTransport carries protocol messages over a WebSocket connection.
// The game side dials the host; the host side wraps accepted connections.
type WebSocketTransport struct {
	conn *websocket.Conn
}

// DialWebSocket connects to a host listening at url.
func DialWebSocket(ctx context.Context, url string) (*WebSocketTransport, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("bridge: cannot dial %s: %w", url, err)
	}
	return NewWebSocketTransport(conn), nil
}

// NewWebSocketTransport wraps an established connection.
func NewWebSocketTransport(conn *websocket.Conn) *WebSocketTransport {
	return &WebSocketTransport{conn: conn}
}

// Send writes one text message.
func (w *WebSocketTransport) Send(data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := w.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("bridge: websocket write: %w", err)
	}
	return nil
}

// Receive reads the next message. A normal closure by the peer is reported
// as io.EOF.
func (w *WebSocketTransport) Receive(ctx context.Context) ([]byte, error) {
	_, data, err := w.conn.Read(ctx)
	if err != nil {
		status := websocket.CloseStatus(err)
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			return nil, io.EOF
		}
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("bridge: websocket read: %w", err)
	}
	return data, nil
}

// Close closes the connection normally.
func (w *WebSocketTransport) Close() error {
	return w.conn.Close(websocket.StatusNormalClosure, "")
}
