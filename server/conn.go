package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"presenced/pkg/errors"
	"presenced/pkg/logger"
)

// wsConn wraps a websocket connection behind the registry's non-owning
// handle. The push adapter owns the socket lifecycle; the ID is unique to
// this socket lifetime and is never reused across reconnects.
type wsConn struct {
	id           string
	conn         *websocket.Conn
	send         chan []byte
	writeTimeout time.Duration
	mu           sync.RWMutex // guards closed and the send channel
	closed       bool
}

func newWSConn(conn *websocket.Conn, writeTimeout time.Duration, sendBuffer int) *wsConn {
	return &wsConn{
		id:           uuid.NewString(),
		conn:         conn,
		send:         make(chan []byte, sendBuffer),
		writeTimeout: writeTimeout,
	}
}

// ID returns the connection's unique identifier
func (c *wsConn) ID() string {
	return c.id
}

// Open reports whether the connection is still usable
func (c *wsConn) Open() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed
}

// Send queues one frame for delivery without blocking. A full buffer drops
// the frame; delivery is best-effort and never awaits acknowledgment.
func (c *wsConn) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.ErrConnClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return errors.ErrSendBufferFull
	}
}

// Close marks the handle closed and closes the socket. Safe to call more
// than once.
func (c *wsConn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// writePump drains the send queue onto the socket. It exits when the
// queue is closed or a write fails; write errors are logged only, removal
// happens through the close handler or the reaper.
func (c *wsConn) writePump(log *logger.Logger) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.WarnWith("websocket write failed", "conn", c.id, "error", err)
			return
		}
	}
}
