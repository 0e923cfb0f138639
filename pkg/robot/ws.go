package robot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teslashibe/go-urdfpose/internal/log"
	"github.com/teslashibe/go-urdfpose/pkg/protocol"
)

// ErrClosed is returned when writing to a closed controller.
var ErrClosed = errors.New("controller closed")

const wsWriteWait = 2 * time.Second

// WSController streams joint messages to a remote viewer's websocket.
type WSController struct {
	url  string
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// DialWS connects to url, e.g. "ws://viewer:8080/ws/joints".
func DialWS(ctx context.Context, url string) (*WSController, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}

	c := &WSController{url: url, conn: conn, done: make(chan struct{})}
	go c.readLoop()
	return c, nil
}

// SetJointValues sends a joints message with values in radians.
func (c *WSController) SetJointValues(values map[string]float64) error {
	msg, err := protocol.NewJointsMessage(values, SourceRemote)
	if err != nil {
		return err
	}
	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Done is closed when the connection ends.
func (c *WSController) Done() <-chan struct{} {
	return c.done
}

// Close sends a close frame and closes the connection.
func (c *WSController) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.mu.Unlock()
	return c.conn.Close()
}

// readLoop drains broadcasts from the viewer so control frames are handled.
func (c *WSController) readLoop() {
	defer close(c.done)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.mu.Lock()
			closed := c.closed
			c.closed = true
			c.mu.Unlock()
			if !closed {
				log.Warn("viewer connection lost", "url", c.url, "error", err)
			}
			return
		}
	}
}
