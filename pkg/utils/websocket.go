package utils

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket keepalive timing.
const (
	WSPongWait     = 60 * time.Second
	WSPingInterval = 54 * time.Second
	wsWriteWait    = 10 * time.Second
)

// WSConn serializes writes to a gorilla connection, which allows one concurrent writer only.
type WSConn struct {
	*websocket.Conn
	mu sync.Mutex
}

// NewWSConn wraps conn and arms the read deadline and pong handler.
func NewWSConn(conn *websocket.Conn) *WSConn {
	conn.SetReadDeadline(time.Now().Add(WSPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(WSPongWait))
	})
	return &WSConn{Conn: conn}
}

// WriteJSON writes v as a single text frame.
func (c *WSConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.Conn.WriteJSON(v)
}

// PingLoop pings the peer until ctx is done or a write fails.
func (c *WSConn) PingLoop(ctx context.Context) {
	ticker := time.NewTicker(WSPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
			c.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
