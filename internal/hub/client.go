package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
)

const (
	pingInterval = 30 * time.Second
	readLimit    = 4096
)

type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	hub  *Hub

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 16),
		hub:  hub,
		done: make(chan struct{}),
	}
}

// close stops the write pump. send is never closed so late writers cannot
// panic.
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregisterClient(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(readLimit)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && ctx.Err() == nil {
				c.hub.logger.Debug("client read error", "client", c.id, "error", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.hub.SendError(c, "invalid message format")
			continue
		}

		switch msg.Type {
		case "ping":
			c.hub.sendTo(c, ServerMessage{Type: TypePong})
		case "sync":
			if state := c.hub.currentState(); state != nil {
				c.enqueue(state)
			}
		default:
			c.hub.SendError(c, "unknown message type: "+msg.Type)
		}
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case <-ctx.Done():
			c.conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case msg := <-c.send:
			if err := c.conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// enqueue drops the message when the client is not keeping up; the next
// catalog message supersedes it anyway.
func (c *Client) enqueue(data []byte) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- data:
	default:
		c.hub.logger.Warn("client send buffer full, dropping message", "client", c.id)
	}
}
