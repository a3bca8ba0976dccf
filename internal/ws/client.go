package ws

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	writeDeadline = 10 * time.Second
	pongWait      = 60 * time.Second
	pingInterval  = 30 * time.Second
	maxMessage    = 64 * 1024
)

// Client is one websocket connection bound to a family room.
type Client struct {
	conn     *websocket.Conn
	userID   string
	familyID string
	send     chan []byte
}

func NewClient(conn *websocket.Conn, userID, familyID string) *Client {
	return &Client{
		conn:     conn,
		userID:   userID,
		familyID: familyID,
		send:     make(chan []byte, 64),
	}
}

func (c *Client) UserID() string { return c.userID }

// Send queues data for the write pump, dropping when the client is slow.
func (c *Client) Send(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) Close() {
	close(c.send)
}

// ReadPump consumes (and discards) inbound frames until the connection
// drops; the portal's socket is server-push only.
func (c *Client) ReadPump(hub *Hub) {
	defer func() {
		hub.Leave(c.familyID, c)
		c.Close()
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// WritePump flushes queued messages and keeps the connection alive with
// pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(time.Second))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}
