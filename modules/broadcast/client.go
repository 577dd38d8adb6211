package broadcast

import (
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
)

// Client is a registered connection with its own outbound queue.
type Client struct {
	ID   string
	Room string

	conn         Conn
	send         chan []byte
	done         chan struct{}
	writeTimeout time.Duration
	logger       types.Logger
}

func newClient(id string, conn Conn, cfg Config, logger types.Logger) *Client {
	return &Client{
		ID:           id,
		conn:         conn,
		send:         make(chan []byte, cfg.SendBuffer),
		done:         make(chan struct{}),
		writeTimeout: cfg.WriteTimeout,
		logger:       logger,
	}
}

// writePump drains the queue until it is closed. A failed write closes the
// connection so the reader side observes the disconnect.
func (c *Client) writePump() {
	defer close(c.done)

	for data := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			c.logger.Warn("Failed to set write deadline", "connID", c.ID, "error", err)
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			c.logger.Warn("Failed to write frame", "connID", c.ID, "error", err)
			_ = c.conn.Close()
			for range c.send {
			}
			return
		}
	}
}
