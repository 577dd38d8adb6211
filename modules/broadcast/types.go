package broadcast

import (
	"encoding/json"
	"time"
)

// Frame is the JSON envelope written to and read from WebSocket clients.
type Frame struct {
	Type    string          `json:"type"`
	ID      uint64          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
}

// NewFrame encodes payload into a frame of the given type.
func NewFrame(frameType string, payload any) (Frame, error) {
	frame := Frame{Type: frameType}
	if payload == nil {
		return frame, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	frame.Payload = data
	return frame, nil
}

// Conn is the write side of a client connection.
// *websocket.Conn from gofiber/contrib satisfies it.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Config holds hub tuning parameters.
type Config struct {
	// SendBuffer is the number of frames queued per client before deliveries are dropped.
	SendBuffer int

	// WriteTimeout bounds a single frame write.
	WriteTimeout time.Duration
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SendBuffer:   256,
		WriteTimeout: 10 * time.Second,
	}
}

// Option is a function that modifies Config.
type Option func(*Config)

// WithSendBuffer sets the per-client queue length.
func WithSendBuffer(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.SendBuffer = n
		}
	}
}

// WithWriteTimeout sets the per-frame write deadline.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.WriteTimeout = d
		}
	}
}
