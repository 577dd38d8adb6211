package api

import (
	"context"
	"encoding/json"

	"github.com/example/chat-relay/domain/chat"
	"github.com/example/chat-relay/modules/broadcast"
	"github.com/example/chat-relay/modules/session"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// connection dispatches the frames of one WebSocket client to its coordinator.
// Replies go through the hub so they share the client's single writer.
type connection struct {
	id          string
	coordinator *session.Coordinator
	limiter     *rateLimiter
	hub         *broadcast.Hub
	logger      types.Logger
}

func (m *Module) newConnection(connID string) *connection {
	return &connection{
		id:          connID,
		coordinator: m.sessions.NewCoordinator(connID),
		limiter:     newRateLimiter(m.config.RateLimitBurst, m.config.RateLimitPerSecond),
		hub:         m.hub,
		logger:      m.logger.With("connID", connID),
	}
}

// handleWebSocket handles WebSocket connections at /ws.
func (m *Module) handleWebSocket(c *websocket.Conn) {
	connID := uuid.New().String()
	c.SetReadLimit(m.config.MaxMessageSize)

	m.hub.Register(connID, c)
	conn := m.newConnection(connID)
	defer func() {
		conn.coordinator.Disconnect(context.Background())
		m.hub.Unregister(connID)
		conn.logger.Info("WebSocket client disconnected")
	}()

	conn.logger.Info("WebSocket client connected", "remote", c.RemoteAddr().String())

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				conn.logger.Warn("WebSocket read error", "error", err)
			}
			return
		}
		conn.handle(context.Background(), data)
	}
}

// handle decodes and dispatches one inbound frame.
func (c *connection) handle(ctx context.Context, data []byte) {
	var frame broadcast.Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		c.sendError(0, "invalid message format")
		return
	}

	switch frame.Type {
	case FrameJoin:
		var req JoinPayload
		if err := decodePayload(frame.Payload, &req); err != nil {
			c.ack(frame.ID, err)
			return
		}
		c.ack(frame.ID, c.coordinator.Join(ctx, req.Username, req.Room))

	case FrameSendMessage:
		if !c.limiter.allow() {
			c.reply(broadcast.Frame{
				Type:  FrameAck,
				ID:    frame.ID,
				Error: "rate limit exceeded, please slow down",
				Code:  codeRateLimited,
			})
			return
		}
		var req MessagePayload
		if err := decodePayload(frame.Payload, &req); err != nil {
			c.ack(frame.ID, err)
			return
		}
		c.ack(frame.ID, c.coordinator.SendMessage(ctx, req.Text))

	case FrameSendLocation:
		if !c.limiter.allow() {
			c.reply(broadcast.Frame{
				Type:  FrameAck,
				ID:    frame.ID,
				Error: "rate limit exceeded, please slow down",
				Code:  codeRateLimited,
			})
			return
		}
		var req chat.Coordinates
		if err := decodePayload(frame.Payload, &req); err != nil {
			c.ack(frame.ID, err)
			return
		}
		c.ack(frame.ID, c.coordinator.SendLocation(ctx, req))

	default:
		c.sendError(frame.ID, "unknown message type: "+frame.Type)
	}
}

var errInvalidPayload = &chat.Error{Kind: chat.KindValidation, Message: "invalid payload"}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errInvalidPayload
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errInvalidPayload
	}
	return nil
}

// ack reports the outcome of a request; err == nil means success.
func (c *connection) ack(id uint64, err error) {
	frame := broadcast.Frame{Type: FrameAck, ID: id}
	if err != nil {
		frame.Error = err.Error()
		frame.Code = string(chat.KindOf(err))
	}
	c.reply(frame)
}

func (c *connection) sendError(id uint64, message string) {
	c.reply(broadcast.Frame{
		Type:  FrameError,
		ID:    id,
		Error: message,
		Code:  string(chat.KindValidation),
	})
}

func (c *connection) reply(frame broadcast.Frame) {
	if !c.hub.SendFrame(c.id, frame) {
		c.logger.Debug("Reply dropped", "type", frame.Type, "id", frame.ID)
	}
}
