package api

import (
	"github.com/example/chat-relay/domain/chat"
	"github.com/example/chat-relay/modules/activity"
	"github.com/example/chat-relay/modules/telemetry"
)

// Inbound frame types.
const (
	FrameJoin         = "join"
	FrameSendMessage  = "sendMessage"
	FrameSendLocation = "sendLocation"
)

// Outbound control frame types.
const (
	FrameAck   = "ack"
	FrameError = "error"
)

// codeRateLimited marks acks rejected by the per-connection limiter.
const codeRateLimited = "rate_limited"

// JoinPayload is the payload of a join frame.
type JoinPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// MessagePayload is the payload of a sendMessage frame.
type MessagePayload struct {
	Text string `json:"text"`
}

// RoomListResponse is the API response for listing rooms.
type RoomListResponse struct {
	Rooms []chat.RoomSummary `json:"rooms"`
	Total int                `json:"total"`
}

// RoomUsersResponse is the API response for a room roster.
type RoomUsersResponse struct {
	Room  string      `json:"room"`
	Users []chat.User `json:"users"`
}

// RoomActivityResponse is the API response for room activity.
type RoomActivityResponse struct {
	Room   string             `json:"room"`
	Stats  activity.RoomStats `json:"stats"`
	Recent []activity.Entry   `json:"recent"`
}

// MetricsResponse is the API response for internal handler metrics.
type MetricsResponse struct {
	Handlers []telemetry.HandlerStats `json:"handlers"`
	Total    int                      `json:"total"`
}

// ErrorResponse is the API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the API health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
