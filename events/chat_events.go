package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// UserJoinedEvent is emitted after a user joined a room and the room was notified.
type UserJoinedEvent struct {
	ConnectionID string    `json:"connection_id"`
	Username     string    `json:"username"`
	Room         string    `json:"room"`
	Members      int       `json:"members"`
	Timestamp    time.Time `json:"timestamp"`
}

// UserLeftEvent is emitted after a user disconnected from a room.
type UserLeftEvent struct {
	ConnectionID string    `json:"connection_id"`
	Username     string    `json:"username"`
	Room         string    `json:"room"`
	Members      int       `json:"members"`
	Timestamp    time.Time `json:"timestamp"`
}

// MessageSentEvent is emitted after a chat message was broadcast to a room.
type MessageSentEvent struct {
	ConnectionID string    `json:"connection_id"`
	Username     string    `json:"username"`
	Room         string    `json:"room"`
	Timestamp    time.Time `json:"timestamp"`
}

// LocationSharedEvent is emitted after a location message was broadcast to a room.
type LocationSharedEvent struct {
	ConnectionID string    `json:"connection_id"`
	Username     string    `json:"username"`
	Room         string    `json:"room"`
	URL          string    `json:"url"`
	Timestamp    time.Time `json:"timestamp"`
}

// Event definitions for the relay domain.
var (
	UserJoinedV1 = helper.EventDefinition[UserJoinedEvent](
		"relay",
		"UserJoined",
		"v1",
	)

	UserLeftV1 = helper.EventDefinition[UserLeftEvent](
		"relay",
		"UserLeft",
		"v1",
	)

	MessageSentV1 = helper.EventDefinition[MessageSentEvent](
		"relay",
		"MessageSent",
		"v1",
	)

	LocationSharedV1 = helper.EventDefinition[LocationSharedEvent](
		"relay",
		"LocationShared",
		"v1",
	)
)
