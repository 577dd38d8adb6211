package api

import (
	"context"
	"time"

	"github.com/example/chat-relay/domain/chat"
	"github.com/example/chat-relay/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// eventNotifier publishes completed session operations on the event bus.
// Publishing is best-effort; failures are logged and never surface to clients.
type eventNotifier struct {
	bus    mono.EventBus
	logger types.Logger
	now    func() time.Time
}

func newEventNotifier(bus mono.EventBus, logger types.Logger) *eventNotifier {
	return &eventNotifier{bus: bus, logger: logger, now: time.Now}
}

func (n *eventNotifier) UserJoined(_ context.Context, user chat.User, members int) {
	if n.bus == nil {
		return
	}
	event := events.UserJoinedEvent{
		ConnectionID: user.ID,
		Username:     user.Username,
		Room:         user.Room,
		Members:      members,
		Timestamp:    n.now(),
	}
	if err := events.UserJoinedV1.Publish(n.bus, event, nil); err != nil {
		n.logger.Warn("Failed to publish UserJoined event", "room", user.Room, "error", err)
	}
}

func (n *eventNotifier) UserLeft(_ context.Context, user chat.User, members int) {
	if n.bus == nil {
		return
	}
	event := events.UserLeftEvent{
		ConnectionID: user.ID,
		Username:     user.Username,
		Room:         user.Room,
		Members:      members,
		Timestamp:    n.now(),
	}
	if err := events.UserLeftV1.Publish(n.bus, event, nil); err != nil {
		n.logger.Warn("Failed to publish UserLeft event", "room", user.Room, "error", err)
	}
}

func (n *eventNotifier) MessageSent(_ context.Context, user chat.User) {
	if n.bus == nil {
		return
	}
	event := events.MessageSentEvent{
		ConnectionID: user.ID,
		Username:     user.Username,
		Room:         user.Room,
		Timestamp:    n.now(),
	}
	if err := events.MessageSentV1.Publish(n.bus, event, nil); err != nil {
		n.logger.Warn("Failed to publish MessageSent event", "room", user.Room, "error", err)
	}
}

func (n *eventNotifier) LocationShared(_ context.Context, user chat.User, url string) {
	if n.bus == nil {
		return
	}
	event := events.LocationSharedEvent{
		ConnectionID: user.ID,
		Username:     user.Username,
		Room:         user.Room,
		URL:          url,
		Timestamp:    n.now(),
	}
	if err := events.LocationSharedV1.Publish(n.bus, event, nil); err != nil {
		n.logger.Warn("Failed to publish LocationShared event", "room", user.Room, "error", err)
	}
}
