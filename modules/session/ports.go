package session

import (
	"context"

	"github.com/example/chat-relay/domain/chat"
)

// Outbound event names.
const (
	EventMessage         = "message"
	EventLocationMessage = "locationMessage"
	EventRoomData        = "roomData"
)

// Directory is the membership registry a coordinator mutates.
// *directory.Directory satisfies it.
type Directory interface {
	AddUser(connectionID, username, room string) (chat.User, error)
	RemoveUser(connectionID string) (chat.User, bool)
	GetUser(connectionID string) (chat.User, bool)
	GetUsersInRoom(room string) []chat.User
}

// Broadcaster delivers events to one connection or a room group.
// *broadcast.Hub satisfies it.
type Broadcaster interface {
	Subscribe(connID, room string) bool
	Unsubscribe(connID string)
	Send(connID, event string, payload any) bool
	BroadcastToRoom(room, event string, payload any, exceptConnID string) int
}

// ProfanityChecker flags text that must not be relayed.
type ProfanityChecker interface {
	IsProfane(text string) bool
}

// Renderer turns a sender and content into timestamped outbound payloads.
type Renderer interface {
	RenderMessage(sender, text string) chat.RenderedMessage
	RenderLocationMessage(sender, url string) chat.LocationMessage
}

// Notifier is told about completed operations.
type Notifier interface {
	UserJoined(ctx context.Context, user chat.User, members int)
	UserLeft(ctx context.Context, user chat.User, members int)
	MessageSent(ctx context.Context, user chat.User)
	LocationShared(ctx context.Context, user chat.User, url string)
}

type nopNotifier struct{}

func (nopNotifier) UserJoined(context.Context, chat.User, int)        {}
func (nopNotifier) UserLeft(context.Context, chat.User, int)          {}
func (nopNotifier) MessageSent(context.Context, chat.User)            {}
func (nopNotifier) LocationShared(context.Context, chat.User, string) {}
