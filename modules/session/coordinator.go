package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/chat-relay/domain/chat"
	"github.com/go-monolith/mono/pkg/types"
)

// State is the lifecycle position of a connection.
type State int

// Session states.
const (
	StateConnected State = iota
	StateJoined
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Coordinator handles the requests of a single connection.
// Callers process one connection's requests sequentially; Disconnect may be
// called concurrently and from several places.
type Coordinator struct {
	connID  string
	service *Service
	logger  types.Logger

	mu        sync.Mutex
	state     State
	closeOnce sync.Once
}

// State returns the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Join registers the connection as username in room and announces it.
// On error nothing is broadcast and the session stays connected.
func (c *Coordinator) Join(ctx context.Context, username, room string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateJoined:
		return chat.ErrAlreadyJoined
	case StateClosed:
		return chat.ErrSessionClosed
	}

	s := c.service
	s.membership.Lock()
	user, err := s.directory.AddUser(c.connID, username, room)
	if err != nil {
		s.membership.Unlock()
		c.logger.Debug("Join rejected", "username", username, "room", room, "error", err)
		return err
	}
	c.state = StateJoined

	s.broadcaster.Subscribe(c.connID, user.Room)
	s.broadcaster.Send(c.connID, EventMessage, s.renderer.RenderMessage(chat.AdminName, "Welcome!"))
	s.broadcaster.BroadcastToRoom(user.Room, EventMessage,
		s.renderer.RenderMessage(chat.AdminName, fmt.Sprintf("%s has joined!", user.Username)), c.connID)

	members := s.directory.GetUsersInRoom(user.Room)
	s.broadcaster.BroadcastToRoom(user.Room, EventRoomData, chat.RoomData{Room: user.Room, Users: members}, "")
	s.membership.Unlock()

	c.logger.Info("User joined room", "username", user.Username, "room", user.Room, "members", len(members))
	s.notifier.UserJoined(ctx, user, len(members))
	return nil
}

// SendMessage relays text to every member of the sender's room, sender included.
func (c *Coordinator) SendMessage(ctx context.Context, text string) error {
	s := c.service
	if s.profanity.IsProfane(text) {
		c.logger.Debug("Message rejected by profanity filter")
		return chat.ErrProfanity
	}

	user, ok := s.directory.GetUser(c.connID)
	if !ok {
		c.logger.Debug("Message from connection without user")
		return chat.ErrUserNotFound
	}

	s.broadcaster.BroadcastToRoom(user.Room, EventMessage, s.renderer.RenderMessage(user.Username, text), "")
	s.notifier.MessageSent(ctx, user)
	return nil
}

// SendLocation relays a map link for coords to every member of the sender's room.
func (c *Coordinator) SendLocation(ctx context.Context, coords chat.Coordinates) error {
	s := c.service
	user, ok := s.directory.GetUser(c.connID)
	if !ok {
		c.logger.Debug("Location from connection without user")
		return chat.ErrUserNotFound
	}

	url := LocationURL(coords)
	s.broadcaster.BroadcastToRoom(user.Room, EventLocationMessage, s.renderer.RenderLocationMessage(user.Username, url), "")
	s.notifier.LocationShared(ctx, user, url)
	return nil
}

// Disconnect removes the connection's user and tells the remaining members.
// Only the first call has any effect.
func (c *Coordinator) Disconnect(ctx context.Context) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()

		s := c.service
		s.membership.Lock()
		user, removed := s.directory.RemoveUser(c.connID)
		s.broadcaster.Unsubscribe(c.connID)
		if !removed {
			s.membership.Unlock()
			c.logger.Debug("Connection closed before joining")
			return
		}

		s.broadcaster.BroadcastToRoom(user.Room, EventMessage,
			s.renderer.RenderMessage(chat.AdminName, fmt.Sprintf("%s has left!", user.Username)), c.connID)

		members := s.directory.GetUsersInRoom(user.Room)
		s.broadcaster.BroadcastToRoom(user.Room, EventRoomData, chat.RoomData{Room: user.Room, Users: members}, c.connID)
		s.membership.Unlock()

		c.logger.Info("User left room", "username", user.Username, "room", user.Room, "members", len(members))
		s.notifier.UserLeft(ctx, user, len(members))
	})
}

// LocationURL renders coords as a map link.
func LocationURL(coords chat.Coordinates) string {
	return fmt.Sprintf("https://google.com/maps?q=%v,%v", coords.Latitude, coords.Longitude)
}
