// Package directory keeps the in-memory registry of connected users and
// enforces per-room username uniqueness.
package directory

import (
	"sort"
	"strings"
	"sync"

	"github.com/example/chat-relay/domain/chat"
)

type roomKey struct {
	room     string
	username string
}

// Directory maps connection identifiers to users.
// All operations are serialized by a single mutex.
type Directory struct {
	mu     sync.RWMutex
	users  []chat.User          // insertion order
	byConn map[string]chat.User // connectionID -> User
	taken  map[roomKey]string   // (room, username) -> connectionID
}

// New creates an empty Directory.
func New() *Directory {
	return &Directory{
		byConn: make(map[string]chat.User),
		taken:  make(map[roomKey]string),
	}
}

// Normalize trims and lower-cases a username or room name.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AddUser registers a user for connectionID in room.
// It fails with chat.ErrUsernameRoomRequired when either name is empty after
// normalization and with chat.ErrUsernameTaken when the room already has a
// user with the same name. Nothing is stored on failure.
func (d *Directory) AddUser(connectionID, username, room string) (chat.User, error) {
	username = Normalize(username)
	room = Normalize(room)
	if username == "" || room == "" {
		return chat.User{}, chat.ErrUsernameRoomRequired
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	key := roomKey{room: room, username: username}
	if _, exists := d.taken[key]; exists {
		return chat.User{}, chat.ErrUsernameTaken
	}
	if _, exists := d.byConn[connectionID]; exists {
		return chat.User{}, chat.ErrAlreadyJoined
	}

	user := chat.User{ID: connectionID, Username: username, Room: room}
	d.users = append(d.users, user)
	d.byConn[connectionID] = user
	d.taken[key] = connectionID
	return user, nil
}

// RemoveUser removes and returns the user for connectionID.
// The second call for the same connection reports false.
func (d *Directory) RemoveUser(connectionID string) (chat.User, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.byConn[connectionID]
	if !ok {
		return chat.User{}, false
	}
	delete(d.byConn, connectionID)
	delete(d.taken, roomKey{room: user.Room, username: user.Username})
	for i := range d.users {
		if d.users[i].ID == connectionID {
			d.users = append(d.users[:i], d.users[i+1:]...)
			break
		}
	}
	return user, true
}

// GetUser returns the user registered for connectionID.
func (d *Directory) GetUser(connectionID string) (chat.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	user, ok := d.byConn[connectionID]
	return user, ok
}

// GetUsersInRoom returns the users of room in join order.
// room is compared as given; callers pass the normalized value.
func (d *Directory) GetUsersInRoom(room string) []chat.User {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]chat.User, 0)
	for _, user := range d.users {
		if user.Room == room {
			result = append(result, user)
		}
	}
	return result
}

// Rooms returns every room with at least one member, sorted by name.
func (d *Directory) Rooms() []chat.RoomSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()

	counts := make(map[string]int)
	for _, user := range d.users {
		counts[user.Room]++
	}
	result := make([]chat.RoomSummary, 0, len(counts))
	for room, members := range counts {
		result = append(result, chat.RoomSummary{Room: room, Members: members})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Room < result[j].Room
	})
	return result
}

// Count returns the number of registered users.
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}
