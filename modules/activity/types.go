package activity

import (
	"sort"
	"sync"
	"time"
)

// Entry kinds.
const (
	KindJoined   = "joined"
	KindLeft     = "left"
	KindMessage  = "message"
	KindLocation = "location"
)

// Entry is one recorded room event.
type Entry struct {
	Kind     string    `json:"kind"`
	Room     string    `json:"room"`
	Username string    `json:"username"`
	At       time.Time `json:"at"`
}

// RoomStats aggregates the activity of a single room.
type RoomStats struct {
	Room         string    `json:"room"`
	Members      int       `json:"members"`
	Joins        int64     `json:"joins"`
	Leaves       int64     `json:"leaves"`
	Messages     int64     `json:"messages"`
	Locations    int64     `json:"locations"`
	LastActivity time.Time `json:"last_activity,omitempty"`
}

// DefaultMaxEntries is the default number of recent entries retained.
const DefaultMaxEntries = 1000

// Store provides thread-safe storage for room activity.
type Store struct {
	mu         sync.RWMutex
	entries    []Entry
	rooms      map[string]*RoomStats
	maxEntries int
}

// NewStore creates a store with the default entry limit.
func NewStore() *Store {
	return NewStoreWithLimit(DefaultMaxEntries)
}

// NewStoreWithLimit creates a store retaining at most maxEntries recent entries.
func NewStoreWithLimit(maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{
		entries:    make([]Entry, 0),
		rooms:      make(map[string]*RoomStats),
		maxEntries: maxEntries,
	}
}

// Record applies an entry to the room counters. members is the room size
// after the event, or -1 when the event does not change membership.
func (s *Store) Record(entry Entry, members int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
	if len(s.entries) > s.maxEntries {
		s.entries = s.entries[len(s.entries)-s.maxEntries:]
	}

	stats, ok := s.rooms[entry.Room]
	if !ok {
		stats = &RoomStats{Room: entry.Room}
		s.rooms[entry.Room] = stats
	}
	switch entry.Kind {
	case KindJoined:
		stats.Joins++
	case KindLeft:
		stats.Leaves++
	case KindMessage:
		stats.Messages++
	case KindLocation:
		stats.Locations++
	}
	if members >= 0 {
		stats.Members = members
	}
	if entry.At.After(stats.LastActivity) {
		stats.LastActivity = entry.At
	}
}

// Room returns the stats of room.
func (s *Store) Room(room string) (RoomStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, ok := s.rooms[room]
	if !ok {
		return RoomStats{Room: room}, false
	}
	return *stats, true
}

// Rooms returns the stats of every room seen, sorted by name.
func (s *Store) Rooms() []RoomStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]RoomStats, 0, len(s.rooms))
	for _, stats := range s.rooms {
		result = append(result, *stats)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Room < result[j].Room
	})
	return result
}

// Recent returns up to limit of the newest entries for room, newest first.
// An empty room matches every entry.
func (s *Store) Recent(room string, limit int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Entry, 0)
	for i := len(s.entries) - 1; i >= 0 && len(result) < limit; i-- {
		if room == "" || s.entries[i].Room == room {
			result = append(result, s.entries[i])
		}
	}
	return result
}

// Snapshot summarizes the store.
type Snapshot struct {
	Rooms         int   `json:"rooms"`
	ActiveRooms   int   `json:"active_rooms"`
	TotalMessages int64 `json:"total_messages"`
	TotalJoins    int64 `json:"total_joins"`
}

// Snapshot returns aggregate counters across rooms.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Rooms: len(s.rooms)}
	for _, stats := range s.rooms {
		if stats.Members > 0 {
			snap.ActiveRooms++
		}
		snap.TotalMessages += stats.Messages + stats.Locations
		snap.TotalJoins += stats.Joins
	}
	return snap
}

// Service names.
const (
	ServiceRoomActivity = "room-activity"
)

// RoomActivityRequest asks for the activity of one room.
type RoomActivityRequest struct {
	Room  string `json:"room"`
	Limit int    `json:"limit"`
}

// RoomActivityResponse carries room counters and recent entries.
type RoomActivityResponse struct {
	Stats  RoomStats `json:"stats"`
	Found  bool      `json:"found"`
	Recent []Entry   `json:"recent"`
}
