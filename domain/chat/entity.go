package chat

import "time"

// AdminName is the sender used for system announcements.
const AdminName = "Admin"

// User represents one connected participant.
// Username and Room are stored normalized (trimmed, lower-cased).
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Room     string `json:"room"`
}

// RenderedMessage is a chat or admin message ready for delivery.
type RenderedMessage struct {
	Sender string    `json:"sender"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sentAt"`
}

// LocationMessage carries a rendered map link.
type LocationMessage struct {
	Sender string    `json:"sender"`
	URL    string    `json:"url"`
	SentAt time.Time `json:"sentAt"`
}

// RoomData is a full roster snapshot of a room.
type RoomData struct {
	Room  string `json:"room"`
	Users []User `json:"users"`
}

// Coordinates is a latitude/longitude pair shared by a client.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RoomSummary describes a room derived from its current members.
type RoomSummary struct {
	Room    string `json:"room"`
	Members int    `json:"members"`
}
