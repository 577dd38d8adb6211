package directory

import "github.com/example/chat-relay/domain/chat"

// Service names registered by the directory module.
const (
	ServiceGetUser       = "get-user"
	ServiceListRoomUsers = "list-room-users"
	ServiceListRooms     = "list-rooms"
)

// GetUserRequest is the request for the get-user service.
type GetUserRequest struct {
	ConnectionID string `json:"connection_id"`
}

// GetUserResponse is the response of the get-user service.
type GetUserResponse struct {
	User  chat.User `json:"user"`
	Found bool      `json:"found"`
}

// ListRoomUsersRequest is the request for the list-room-users service.
type ListRoomUsersRequest struct {
	Room string `json:"room"`
}

// ListRoomUsersResponse is the response of the list-room-users service.
type ListRoomUsersResponse struct {
	Room  string      `json:"room"`
	Users []chat.User `json:"users"`
}

// ListRoomsRequest is the request for the list-rooms service.
type ListRoomsRequest struct{}

// ListRoomsResponse is the response of the list-rooms service.
type ListRoomsResponse struct {
	Rooms      []chat.RoomSummary `json:"rooms"`
	TotalUsers int                `json:"total_users"`
}
