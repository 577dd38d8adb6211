package directory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/chat-relay/domain/chat"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// DirectoryPort defines the read-only directory queries available to other modules.
type DirectoryPort interface {
	GetUser(ctx context.Context, connectionID string) (*chat.User, error)
	ListRoomUsers(ctx context.Context, room string) ([]chat.User, error)
	ListRooms(ctx context.Context) ([]chat.RoomSummary, error)
}

// DirectoryAdapter implements DirectoryPort using the service container.
type DirectoryAdapter struct {
	container mono.ServiceContainer
}

// NewDirectoryAdapter creates a new DirectoryAdapter.
func NewDirectoryAdapter(container mono.ServiceContainer) DirectoryPort {
	if container == nil {
		panic("directory: ServiceContainer is nil")
	}
	return &DirectoryAdapter{container: container}
}

// GetUser returns the user registered for a connection, or chat.ErrUserNotFound.
func (a *DirectoryAdapter) GetUser(ctx context.Context, connectionID string) (*chat.User, error) {
	req := GetUserRequest{ConnectionID: connectionID}
	var resp GetUserResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceGetUser,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !resp.Found {
		return nil, chat.ErrUserNotFound
	}
	return &resp.User, nil
}

// ListRoomUsers returns the roster of a room.
func (a *DirectoryAdapter) ListRoomUsers(ctx context.Context, room string) ([]chat.User, error) {
	req := ListRoomUsersRequest{Room: room}
	var resp ListRoomUsersResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceListRoomUsers,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to list room users: %w", err)
	}
	return resp.Users, nil
}

// ListRooms returns every room that currently has members.
func (a *DirectoryAdapter) ListRooms(ctx context.Context) ([]chat.RoomSummary, error) {
	req := ListRoomsRequest{}
	var resp ListRoomsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceListRooms,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return resp.Rooms, nil
}
