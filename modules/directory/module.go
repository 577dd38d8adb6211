package directory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Module exposes the Directory to other modules through request-reply services.
type Module struct {
	directory *Directory
	logger    types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new directory module with an empty Directory.
func NewModule(logger types.Logger) *Module {
	return &Module{
		directory: New(),
		logger:    logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "directory"
}

// Directory returns the registry owned by this module.
func (m *Module) Directory() *Directory {
	return m.directory
}

// RegisterServices registers the directory query services.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetUser, json.Unmarshal, json.Marshal, m.handleGetUser,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetUser, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListRoomUsers, json.Unmarshal, json.Marshal, m.handleListRoomUsers,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListRoomUsers, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListRooms, json.Unmarshal, json.Marshal, m.handleListRooms,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListRooms, err)
	}

	m.logger.Info("Registered directory services",
		"services", []string{ServiceGetUser, ServiceListRoomUsers, ServiceListRooms})
	return nil
}

func (m *Module) handleGetUser(_ context.Context, req GetUserRequest, _ *mono.Msg) (GetUserResponse, error) {
	user, found := m.directory.GetUser(req.ConnectionID)
	return GetUserResponse{User: user, Found: found}, nil
}

// handleListRoomUsers normalizes the requested room since it comes from
// outside the relay (REST path parameters).
func (m *Module) handleListRoomUsers(_ context.Context, req ListRoomUsersRequest, _ *mono.Msg) (ListRoomUsersResponse, error) {
	room := Normalize(req.Room)
	return ListRoomUsersResponse{
		Room:  room,
		Users: m.directory.GetUsersInRoom(room),
	}, nil
}

func (m *Module) handleListRooms(_ context.Context, _ ListRoomsRequest, _ *mono.Msg) (ListRoomsResponse, error) {
	return ListRoomsResponse{
		Rooms:      m.directory.Rooms(),
		TotalUsers: m.directory.Count(),
	}, nil
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Directory module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Directory module stopped", "users", m.directory.Count())
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"users": m.directory.Count(),
			"rooms": len(m.directory.Rooms()),
		},
	}
}
