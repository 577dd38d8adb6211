// Package activity records per-room activity from relay events.
package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/chat-relay/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 200
)

// Module consumes relay events and serves room activity.
type Module struct {
	store  *Store
	logger types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new activity module.
func NewModule(logger types.Logger) *Module {
	return &Module{
		store:  NewStore(),
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "activity"
}

// RegisterEventConsumers registers event handlers for relay events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserJoinedV1, m.handleUserJoined, m,
	); err != nil {
		return fmt.Errorf("failed to register UserJoined consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserLeftV1, m.handleUserLeft, m,
	); err != nil {
		return fmt.Errorf("failed to register UserLeft consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessageSentV1, m.handleMessageSent, m,
	); err != nil {
		return fmt.Errorf("failed to register MessageSent consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.LocationSharedV1, m.handleLocationShared, m,
	); err != nil {
		return fmt.Errorf("failed to register LocationShared consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"UserJoined.v1", "UserLeft.v1", "MessageSent.v1", "LocationShared.v1"})
	return nil
}

func (m *Module) handleUserJoined(_ context.Context, event events.UserJoinedEvent, _ *mono.Msg) error {
	m.store.Record(Entry{Kind: KindJoined, Room: event.Room, Username: event.Username, At: event.Timestamp}, event.Members)
	m.logger.Debug("Recorded join", "room", event.Room, "username", event.Username)
	return nil
}

func (m *Module) handleUserLeft(_ context.Context, event events.UserLeftEvent, _ *mono.Msg) error {
	m.store.Record(Entry{Kind: KindLeft, Room: event.Room, Username: event.Username, At: event.Timestamp}, event.Members)
	m.logger.Debug("Recorded leave", "room", event.Room, "username", event.Username)
	return nil
}

func (m *Module) handleMessageSent(_ context.Context, event events.MessageSentEvent, _ *mono.Msg) error {
	m.store.Record(Entry{Kind: KindMessage, Room: event.Room, Username: event.Username, At: event.Timestamp}, -1)
	return nil
}

func (m *Module) handleLocationShared(_ context.Context, event events.LocationSharedEvent, _ *mono.Msg) error {
	m.store.Record(Entry{Kind: KindLocation, Room: event.Room, Username: event.Username, At: event.Timestamp}, -1)
	return nil
}

// RegisterServices registers this module's services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceRoomActivity, json.Unmarshal, json.Marshal, m.handleRoomActivity,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceRoomActivity, err)
	}

	m.logger.Info("Registered activity services", "services", []string{ServiceRoomActivity})
	return nil
}

func (m *Module) handleRoomActivity(_ context.Context, req RoomActivityRequest, _ *mono.Msg) (RoomActivityResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	stats, found := m.store.Room(req.Room)
	return RoomActivityResponse{
		Stats:  stats,
		Found:  found,
		Recent: m.store.Recent(req.Room, limit),
	}, nil
}

// Start initializes the activity module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Activity module started")
	return nil
}

// Stop gracefully shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	snap := m.store.Snapshot()
	m.logger.Info("Activity module stopped", "rooms", snap.Rooms, "messages", snap.TotalMessages)
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	snap := m.store.Snapshot()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"rooms":          snap.Rooms,
			"active_rooms":   snap.ActiveRooms,
			"total_messages": snap.TotalMessages,
		},
	}
}

// Store returns the activity store.
func (m *Module) Store() *Store {
	return m.store
}
