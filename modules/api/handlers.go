package api

import (
	"errors"

	"github.com/example/chat-relay/domain/chat"
	"github.com/example/chat-relay/modules/directory"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const defaultActivityLimit = 20

// setupRoutes configures all HTTP routes.
func (m *Module) setupRoutes() {
	m.app.Get("/health", m.healthHandler)

	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	m.app.Get("/ws", websocket.New(m.handleWebSocket))

	api := m.app.Group("/api/v1")
	api.Get("/rooms", m.listRooms)
	api.Get("/rooms/:room/users", m.listRoomUsers)
	api.Get("/rooms/:room/activity", m.roomActivity)
	api.Get("/connections/:id", m.getConnection)
	if m.metrics != nil {
		api.Get("/metrics", m.metricsHandler)
	}

	if m.config.PublicDir != "" {
		m.app.Static("/", m.config.PublicDir)
	}
}

// healthHandler handles GET /health.
func (m *Module) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module":            "api",
			"connected_clients": m.hub.ClientCount(),
		},
	})
}

// listRooms handles GET /api/v1/rooms.
func (m *Module) listRooms(c *fiber.Ctx) error {
	rooms, err := m.directoryAdapter.ListRooms(c.UserContext())
	if err != nil {
		m.logger.Error("Failed to list rooms", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list rooms",
		})
	}
	return c.JSON(RoomListResponse{Rooms: rooms, Total: len(rooms)})
}

// listRoomUsers handles GET /api/v1/rooms/:room/users.
func (m *Module) listRoomUsers(c *fiber.Ctx) error {
	room := directory.Normalize(c.Params("room"))
	if room == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   string(chat.KindValidation),
			Message: "Room is required",
		})
	}

	users, err := m.directoryAdapter.ListRoomUsers(c.UserContext(), room)
	if err != nil {
		m.logger.Error("Failed to list room users", "room", room, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list room users",
		})
	}
	return c.JSON(RoomUsersResponse{Room: room, Users: users})
}

// getConnection handles GET /api/v1/connections/:id.
func (m *Module) getConnection(c *fiber.Ctx) error {
	connID := c.Params("id")
	user, err := m.directoryAdapter.GetUser(c.UserContext(), connID)
	if errors.Is(err, chat.ErrUserNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   string(chat.KindNotFound),
			Message: "Connection has not joined a room",
		})
	}
	if err != nil {
		m.logger.Error("Failed to get connection", "connID", connID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "lookup_failed",
			Message: "Failed to get connection",
		})
	}
	return c.JSON(user)
}

// roomActivity handles GET /api/v1/rooms/:room/activity.
func (m *Module) roomActivity(c *fiber.Ctx) error {
	room := directory.Normalize(c.Params("room"))
	limit := c.QueryInt("limit", defaultActivityLimit)

	resp, err := m.activityAdapter.RoomActivity(c.UserContext(), room, limit)
	if err != nil {
		m.logger.Error("Failed to get room activity", "room", room, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "activity_failed",
			Message: "Failed to get room activity",
		})
	}
	if !resp.Found {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   string(chat.KindNotFound),
			Message: "Room has no recorded activity",
		})
	}
	return c.JSON(RoomActivityResponse{Room: room, Stats: resp.Stats, Recent: resp.Recent})
}

// metricsHandler handles GET /api/v1/metrics.
func (m *Module) metricsHandler(c *fiber.Ctx) error {
	stats := m.metrics.Stats()
	return c.JSON(MetricsResponse{Handlers: stats, Total: len(stats)})
}
