// Package api serves the WebSocket relay endpoint and the REST read API.
package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/chat-relay/events"
	"github.com/example/chat-relay/modules/activity"
	"github.com/example/chat-relay/modules/broadcast"
	"github.com/example/chat-relay/modules/directory"
	"github.com/example/chat-relay/modules/session"
	"github.com/example/chat-relay/modules/telemetry"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Module is the HTTP API module with WebSocket support.
type Module struct {
	app              *fiber.App
	config           Config
	hub              *broadcast.Hub
	directory        session.Directory
	directoryAdapter directory.DirectoryPort
	activityAdapter  activity.ActivityPort
	sessions         *session.Service
	sessionOpts      []session.Option
	metrics          MetricsSource
	eventBus         mono.EventBus
	logger           types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.DependentModule       = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new api module.
func NewModule(cfg Config, logger types.Logger, opts ...session.Option) *Module {
	return &Module{
		config:      cfg,
		sessionOpts: opts,
		logger:      logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"directory", "activity"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "directory":
		m.directoryAdapter = directory.NewDirectoryAdapter(container)
	case "activity":
		m.activityAdapter = activity.NewActivityAdapter(container)
	}
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.UserJoinedV1.ToBase(),
		events.UserLeftV1.ToBase(),
		events.MessageSentV1.ToBase(),
		events.LocationSharedV1.ToBase(),
	}
}

// SetHub sets the broadcast hub (called from main.go).
func (m *Module) SetHub(hub *broadcast.Hub) {
	m.hub = hub
}

// MetricsSource reports per-handler call metrics.
type MetricsSource interface {
	Stats() []telemetry.HandlerStats
}

// SetMetrics enables GET /api/v1/metrics (called from main.go).
func (m *Module) SetMetrics(src MetricsSource) {
	m.metrics = src
}

// SetDirectory sets the membership registry shared by all sessions (called from main.go).
func (m *Module) SetDirectory(dir session.Directory) {
	m.directory = dir
}

// Start initializes the Fiber HTTP server.
func (m *Module) Start(_ context.Context) error {
	if err := m.init(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(":" + m.config.Port); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	m.logger.Info("HTTP server started", "port", m.config.Port)
	return nil
}

// init wires the session service and builds the Fiber app without listening.
func (m *Module) init() error {
	if m.hub == nil {
		return errors.New("broadcast hub dependency not set")
	}
	if m.directory == nil {
		return errors.New("directory dependency not set")
	}
	if m.directoryAdapter == nil {
		return errors.New("directory adapter dependency not set")
	}
	if m.activityAdapter == nil {
		return errors.New("activity adapter dependency not set")
	}

	opts := append([]session.Option{
		session.WithNotifier(newEventNotifier(m.eventBus, m.logger)),
	}, m.sessionOpts...)
	m.sessions = session.NewService(m.directory, m.hub, m.logger, opts...)

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
		ReadTimeout:           m.config.ReadTimeout,
		IdleTimeout:           120 * time.Second,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		Next: func(c *fiber.Ctx) bool {
			return c.Get(fiber.HeaderUpgrade) == "websocket"
		},
	}))
	m.app.Use(cors.New(cors.Config{
		AllowOrigins: m.config.AllowedOrigins,
		AllowMethods: "GET,HEAD,OPTIONS",
	}))

	m.setupRoutes()
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *Module) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server")
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	details := map[string]any{
		"port": m.config.Port,
	}
	if m.hub != nil {
		details["connected_clients"] = m.hub.ClientCount()
	}
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: details,
	}
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
