package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/example/chat-relay/modules/activity"
	"github.com/example/chat-relay/modules/api"
	"github.com/example/chat-relay/modules/broadcast"
	"github.com/example/chat-relay/modules/directory"
	"github.com/example/chat-relay/modules/telemetry"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	shutdownTimeout := getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second)
	sendBuffer := getEnvInt("WS_SEND_BUFFER", 256)
	writeTimeout := getEnvDuration("WS_WRITE_TIMEOUT", 10*time.Second)
	apiConfig := api.LoadConfigFromEnv()

	log.Println("=== Chat Relay - Fiber WebSocket + EventBus ===")

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	logger := app.Logger()

	telemetryMiddleware := telemetry.New(logger.WithModule("telemetry"))
	activityModule := activity.NewModule(logger.WithModule("activity"))
	directoryModule := directory.NewModule(logger.WithModule("directory"))
	broadcastModule := broadcast.NewModule(logger.WithModule("broadcast"),
		broadcast.WithSendBuffer(sendBuffer),
		broadcast.WithWriteTimeout(writeTimeout),
	)
	apiModule := api.NewModule(apiConfig, logger.WithModule("api"))

	// The hub and the directory are shared in-process by every session,
	// so they are handed over directly rather than through a ServiceContainer.
	apiModule.SetHub(broadcastModule.Hub())
	apiModule.SetDirectory(directoryModule.Directory())
	apiModule.SetMetrics(telemetryMiddleware)

	// Middleware must be registered first to intercept service registrations.
	// Then consumers and providers, then the emitting driver.
	// - telemetry: times request-reply services and event consumers
	// - activity: event consumer + room-activity service
	// - directory: membership registry + query services
	// - broadcast: WebSocket hub
	// - api: Fiber HTTP/WebSocket server, depends on directory and activity
	app.Register(telemetryMiddleware)
	app.Register(activityModule)
	app.Register(directoryModule)
	app.Register(broadcastModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(apiConfig)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg api.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", cfg.Port)
	log.Println("  GET    /health                         - Health check")
	log.Println("  GET    /api/v1/rooms                   - List active rooms")
	log.Println("  GET    /api/v1/rooms/:room/users       - Room roster")
	log.Println("  GET    /api/v1/rooms/:room/activity    - Room activity counters")
	log.Println("  GET    /api/v1/metrics                 - Internal service metrics")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws):", cfg.Port)
	log.Println(`  Send:    {"type":"join","id":1,"payload":{"username":"bob","room":"general"}}`)
	log.Println(`           {"type":"sendMessage","id":2,"payload":{"text":"hello"}}`)
	log.Println(`           {"type":"sendLocation","id":3,"payload":{"latitude":1.5,"longitude":2}}`)
	log.Println("  Receive: ack, error, message, locationMessage, roomData")
	if cfg.PublicDir != "" {
		log.Printf("Static assets: %s", cfg.PublicDir)
	}
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}
