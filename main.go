package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/example/veilchat/modules/broadcast"
	"github.com/example/veilchat/modules/chat"
	"github.com/example/veilchat/modules/gateway"
	"github.com/example/veilchat/modules/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== VeilChat - Ephemeral Anonymous Chat Rooms ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	logger := app.Logger()

	// Create modules
	broadcastModule := broadcast.NewModule(logger)
	chatModule := chat.NewModule(broadcastModule.Hub(), logger)
	telemetryModule := telemetry.NewModule(logger)
	gatewayModule := gateway.NewModule(logger)

	// Inject the coordinator and hub into the gateway module manually:
	// the WebSocket read loop calls the coordinator synchronously, so it
	// cannot go through the request/reply ServiceContainer.
	gatewayModule.SetCoordinator(chatModule.Coordinator())
	gatewayModule.SetHub(broadcastModule.Hub())

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	// - broadcast: WebSocket fan-out hub (no dependencies)
	// - chat: Core domain (ServiceProviderModule + EventEmitterModule)
	// - telemetry: Event consumer (Prometheus metrics from chat events)
	// - gateway: Driving adapter (Fiber HTTP/WebSocket server, depends on chat)
	app.Register(broadcastModule)
	app.Register(chatModule)
	app.Register(telemetryModule)
	app.Register(gatewayModule)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	// Graceful shutdown
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

func printStartupInfo() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Architecture:")
	log.Println("  - HTTP Framework: Fiber with WebSocket support")
	log.Println("  - Fan-out: in-process hub with per-connection send queues")
	log.Println("  - Event Bus: NATS JetStream (audit/telemetry events)")
	log.Printf("  - NATS URL: %s", natsURL)
	log.Println("")
	log.Println("Rooms:")
	log.Println("  - No accounts: every connection gets a random display name")
	log.Println("  - Rooms are identified by 8-character codes, max 10 users")
	log.Println("  - Rooms and their history vanish when the last user leaves")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", port)
	log.Println("  GET    /api/health             - Health check")
	log.Println("  GET    /api/rooms/:id          - Room existence and user count")
	log.Println("  GET    /metrics                - Prometheus metrics")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws):", port)
	log.Println("  Intent types: create_room, join_room, send_message, typing")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
