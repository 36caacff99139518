package gateway

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/veilchat/modules/broadcast"
	"github.com/example/veilchat/modules/chat"
)

// REST rate limiting: 100 requests per 15 minutes per client.
const (
	apiRateLimit  = 100
	apiRateWindow = 15 * time.Minute
)

// Module is the transport edge: the Fiber HTTP server hosting the WebSocket
// endpoint, the read-only status API, and the metrics endpoint.
type Module struct {
	app         *fiber.App
	coordinator *chat.Coordinator
	hub         *broadcast.Hub
	status      chat.StatusPort
	logger      types.Logger
	port        string
	corsOrigins string
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.DependentModule       = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the gateway module with configuration from environment
// variables.
func NewModule(logger types.Logger) *Module {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:5173,http://localhost:3000"
	}
	return &Module{
		logger:      logger,
		port:        port,
		corsOrigins: corsOrigins,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "gateway"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"chat"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "chat" {
		m.status = chat.NewStatusAdapter(container)
	}
}

// SetCoordinator sets the room coordinator (called from main).
func (m *Module) SetCoordinator(coordinator *chat.Coordinator) {
	m.coordinator = coordinator
}

// SetHub sets the broadcast hub (called from main).
func (m *Module) SetHub(hub *broadcast.Hub) {
	m.hub = hub
}

// Start initializes and starts the Fiber server.
func (m *Module) Start(_ context.Context) error {
	if m.coordinator == nil {
		return fmt.Errorf("coordinator dependency not set")
	}
	if m.hub == nil {
		return fmt.Errorf("broadcast hub dependency not set")
	}
	if m.status == nil {
		return fmt.Errorf("chat status dependency not set")
	}

	m.app = fiber.New(fiber.Config{
		AppName:               "VeilChat",
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	m.app.Use(recover.New())
	m.app.Use(cors.New(cors.Config{
		AllowOrigins: m.corsOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	m.registerRoutes()

	// Start server in goroutine with startup error detection
	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(":" + m.port); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("gateway failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	m.logger.Info("Gateway started", "port", m.port)
	return nil
}

// Stop gracefully shuts down the Fiber server.
func (m *Module) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown gateway: %w", err)
	}
	m.logger.Info("Gateway stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port":              m.port,
			"connected_clients": m.hub.ClientCount(),
		},
	}
}

func (m *Module) registerRoutes() {
	// WebSocket endpoint
	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	m.app.Get("/ws", websocket.New(m.handleWebSocket))

	// Read-only status API
	api := m.app.Group("/api", limiter.New(limiter.Config{
		Max:        apiRateLimit,
		Expiration: apiRateWindow,
	}))
	api.Get("/health", m.handleHealth)
	api.Get("/rooms/:id", m.handleRoomInfo)

	// Prometheus metrics
	m.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

// errorHandler handles Fiber errors globally.
func (m *Module) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	m.logger.Error("HTTP error", "code", code, "message", message)

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
