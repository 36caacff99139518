package broadcast

import (
	"context"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// Module owns the WebSocket fan-out hub.
type Module struct {
	hub    *Hub
	logger types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the broadcast module.
func NewModule(logger types.Logger) *Module {
	return &Module{
		hub:    NewHub(logger),
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "broadcast"
}

// Hub returns the fan-out hub for the chat and gateway modules.
func (m *Module) Hub() *Hub {
	return m.hub
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Broadcast module started")
	return nil
}

// Stop closes all attached transports.
func (m *Module) Stop(_ context.Context) error {
	count := m.hub.ClientCount()
	m.hub.closeAll()
	m.logger.Info("Broadcast module stopped", "clientsClosed", count)
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.hub.ClientCount(),
		},
	}
}
