package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/veilchat/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Request-reply services exposed for the read-only status interface.
const (
	ServiceRoomStatus  = "room-status"
	ServiceServerStats = "server-stats"
)

// RoomStatusRequest asks for a point-in-time view of one room.
type RoomStatusRequest struct {
	RoomID string `json:"room_id"`
}

// RoomStatusResponse reports room existence, member count, and creation time.
type RoomStatusResponse struct {
	Exists      bool      `json:"exists"`
	MemberCount int       `json:"member_count,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// ServerStatsRequest asks for aggregate counts.
type ServerStatsRequest struct{}

// ServerStatsResponse carries aggregate room and connection counts.
type ServerStatsResponse struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
}

// Module hosts the room coordinator and exposes it to the rest of the
// application: status services through the service container and audit
// events through the event bus.
type Module struct {
	coordinator *Coordinator
	rooms       *RoomStore
	sessions    *ConnectionRegistry
	audit       *AuditPublisher
	logger      types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the chat module. The router is the broadcast hub the
// coordinator fans events out through.
func NewModule(router Router, logger types.Logger) *Module {
	rooms := NewRoomStore()
	sessions := NewConnectionRegistry()
	audit := NewAuditPublisher(logger)
	return &Module{
		coordinator: NewCoordinator(rooms, sessions, NewIdentityIssuer(nil), router, audit, logger),
		rooms:       rooms,
		sessions:    sessions,
		audit:       audit,
		logger:      logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "chat"
}

// Coordinator returns the room state machine for the gateway to drive.
func (m *Module) Coordinator() *Coordinator {
	return m.coordinator
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.audit.SetBus(bus)
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.RoomCreatedV1.ToBase(),
		events.RoomClosedV1.ToBase(),
		events.UserJoinedV1.ToBase(),
		events.UserLeftV1.ToBase(),
		events.MessageSentV1.ToBase(),
	}
}

// RegisterServices registers the read-only status services.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceRoomStatus, json.Unmarshal, json.Marshal, m.roomStatus,
	); err != nil {
		return fmt.Errorf("failed to register room-status service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceServerStats, json.Unmarshal, json.Marshal, m.serverStats,
	); err != nil {
		return fmt.Errorf("failed to register server-stats service: %w", err)
	}

	m.logger.Info("Registered chat services", "services", "room-status, server-stats")
	return nil
}

// Start initializes the module. All state lives in process memory and starts
// empty.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Chat module started")
	return nil
}

// Stop gracefully shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Chat module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	rooms, connections := m.coordinator.Stats()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"rooms":       rooms,
			"connections": connections,
		},
	}
}

func (m *Module) roomStatus(_ context.Context, req RoomStatusRequest, _ *mono.Msg) (RoomStatusResponse, error) {
	room, count, exists := m.coordinator.RoomStatus(req.RoomID)
	if !exists {
		return RoomStatusResponse{Exists: false}, nil
	}
	return RoomStatusResponse{
		Exists:      true,
		MemberCount: count,
		CreatedAt:   room.CreatedAt,
	}, nil
}

func (m *Module) serverStats(_ context.Context, _ ServerStatsRequest, _ *mono.Msg) (ServerStatsResponse, error) {
	rooms, connections := m.coordinator.Stats()
	return ServerStatsResponse{Rooms: rooms, Connections: connections}, nil
}
