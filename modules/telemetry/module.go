package telemetry

import (
	"context"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/veilchat/events"
)

// Module consumes the chat audit events and maintains Prometheus metrics.
// It never touches core state; the gateway serves the /metrics endpoint.
type Module struct {
	metrics *Metrics
	logger  types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module              = (*Module)(nil)
	_ mono.EventConsumerModule = (*Module)(nil)
)

// NewModule creates the telemetry module.
func NewModule(logger types.Logger) *Module {
	return &Module{
		metrics: NewMetrics(),
		logger:  logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "telemetry"
}

// RegisterEventConsumers subscribes to the chat audit events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoomCreatedV1, m.handleRoomCreated, m,
	); err != nil {
		return fmt.Errorf("failed to register RoomCreated consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoomClosedV1, m.handleRoomClosed, m,
	); err != nil {
		return fmt.Errorf("failed to register RoomClosed consumer: %w", err)
	}

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

	m.logger.Info("Registered telemetry consumers",
		"events", "RoomCreated, RoomClosed, UserJoined, UserLeft, MessageSent")
	return nil
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Telemetry module started")
	return nil
}

// Stop gracefully shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Telemetry module stopped")
	return nil
}

func (m *Module) handleRoomCreated(_ context.Context, event events.RoomCreatedEvent, _ *mono.Msg) error {
	m.metrics.RoomsCreated.Inc()
	m.metrics.RoomsOpen.Inc()
	m.logger.Debug("Room created", "roomID", event.RoomID)
	return nil
}

func (m *Module) handleRoomClosed(_ context.Context, event events.RoomClosedEvent, _ *mono.Msg) error {
	m.metrics.RoomsOpen.Dec()
	m.logger.Debug("Room closed", "roomID", event.RoomID)
	return nil
}

func (m *Module) handleUserJoined(_ context.Context, _ events.UserJoinedEvent, _ *mono.Msg) error {
	m.metrics.Joins.Inc()
	return nil
}

func (m *Module) handleUserLeft(_ context.Context, _ events.UserLeftEvent, _ *mono.Msg) error {
	m.metrics.Leaves.Inc()
	return nil
}

func (m *Module) handleMessageSent(_ context.Context, _ events.MessageSentEvent, _ *mono.Msg) error {
	m.metrics.Messages.Inc()
	return nil
}
