package telemetry

import (
	"context"
	"testing"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/example/veilchat/events"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

// The collectors register with the default Prometheus registry, so the whole
// test binary shares a single module instance.
var testModule = NewModule(&mockLogger{})

func TestModule_Name(t *testing.T) {
	if name := testModule.Name(); name != "telemetry" {
		t.Errorf("Name() = %q, want 'telemetry'", name)
	}
}

func TestModule_StartStop(t *testing.T) {
	ctx := context.Background()

	if err := testModule.Start(ctx); err != nil {
		t.Errorf("Start() error = %v", err)
	}
	if err := testModule.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestModule_EventHandlersUpdateMetrics(t *testing.T) {
	ctx := context.Background()

	createdBefore := testutil.ToFloat64(testModule.metrics.RoomsCreated)
	openBefore := testutil.ToFloat64(testModule.metrics.RoomsOpen)
	joinsBefore := testutil.ToFloat64(testModule.metrics.Joins)
	leavesBefore := testutil.ToFloat64(testModule.metrics.Leaves)
	messagesBefore := testutil.ToFloat64(testModule.metrics.Messages)

	if err := testModule.handleRoomCreated(ctx, events.RoomCreatedEvent{RoomID: "ABCD1234"}, nil); err != nil {
		t.Fatalf("handleRoomCreated() error = %v", err)
	}
	if err := testModule.handleUserJoined(ctx, events.UserJoinedEvent{RoomID: "ABCD1234"}, nil); err != nil {
		t.Fatalf("handleUserJoined() error = %v", err)
	}
	if err := testModule.handleMessageSent(ctx, events.MessageSentEvent{RoomID: "ABCD1234"}, nil); err != nil {
		t.Fatalf("handleMessageSent() error = %v", err)
	}
	if err := testModule.handleUserLeft(ctx, events.UserLeftEvent{RoomID: "ABCD1234"}, nil); err != nil {
		t.Fatalf("handleUserLeft() error = %v", err)
	}
	if err := testModule.handleRoomClosed(ctx, events.RoomClosedEvent{RoomID: "ABCD1234"}, nil); err != nil {
		t.Fatalf("handleRoomClosed() error = %v", err)
	}

	if got := testutil.ToFloat64(testModule.metrics.RoomsCreated); got != createdBefore+1 {
		t.Errorf("RoomsCreated = %v, want %v", got, createdBefore+1)
	}
	// One create and one close cancel out
	if got := testutil.ToFloat64(testModule.metrics.RoomsOpen); got != openBefore {
		t.Errorf("RoomsOpen = %v, want %v", got, openBefore)
	}
	if got := testutil.ToFloat64(testModule.metrics.Joins); got != joinsBefore+1 {
		t.Errorf("Joins = %v, want %v", got, joinsBefore+1)
	}
	if got := testutil.ToFloat64(testModule.metrics.Leaves); got != leavesBefore+1 {
		t.Errorf("Leaves = %v, want %v", got, leavesBefore+1)
	}
	if got := testutil.ToFloat64(testModule.metrics.Messages); got != messagesBefore+1 {
		t.Errorf("Messages = %v, want %v", got, messagesBefore+1)
	}
}
