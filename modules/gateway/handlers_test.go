package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"

	"github.com/example/veilchat/modules/broadcast"
	"github.com/example/veilchat/modules/chat"
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

func newMockLogger() types.Logger {
	return &mockLogger{}
}

// fakeStatus implements chat.StatusPort with canned responses.
type fakeStatus struct {
	room  chat.RoomStatusResponse
	stats chat.ServerStatsResponse
	err   error
}

func (f *fakeStatus) RoomStatus(_ context.Context, _ string) (chat.RoomStatusResponse, error) {
	return f.room, f.err
}

func (f *fakeStatus) ServerStats(_ context.Context) (chat.ServerStatsResponse, error) {
	return f.stats, f.err
}

// newTestGateway wires a gateway module with an in-memory coordinator so
// dispatchIntent drives real room state.
func newTestGateway(status chat.StatusPort) *Module {
	logger := newMockLogger()
	hub := broadcast.NewHub(logger)
	chatModule := chat.NewModule(hub, logger)

	m := NewModule(logger)
	m.coordinator = chatModule.Coordinator()
	m.hub = hub
	m.status = status
	return m
}

// connectSession registers a session without a transport; fan-out to it is
// silently skipped by the hub, which is exactly the production drop path.
func connectSession(m *Module) string {
	return m.coordinator.Connect(nil).ID
}

func TestDispatchIntent_CreateRoom(t *testing.T) {
	m := newTestGateway(&fakeStatus{})
	sessionID := connectSession(m)

	m.dispatchIntent(sessionID, []byte(`{"type":"create_room"}`))

	rooms, _ := m.coordinator.Stats()
	if rooms != 1 {
		t.Errorf("rooms after create_room intent = %d, want 1", rooms)
	}
}

func TestDispatchIntent_JoinUnknownRoom(t *testing.T) {
	m := newTestGateway(&fakeStatus{})
	owner := connectSession(m)
	m.dispatchIntent(owner, []byte(`{"type":"create_room"}`))
	if rooms, _ := m.coordinator.Stats(); rooms != 1 {
		t.Fatalf("rooms = %d, want 1", rooms)
	}

	joiner := connectSession(m)
	payload, _ := json.Marshal(ClientIntent{Type: IntentJoinRoom, RoomID: "NOSUCHRM"})
	m.dispatchIntent(joiner, payload)

	// Unknown room code: membership unchanged, no panic
	if rooms, _ := m.coordinator.Stats(); rooms != 1 {
		t.Errorf("rooms after failed join = %d, want 1", rooms)
	}
}

func TestDispatchIntent_MalformedPayloads(t *testing.T) {
	m := newTestGateway(&fakeStatus{})
	sessionID := connectSession(m)

	tests := []struct {
		name    string
		payload string
	}{
		{
			name:    "invalid json",
			payload: `{not json`,
		},
		{
			name:    "unknown intent type",
			payload: `{"type":"self_destruct"}`,
		},
		{
			name:    "join without room id",
			payload: `{"type":"join_room"}`,
		},
		{
			name:    "empty object",
			payload: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Must not panic and must not change room state
			m.dispatchIntent(sessionID, []byte(tt.payload))
			if rooms, _ := m.coordinator.Stats(); rooms != 0 {
				t.Errorf("rooms after malformed intent = %d, want 0", rooms)
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	m := newTestGateway(&fakeStatus{
		stats: chat.ServerStatsResponse{Rooms: 3, Connections: 7},
	})
	app := fiber.New()
	app.Get("/api/health", m.handleHealth)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	var health HealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("status field = %q, want %q", health.Status, "ok")
	}
	if health.Rooms != 3 {
		t.Errorf("rooms = %d, want 3", health.Rooms)
	}
	if health.Clients != 7 {
		t.Errorf("clients = %d, want 7", health.Clients)
	}
	if health.Timestamp == 0 {
		t.Error("timestamp is zero")
	}
}

func TestHandleHealth_StatusError(t *testing.T) {
	m := newTestGateway(&fakeStatus{err: errors.New("bus unavailable")})
	app := fiber.New()
	app.Get("/api/health", m.handleHealth)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("status = %d, want %d", resp.StatusCode, fiber.StatusInternalServerError)
	}
}

func TestHandleRoomInfo(t *testing.T) {
	createdAt := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	tests := []struct {
		name       string
		status     chat.RoomStatusResponse
		wantExists bool
		wantCount  int
	}{
		{
			name: "existing room",
			status: chat.RoomStatusResponse{
				Exists:      true,
				MemberCount: 4,
				CreatedAt:   createdAt,
			},
			wantExists: true,
			wantCount:  4,
		},
		{
			name:       "unknown room reports exists false with 200",
			status:     chat.RoomStatusResponse{Exists: false},
			wantExists: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestGateway(&fakeStatus{room: tt.status})
			app := fiber.New()
			app.Get("/api/rooms/:id", m.handleRoomInfo)

			resp, err := app.Test(httptest.NewRequest("GET", "/api/rooms/ABCD1234", nil))
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != fiber.StatusOK {
				t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusOK)
			}

			body, _ := io.ReadAll(resp.Body)
			var info RoomInfoResponse
			if err := json.Unmarshal(body, &info); err != nil {
				t.Fatalf("response is not valid JSON: %v", err)
			}
			if info.Exists != tt.wantExists {
				t.Errorf("exists = %v, want %v", info.Exists, tt.wantExists)
			}
			if info.UserCount != tt.wantCount {
				t.Errorf("userCount = %d, want %d", info.UserCount, tt.wantCount)
			}
			if tt.wantExists && info.CreatedAt != createdAt.UnixMilli() {
				t.Errorf("createdAt = %d, want %d", info.CreatedAt, createdAt.UnixMilli())
			}
		})
	}
}

func TestModule_Name(t *testing.T) {
	m := NewModule(newMockLogger())

	if name := m.Name(); name != "gateway" {
		t.Errorf("Name() = %q, want 'gateway'", name)
	}
}

func TestModule_Dependencies(t *testing.T) {
	m := NewModule(newMockLogger())

	deps := m.Dependencies()
	if len(deps) != 1 || deps[0] != "chat" {
		t.Errorf("Dependencies() = %v, want [chat]", deps)
	}
}

func TestModule_StartWithoutDependencies(t *testing.T) {
	m := NewModule(newMockLogger())

	if err := m.Start(context.Background()); err == nil {
		t.Error("Start() without wired dependencies = nil, want error")
	}
}
