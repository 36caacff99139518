package chat

import (
	"testing"

	domain "github.com/example/veilchat/domain/chat"
)

func TestConnectionRegistry_RegisterAndLookup(t *testing.T) {
	registry := NewConnectionRegistry()

	registry.Register(&domain.Session{ID: "session-1", DisplayName: "SilentSoul42"})

	session, ok := registry.Lookup("session-1")
	if !ok {
		t.Fatal("Lookup() after Register() returned not found")
	}
	if session.DisplayName != "SilentSoul42" {
		t.Errorf("Lookup() DisplayName = %q, want %q", session.DisplayName, "SilentSoul42")
	}
	if registry.Len() != 1 {
		t.Errorf("Len() = %d, want 1", registry.Len())
	}
}

func TestConnectionRegistry_LookupReturnsCopy(t *testing.T) {
	registry := NewConnectionRegistry()
	registry.Register(&domain.Session{ID: "session-1"})

	session, _ := registry.Lookup("session-1")
	session.RoomID = "TAMPERED"

	fresh, _ := registry.Lookup("session-1")
	if fresh.RoomID != "" {
		t.Errorf("mutating a Lookup() copy changed registry state: RoomID = %q", fresh.RoomID)
	}
}

func TestConnectionRegistry_SetRoom(t *testing.T) {
	registry := NewConnectionRegistry()
	registry.Register(&domain.Session{ID: "session-1"})

	if !registry.SetRoom("session-1", "ABCD1234") {
		t.Fatal("SetRoom() = false, want true")
	}
	session, _ := registry.Lookup("session-1")
	if session.RoomID != "ABCD1234" {
		t.Errorf("RoomID after SetRoom() = %q, want %q", session.RoomID, "ABCD1234")
	}

	if !registry.SetRoom("session-1", "") {
		t.Fatal("SetRoom() clear = false, want true")
	}
	session, _ = registry.Lookup("session-1")
	if session.RoomID != "" {
		t.Errorf("RoomID after clear = %q, want empty", session.RoomID)
	}

	if registry.SetRoom("no-such-session", "ABCD1234") {
		t.Error("SetRoom() for unknown session = true, want false")
	}
}

func TestConnectionRegistry_Unregister(t *testing.T) {
	registry := NewConnectionRegistry()
	registry.Register(&domain.Session{ID: "session-1", RoomID: "ABCD1234"})

	session, ok := registry.Unregister("session-1")
	if !ok {
		t.Fatal("Unregister() = false, want true")
	}
	if session.RoomID != "ABCD1234" {
		t.Errorf("Unregister() RoomID = %q, want %q", session.RoomID, "ABCD1234")
	}

	if _, ok := registry.Lookup("session-1"); ok {
		t.Error("Lookup() after Unregister() = true, want false")
	}

	// Second unregister is a no-op
	if _, ok := registry.Unregister("session-1"); ok {
		t.Error("second Unregister() = true, want false")
	}
}
