package chat

import (
	"sync"

	domain "github.com/example/veilchat/domain/chat"
)

// ConnectionRegistry owns the mapping from connection ID to session state.
// Rooms reference sessions by ID only; the registry is the single owner.
type ConnectionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewConnectionRegistry creates an empty registry.
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{sessions: make(map[string]*domain.Session)}
}

// Register inserts a session.
func (r *ConnectionRegistry) Register(session *domain.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
}

// Lookup returns a copy of the session.
func (r *ConnectionRegistry) Lookup(sessionID string) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return domain.Session{}, false
	}
	return *session, true
}

// SetRoom updates the session's current room; "" clears it.
func (r *ConnectionRegistry) SetRoom(sessionID, roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return false
	}
	session.RoomID = roomID
	return true
}

// Unregister removes the session and returns it for cleanup by the caller.
func (r *ConnectionRegistry) Unregister(sessionID string) (domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return domain.Session{}, false
	}
	delete(r.sessions, sessionID)
	return *session, true
}

// Len returns the number of live sessions.
func (r *ConnectionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
