package chat

import (
	"errors"
	"sync"
	"time"

	domain "github.com/example/veilchat/domain/chat"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
)

// Router delivers a server event to a single live transport handle. Delivery
// is best-effort and must never block: a slow or dead recipient is dropped by
// the router itself, not by the coordinator.
type Router interface {
	SendTo(sessionID string, event any)
}

// errInternal is reported to the originator when an intent handler panics.
var errInternal = errors.New("Internal server error")

// Coordinator is the room state machine. It interprets client intents against
// the room store and connection registry, enforces capacity and membership
// exclusivity, and triggers broadcasts.
//
// A single mutex serializes all intents, so no intent observes a partially
// applied effect of another, and events are enqueued to every member's
// outbound queue in mutation order: any two members of a room observe a
// prefix-consistent total order of that room's events.
type Coordinator struct {
	mu       sync.Mutex
	rooms    *RoomStore
	sessions *ConnectionRegistry
	issuer   *IdentityIssuer
	router   Router
	audit    *AuditPublisher
	logger   types.Logger
}

// NewCoordinator wires the state machine. audit may be nil.
func NewCoordinator(rooms *RoomStore, sessions *ConnectionRegistry, issuer *IdentityIssuer, router Router, audit *AuditPublisher, logger types.Logger) *Coordinator {
	return &Coordinator{
		rooms:    rooms,
		sessions: sessions,
		issuer:   issuer,
		router:   router,
		audit:    audit,
		logger:   logger,
	}
}

// Connect registers a new connection: issues an identity, binds the transport
// handle under the intent lock, and sends the welcome event to the originator
// before any other event can reach it.
func (c *Coordinator) Connect(bind func(sessionID string)) domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, name := c.issuer.Issue()
	session := &domain.Session{ID: id, DisplayName: name}
	c.sessions.Register(session)

	if bind != nil {
		bind(id)
	}
	c.router.SendTo(id, WelcomeEvent{
		Type:         EventWelcome,
		ConnectionID: id,
		DisplayName:  name,
	})

	c.logger.Info("Session connected", "sessionID", id, "displayName", name)
	return *session
}

// CreateRoom creates a fresh room and moves the session into it, leaving any
// previous room first. The room-created event goes to the originator only.
func (c *Coordinator) CreateRoom(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.recoverIntent(sessionID)

	session, ok := c.sessions.Lookup(sessionID)
	if !ok {
		return
	}

	room, err := c.rooms.CreateRoom()
	if err != nil {
		c.logger.Error("Room code generation failed", "error", err)
		c.router.SendTo(sessionID, NewErrorEvent(errInternal))
		return
	}

	if session.RoomID != "" {
		c.leaveLocked(session, session.RoomID)
	}

	count, err := c.rooms.AddMember(room.ID, sessionID)
	if err != nil {
		// Unreachable: the room is freshly created and empty.
		c.router.SendTo(sessionID, NewErrorEvent(errInternal))
		return
	}
	c.sessions.SetRoom(sessionID, room.ID)

	c.router.SendTo(sessionID, RoomCreatedEvent{Type: EventRoomCreated, RoomID: room.ID})
	c.audit.roomCreated(room.ID, session.DisplayName)
	c.audit.userJoined(room.ID, sessionID, session.DisplayName, count)
	c.logger.Info("Room created", "roomID", room.ID, "sessionID", sessionID)
}

// JoinRoom moves the session into an existing room. On RoomNotFound or
// RoomFull an error event goes to the originator and no state changes. On
// success the originator receives room-joined with the member count and the
// last messages oldest-first, and the other members receive user-joined.
func (c *Coordinator) JoinRoom(sessionID, roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.recoverIntent(sessionID)

	session, ok := c.sessions.Lookup(sessionID)
	if !ok {
		return
	}

	if _, exists := c.rooms.Get(roomID); !exists {
		c.router.SendTo(sessionID, NewErrorEvent(ErrRoomNotFound))
		return
	}

	// Rejoining the current room is idempotent: replay the room state without
	// a leave/join cycle, which would otherwise delete a single-member room
	// out from under its own occupant.
	if session.RoomID == roomID {
		count := c.rooms.MemberCount(roomID)
		c.router.SendTo(sessionID, RoomJoinedEvent{
			Type:        EventRoomJoined,
			RoomID:      roomID,
			MemberCount: count,
			Messages:    c.rooms.RecentMessages(roomID, JoinReplayLimit),
		})
		return
	}

	if c.rooms.MemberCount(roomID) >= MaxRoomMembers {
		c.router.SendTo(sessionID, NewErrorEvent(ErrRoomFull))
		return
	}

	if session.RoomID != "" {
		c.leaveLocked(session, session.RoomID)
	}

	count, err := c.rooms.AddMember(roomID, sessionID)
	if err != nil {
		c.router.SendTo(sessionID, NewErrorEvent(err))
		return
	}
	c.sessions.SetRoom(sessionID, roomID)

	c.router.SendTo(sessionID, RoomJoinedEvent{
		Type:        EventRoomJoined,
		RoomID:      roomID,
		MemberCount: count,
		Messages:    c.rooms.RecentMessages(roomID, JoinReplayLimit),
	})
	c.broadcastLocked(roomID, UserJoinedEvent{
		Type:        EventUserJoined,
		DisplayName: session.DisplayName,
		MemberCount: count,
	}, sessionID)

	c.audit.userJoined(roomID, sessionID, session.DisplayName, count)
	c.logger.Info("Session joined room", "roomID", roomID, "sessionID", sessionID)
}

// SendMessage appends a message to the session's current room and broadcasts
// it to every member including the sender. Content that is empty after
// trimming is a silent no-op.
func (c *Coordinator) SendMessage(sessionID, content string, encrypted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.recoverIntent(sessionID)

	session, ok := c.sessions.Lookup(sessionID)
	if !ok {
		return
	}
	if session.RoomID == "" {
		c.router.SendTo(sessionID, NewErrorEvent(ErrNotInRoom))
		return
	}
	if _, exists := c.rooms.Get(session.RoomID); !exists {
		c.router.SendTo(sessionID, NewErrorEvent(ErrNotInRoom))
		return
	}

	content, err := NormalizeContent(content)
	if err != nil {
		c.router.SendTo(sessionID, NewErrorEvent(err))
		return
	}
	if content == "" {
		return
	}

	msg := domain.Message{
		ID:        uuid.New().String(),
		Author:    session.DisplayName,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Encrypted: encrypted,
	}
	c.rooms.AppendMessage(session.RoomID, msg)

	c.broadcastLocked(session.RoomID, NewMessageEvent{Type: EventNewMessage, Message: msg}, "")
	c.audit.messageSent(session.RoomID, msg.ID, msg.Author, msg.Encrypted)
}

// Typing broadcasts a typing indicator to the other members of the session's
// current room. Outside a room it is a no-op; nothing is retained server-side.
func (c *Coordinator) Typing(sessionID string, isTyping bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.recoverIntent(sessionID)

	session, ok := c.sessions.Lookup(sessionID)
	if !ok || session.RoomID == "" {
		return
	}

	c.broadcastLocked(session.RoomID, UserTypingEvent{
		Type:        EventUserTyping,
		DisplayName: session.DisplayName,
		IsTyping:    isTyping,
	}, sessionID)
}

// Disconnect removes the connection, performing the leave transition on its
// current room if any. It is idempotent: a second disconnect for the same
// session does nothing and broadcasts nothing.
func (c *Coordinator) Disconnect(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.sessions.Unregister(sessionID)
	if !ok {
		return
	}
	if session.RoomID != "" {
		c.leaveLocked(session, session.RoomID)
	}
	c.logger.Info("Session disconnected", "sessionID", sessionID)
}

// Stats returns the live room and connection counts.
func (c *Coordinator) Stats() (roomCount, connectionCount int) {
	return c.rooms.Len(), c.sessions.Len()
}

// RoomStatus reports a point-in-time view of one room for the read-only
// status interface. It never mutates state.
func (c *Coordinator) RoomStatus(roomID string) (room domain.Room, memberCount int, exists bool) {
	room, exists = c.rooms.Get(roomID)
	if !exists {
		return domain.Room{}, 0, false
	}
	return room, c.rooms.MemberCount(roomID), true
}

// leaveLocked is the shared leave sub-transition: remove membership, notify
// the remaining members, and record room closure when the room emptied (the
// store already deleted it atomically). Callers hold the intent lock.
func (c *Coordinator) leaveLocked(session domain.Session, roomID string) {
	count, removed := c.rooms.RemoveMember(roomID, session.ID)
	if !removed {
		return
	}
	c.sessions.SetRoom(session.ID, "")

	if count > 0 {
		c.broadcastLocked(roomID, UserLeftEvent{
			Type:        EventUserLeft,
			DisplayName: session.DisplayName,
			MemberCount: count,
		}, session.ID)
	} else {
		c.audit.roomClosed(roomID)
		c.logger.Info("Room closed", "roomID", roomID)
	}
	c.audit.userLeft(roomID, session.ID, session.DisplayName, count)
}

// broadcastLocked fans an event out to the room's current members, skipping
// exclude if non-empty. Delivery is fire-and-forget per recipient.
func (c *Coordinator) broadcastLocked(roomID string, event any, exclude string) {
	for _, id := range c.rooms.MemberIDs(roomID) {
		if id == exclude {
			continue
		}
		c.router.SendTo(id, event)
	}
}

// recoverIntent converts a panic in an intent handler into a generic error
// event for the originator, so one connection's request can never take down
// the shared server process.
func (c *Coordinator) recoverIntent(sessionID string) {
	if r := recover(); r != nil {
		c.logger.Error("Recovered from panic in intent handler", "sessionID", sessionID, "panic", r)
		c.router.SendTo(sessionID, NewErrorEvent(errInternal))
	}
}
