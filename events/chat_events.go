package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// RoomCreatedEvent is emitted when a room is created.
type RoomCreatedEvent struct {
	RoomID    string    `json:"room_id"`
	CreatedBy string    `json:"created_by"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomClosedEvent is emitted when a room is deleted because its last member left.
type RoomClosedEvent struct {
	RoomID    string    `json:"room_id"`
	Timestamp time.Time `json:"timestamp"`
}

// UserJoinedEvent is emitted when a session joins a room.
type UserJoinedEvent struct {
	RoomID      string    `json:"room_id"`
	SessionID   string    `json:"session_id"`
	DisplayName string    `json:"display_name"`
	MemberCount int       `json:"member_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// UserLeftEvent is emitted when a session leaves a room, whether by
// disconnecting or by switching to another room.
type UserLeftEvent struct {
	RoomID      string    `json:"room_id"`
	SessionID   string    `json:"session_id"`
	DisplayName string    `json:"display_name"`
	MemberCount int       `json:"member_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// MessageSentEvent is emitted when a message is accepted into a room's log.
type MessageSentEvent struct {
	RoomID    string    `json:"room_id"`
	MessageID string    `json:"message_id"`
	Author    string    `json:"author"`
	Encrypted bool      `json:"encrypted"`
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the chat domain.
var (
	RoomCreatedV1 = helper.EventDefinition[RoomCreatedEvent](
		"chat",
		"RoomCreated",
		"v1",
	)

	RoomClosedV1 = helper.EventDefinition[RoomClosedEvent](
		"chat",
		"RoomClosed",
		"v1",
	)

	UserJoinedV1 = helper.EventDefinition[UserJoinedEvent](
		"chat",
		"UserJoined",
		"v1",
	)

	UserLeftV1 = helper.EventDefinition[UserLeftEvent](
		"chat",
		"UserLeft",
		"v1",
	)

	MessageSentV1 = helper.EventDefinition[MessageSentEvent](
		"chat",
		"MessageSent",
		"v1",
	)
)
