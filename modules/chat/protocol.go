package chat

import domain "github.com/example/veilchat/domain/chat"

// Server-to-client event type discriminators.
const (
	EventWelcome     = "welcome"
	EventRoomCreated = "room_created"
	EventRoomJoined  = "room_joined"
	EventNewMessage  = "new_message"
	EventUserJoined  = "user_joined"
	EventUserLeft    = "user_left"
	EventUserTyping  = "user_typing"
	EventError       = "error"
)

// WelcomeEvent carries the identity assigned to a new connection. It is sent
// to the originating connection only, before any intent is processed.
type WelcomeEvent struct {
	Type         string `json:"type"`
	ConnectionID string `json:"connectionId"`
	DisplayName  string `json:"displayName"`
}

// RoomCreatedEvent confirms room creation to the originator only.
type RoomCreatedEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

// RoomJoinedEvent confirms a join to the originator only, carrying the current
// member count and the most recent messages oldest-first. Messages is never
// nil so an empty log marshals as [].
type RoomJoinedEvent struct {
	Type        string           `json:"type"`
	RoomID      string           `json:"roomId"`
	MemberCount int              `json:"memberCount"`
	Messages    []domain.Message `json:"messages"`
}

// NewMessageEvent carries a full message to every member of the room,
// including the sender, which reconciles its local echo by message identity.
type NewMessageEvent struct {
	Type    string         `json:"type"`
	Message domain.Message `json:"message"`
}

// UserJoinedEvent notifies existing members that someone joined.
type UserJoinedEvent struct {
	Type        string `json:"type"`
	DisplayName string `json:"displayName"`
	MemberCount int    `json:"memberCount"`
}

// UserLeftEvent notifies remaining members that someone left.
type UserLeftEvent struct {
	Type        string `json:"type"`
	DisplayName string `json:"displayName"`
	MemberCount int    `json:"memberCount"`
}

// UserTypingEvent is a best-effort typing indicator, never delivered to its
// own sender and never retained.
type UserTypingEvent struct {
	Type        string `json:"type"`
	DisplayName string `json:"displayName"`
	IsTyping    bool   `json:"isTyping"`
}

// ErrorEvent reports an intent failure to the originating connection.
type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewErrorEvent builds an error event from an intent error.
func NewErrorEvent(err error) ErrorEvent {
	return ErrorEvent{Type: EventError, Message: err.Error()}
}
