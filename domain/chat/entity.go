package chat

import "time"

// Session represents one live client connection with its assigned identity.
// The ID and DisplayName are fixed for the lifetime of the connection; only
// RoomID changes as the client moves between rooms ("" means not in a room).
type Session struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	RoomID      string `json:"roomId,omitempty"`
}

// Room represents an ephemeral chat room identified by a short code.
type Room struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// Message represents a chat message. Author is the sender's display name at
// the time of sending, not a live reference; it survives the sender
// disconnecting. Encrypted is informational only.
type Message struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Encrypted bool      `json:"encrypted"`
}
