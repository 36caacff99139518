package gateway

// Client-to-server intent type discriminators.
const (
	IntentCreateRoom  = "create_room"
	IntentJoinRoom    = "join_room"
	IntentSendMessage = "send_message"
	IntentTyping      = "typing"
)

// ClientIntent is the envelope for every inbound WebSocket message.
type ClientIntent struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId,omitempty"`
	Content   string `json:"content,omitempty"`
	Encrypted bool   `json:"encrypted,omitempty"`
	IsTyping  bool   `json:"isTyping,omitempty"`
}

// HealthResponse is the /api/health payload.
type HealthResponse struct {
	Status    string `json:"status"`
	Rooms     int    `json:"rooms"`
	Clients   int    `json:"clients"`
	Timestamp int64  `json:"timestamp"`
}

// RoomInfoResponse is the /api/rooms/:id payload.
type RoomInfoResponse struct {
	Exists    bool  `json:"exists"`
	UserCount int   `json:"userCount,omitempty"`
	CreatedAt int64 `json:"createdAt,omitempty"`
}

// ErrorResponse is the REST error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
