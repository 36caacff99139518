package gateway

import (
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/example/veilchat/modules/chat"
)

// handleWebSocket runs one connection's session: assign identity, deliver the
// welcome event, then decode intents until the transport closes. Intent
// failures are reported as error events and never terminate the connection.
func (m *Module) handleWebSocket(c *websocket.Conn) {
	session := m.coordinator.Connect(func(sessionID string) {
		m.hub.Attach(sessionID, c)
	})
	bucket := newTokenBucket(intentBurstSize, intentsPerSecond)

	defer func() {
		m.coordinator.Disconnect(session.ID)
		m.hub.Detach(session.ID)
	}()

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.logger.Debug("Client closed connection", "sessionID", session.ID)
			} else {
				m.logger.Debug("Read error", "sessionID", session.ID, "error", err)
			}
			return
		}

		if !bucket.allow() {
			m.logger.Debug("Rate limit exceeded, discarding intent", "sessionID", session.ID)
			continue
		}

		m.dispatchIntent(session.ID, data)
	}
}

// dispatchIntent decodes one inbound message and applies it to the
// coordinator. Shape errors produce an error event to the originator only.
func (m *Module) dispatchIntent(sessionID string, data []byte) {
	var intent ClientIntent
	if err := json.Unmarshal(data, &intent); err != nil {
		m.hub.SendTo(sessionID, chat.NewErrorEvent(chat.ErrMalformedIntent))
		return
	}

	switch intent.Type {
	case IntentCreateRoom:
		m.coordinator.CreateRoom(sessionID)
	case IntentJoinRoom:
		if intent.RoomID == "" {
			m.hub.SendTo(sessionID, chat.NewErrorEvent(chat.ErrMalformedIntent))
			return
		}
		m.coordinator.JoinRoom(sessionID, intent.RoomID)
	case IntentSendMessage:
		m.coordinator.SendMessage(sessionID, intent.Content, intent.Encrypted)
	case IntentTyping:
		m.coordinator.Typing(sessionID, intent.IsTyping)
	default:
		m.hub.SendTo(sessionID, chat.NewErrorEvent(chat.ErrMalformedIntent))
	}
}

// handleHealth handles GET /api/health.
func (m *Module) handleHealth(c *fiber.Ctx) error {
	stats, err := m.status.ServerStats(c.UserContext())
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(HealthResponse{
		Status:    "ok",
		Rooms:     stats.Rooms,
		Clients:   stats.Connections,
		Timestamp: time.Now().UnixMilli(),
	})
}

// handleRoomInfo handles GET /api/rooms/:id. Unknown rooms report
// exists=false rather than a 404, mirroring what the lobby UI expects.
func (m *Module) handleRoomInfo(c *fiber.Ctx) error {
	status, err := m.status.RoomStatus(c.UserContext(), c.Params("id"))
	if err != nil {
		return fiber.ErrInternalServerError
	}
	if !status.Exists {
		return c.JSON(RoomInfoResponse{Exists: false})
	}
	return c.JSON(RoomInfoResponse{
		Exists:    true,
		UserCount: status.MemberCount,
		CreatedAt: status.CreatedAt.UnixMilli(),
	})
}
