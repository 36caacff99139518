package chat

import (
	"time"

	"github.com/example/veilchat/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// AuditPublisher publishes domain events on the event bus for decoupled
// consumers such as telemetry. Client-facing fan-out never goes through the
// bus; these events are observational only. A nil publisher is valid and
// publishes nothing.
type AuditPublisher struct {
	bus    mono.EventBus
	logger types.Logger
}

// NewAuditPublisher wraps an event bus. The bus may be nil until the
// framework provides one via SetBus.
func NewAuditPublisher(logger types.Logger) *AuditPublisher {
	return &AuditPublisher{logger: logger}
}

// SetBus installs the event bus once the framework hands it over.
func (p *AuditPublisher) SetBus(bus mono.EventBus) {
	if p == nil {
		return
	}
	p.bus = bus
}

func (p *AuditPublisher) roomCreated(roomID, createdBy string) {
	if p == nil || p.bus == nil {
		return
	}
	event := events.RoomCreatedEvent{
		RoomID:    roomID,
		CreatedBy: createdBy,
		Timestamp: time.Now().UTC(),
	}
	if err := events.RoomCreatedV1.Publish(p.bus, event, nil); err != nil {
		p.logger.Warn("Failed to publish RoomCreated event", "error", err)
	}
}

func (p *AuditPublisher) roomClosed(roomID string) {
	if p == nil || p.bus == nil {
		return
	}
	event := events.RoomClosedEvent{
		RoomID:    roomID,
		Timestamp: time.Now().UTC(),
	}
	if err := events.RoomClosedV1.Publish(p.bus, event, nil); err != nil {
		p.logger.Warn("Failed to publish RoomClosed event", "error", err)
	}
}

func (p *AuditPublisher) userJoined(roomID, sessionID, displayName string, memberCount int) {
	if p == nil || p.bus == nil {
		return
	}
	event := events.UserJoinedEvent{
		RoomID:      roomID,
		SessionID:   sessionID,
		DisplayName: displayName,
		MemberCount: memberCount,
		Timestamp:   time.Now().UTC(),
	}
	if err := events.UserJoinedV1.Publish(p.bus, event, nil); err != nil {
		p.logger.Warn("Failed to publish UserJoined event", "error", err)
	}
}

func (p *AuditPublisher) userLeft(roomID, sessionID, displayName string, memberCount int) {
	if p == nil || p.bus == nil {
		return
	}
	event := events.UserLeftEvent{
		RoomID:      roomID,
		SessionID:   sessionID,
		DisplayName: displayName,
		MemberCount: memberCount,
		Timestamp:   time.Now().UTC(),
	}
	if err := events.UserLeftV1.Publish(p.bus, event, nil); err != nil {
		p.logger.Warn("Failed to publish UserLeft event", "error", err)
	}
}

func (p *AuditPublisher) messageSent(roomID, messageID, author string, encrypted bool) {
	if p == nil || p.bus == nil {
		return
	}
	event := events.MessageSentEvent{
		RoomID:    roomID,
		MessageID: messageID,
		Author:    author,
		Encrypted: encrypted,
		Timestamp: time.Now().UTC(),
	}
	if err := events.MessageSentV1.Publish(p.bus, event, nil); err != nil {
		p.logger.Warn("Failed to publish MessageSent event", "error", err)
	}
}
