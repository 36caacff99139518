package broadcast

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
)

const (
	// sendQueueSize bounds each connection's outbound queue. A connection
	// that cannot drain this many events is dropped rather than allowed to
	// stall intent processing.
	sendQueueSize = 256

	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
)

// wsConn is the write side of a transport. *websocket.Conn satisfies it;
// tests substitute a fake.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// handle is one connection's outbound side. The send channel is drained by a
// single writer goroutine, so no two goroutines ever interleave writes on the
// same transport.
type handle struct {
	sessionID string
	conn      wsConn
	send      chan []byte
	closed    bool
}

// Hub owns the outbound transport handles and fans server events out to
// them. Sends are non-blocking: a full queue or a write failure drops the
// connection, which surfaces to the gateway's read loop as a disconnect.
type Hub struct {
	mu      sync.RWMutex
	handles map[string]*handle
	logger  types.Logger
}

// NewHub creates an empty hub.
func NewHub(logger types.Logger) *Hub {
	return &Hub{
		handles: make(map[string]*handle),
		logger:  logger,
	}
}

// Attach registers a connection's transport under its session ID and starts
// its writer goroutine.
func (h *Hub) Attach(sessionID string, conn *websocket.Conn) {
	h.attach(sessionID, conn)
}

func (h *Hub) attach(sessionID string, conn wsConn) {
	hd := &handle{
		sessionID: sessionID,
		conn:      conn,
		send:      make(chan []byte, sendQueueSize),
	}

	h.mu.Lock()
	h.handles[sessionID] = hd
	count := len(h.handles)
	h.mu.Unlock()

	go h.writePump(hd)
	h.logger.Debug("Transport attached", "sessionID", sessionID, "total", count)
}

// Detach removes a connection's transport and stops its writer. Safe to call
// more than once for the same session.
func (h *Hub) Detach(sessionID string) {
	h.mu.Lock()
	hd, ok := h.handles[sessionID]
	if ok {
		delete(h.handles, sessionID)
		hd.closed = true
	}
	count := len(h.handles)
	h.mu.Unlock()

	if !ok {
		return
	}
	// Close the channel after releasing the lock; the writer drains what is
	// queued and sends a close frame.
	close(hd.send)
	h.logger.Debug("Transport detached", "sessionID", sessionID, "total", count)
}

// SendTo marshals the event and enqueues it for the session's writer.
// Delivery is fire-and-forget: an unknown session is skipped, and a session
// whose queue is full is dropped as if it had disconnected.
func (h *Hub) SendTo(sessionID string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal event", "sessionID", sessionID, "error", err)
		return
	}

	if h.trySend(sessionID, data) {
		return
	}

	h.mu.RLock()
	_, stillAttached := h.handles[sessionID]
	h.mu.RUnlock()
	if stillAttached {
		h.logger.Warn("Dropping connection with full send queue", "sessionID", sessionID)
		h.dropConn(sessionID)
	}
}

// trySend enqueues under the read lock so Detach cannot close the channel
// mid-send. The recover covers the remaining race where the channel closes
// between the map check and the send.
func (h *Hub) trySend(sessionID string, data []byte) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	h.mu.RLock()
	defer h.mu.RUnlock()

	hd, exists := h.handles[sessionID]
	if !exists || hd.closed {
		return true // nothing to deliver to; not a backpressure failure
	}

	select {
	case hd.send <- data:
		return true
	default:
		return false
	}
}

// dropConn closes the underlying transport. The gateway's read loop observes
// the closed connection and runs the normal disconnect path, which detaches
// the handle.
func (h *Hub) dropConn(sessionID string) {
	h.mu.RLock()
	hd, ok := h.handles[sessionID]
	h.mu.RUnlock()
	if ok {
		_ = hd.conn.Close()
	}
}

// ClientCount returns the number of attached transports.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.handles)
}

// closeAll closes every attached transport; used at shutdown.
func (h *Hub) closeAll() {
	h.mu.Lock()
	handles := make([]*handle, 0, len(h.handles))
	for _, hd := range h.handles {
		hd.closed = true
		handles = append(handles, hd)
	}
	h.handles = make(map[string]*handle)
	h.mu.Unlock()

	for _, hd := range handles {
		close(hd.send)
		_ = hd.conn.Close()
	}
}

// writePump drains one connection's queue. It is the only goroutine writing
// to the transport, and it exits on write failure or queue closure.
func (h *Hub) writePump(hd *handle) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = hd.conn.Close()
	}()

	for {
		select {
		case data, ok := <-hd.send:
			_ = hd.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = hd.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := hd.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("Write failed, closing transport", "sessionID", hd.sessionID, "error", err)
				return
			}
		case <-ticker.C:
			_ = hd.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := hd.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
