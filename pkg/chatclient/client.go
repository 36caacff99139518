package chatclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	domain "github.com/example/veilchat/domain/chat"
)

// State is the supervisor's connection state.
type State int

// Supervisor states.
const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// DefaultRetryDelay is the fixed delay between reconnect attempts.
const DefaultRetryDelay = 3 * time.Second

// ErrNotConnected is returned when an intent is sent without an open transport.
var ErrNotConnected = errors.New("not connected to server")

// ServerEvent is one decoded server-to-client event. Message is raw because
// its shape depends on Type: an object for new_message, a plain string for
// error.
type ServerEvent struct {
	Type         string           `json:"type"`
	ConnectionID string           `json:"connectionId,omitempty"`
	DisplayName  string           `json:"displayName,omitempty"`
	RoomID       string           `json:"roomId,omitempty"`
	MemberCount  int              `json:"memberCount,omitempty"`
	Messages     []domain.Message `json:"messages,omitempty"`
	Message      json.RawMessage  `json:"message,omitempty"`
	IsTyping     bool             `json:"isTyping,omitempty"`
}

// ChatMessage decodes the Message payload of a new_message event.
func (e ServerEvent) ChatMessage() (domain.Message, error) {
	var msg domain.Message
	if err := json.Unmarshal(e.Message, &msg); err != nil {
		return domain.Message{}, fmt.Errorf("failed to decode message payload: %w", err)
	}
	return msg, nil
}

// ErrorText decodes the Message payload of an error event.
func (e ServerEvent) ErrorText() string {
	var text string
	if err := json.Unmarshal(e.Message, &text); err != nil {
		return string(e.Message)
	}
	return text
}

// clientIntent is the outbound wire envelope.
type clientIntent struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId,omitempty"`
	Content   string `json:"content,omitempty"`
	Encrypted bool   `json:"encrypted,omitempty"`
	IsTyping  bool   `json:"isTyping"`
}

// Option configures a Client.
type Option func(*Client)

// WithRetryDelay overrides the fixed reconnect delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryDelay = d
		}
	}
}

// WithDialer overrides the WebSocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) {
		if d != nil {
			c.dialer = d
		}
	}
}

// OnEvent sets the handler invoked for every decoded server event.
func OnEvent(fn func(ServerEvent)) Option {
	return func(c *Client) { c.onEvent = fn }
}

// OnStateChange sets the handler invoked on every supervisor state change.
// A transition to StateConnected is a brand-new session with a fresh
// identity: any previous room membership must be re-established by sending a
// join intent with the room code the caller retained.
func OnStateChange(fn func(State)) Option {
	return func(c *Client) { c.onState = fn }
}

// Client supervises one WebSocket connection to the chat server: it dials,
// reads events, and on transport loss schedules a reconnect after a fixed
// delay, suppressing duplicate attempts while one is in flight or the
// transport is already open.
type Client struct {
	url        string
	dialer     *websocket.Dialer
	retryDelay time.Duration
	onEvent    func(ServerEvent)
	onState    func(State)

	mu           sync.Mutex
	state        State
	conn         *websocket.Conn
	inFlight     bool
	retryPending bool
	closed       bool
}

// New creates a client for the given WebSocket URL. Connect starts it.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url:        url,
		dialer:     websocket.DefaultDialer,
		retryDelay: DefaultRetryDelay,
		state:      StateDisconnected,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current supervisor state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect starts a connection attempt unless one is already in flight or the
// transport is already open.
func (c *Client) Connect() {
	c.mu.Lock()
	if c.closed || c.inFlight || c.state == StateConnected {
		c.mu.Unlock()
		return
	}
	c.inFlight = true
	c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	go c.dial()
}

// Close stops the supervisor and closes the transport. No further reconnect
// attempts are made.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.setStateLocked(StateDisconnected)
	c.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// CreateRoom sends a create_room intent.
func (c *Client) CreateRoom() error {
	return c.send(clientIntent{Type: "create_room"})
}

// JoinRoom sends a join_room intent for the given room code.
func (c *Client) JoinRoom(roomID string) error {
	return c.send(clientIntent{Type: "join_room", RoomID: roomID})
}

// SendMessage sends a send_message intent.
func (c *Client) SendMessage(content string, encrypted bool) error {
	return c.send(clientIntent{Type: "send_message", Content: content, Encrypted: encrypted})
}

// Typing sends a typing indicator.
func (c *Client) Typing(isTyping bool) error {
	return c.send(clientIntent{Type: "typing", IsTyping: isTyping})
}

// send serializes intent writes on the shared transport.
func (c *Client) send(intent clientIntent) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || c.state != StateConnected {
		return ErrNotConnected
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) dial() {
	conn, resp, err := c.dialer.Dial(c.url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	c.mu.Lock()
	c.inFlight = false
	if c.closed {
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		c.setStateLocked(StateDisconnected)
		c.scheduleReconnectLocked()
		c.mu.Unlock()
		return
	}
	c.conn = conn
	c.setStateLocked(StateConnected)
	c.mu.Unlock()

	go c.readLoop(conn)
}

// readLoop decodes events until the transport fails, then hands control back
// to the supervisor for reconnection.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var event ServerEvent
		if err := json.Unmarshal(data, &event); err != nil {
			continue
		}
		if c.onEvent != nil {
			c.onEvent(event)
		}
	}

	_ = conn.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != conn {
		// A newer connection already replaced this one.
		return
	}
	c.conn = nil
	if c.closed {
		return
	}
	c.setStateLocked(StateDisconnected)
	c.scheduleReconnectLocked()
}

// scheduleReconnectLocked arms a single reconnect timer; duplicate schedules
// while one is pending are suppressed.
func (c *Client) scheduleReconnectLocked() {
	if c.retryPending || c.closed {
		return
	}
	c.retryPending = true

	time.AfterFunc(c.retryDelay, func() {
		c.mu.Lock()
		c.retryPending = false
		c.mu.Unlock()
		c.Connect()
	})
}

func (c *Client) setStateLocked(state State) {
	if c.state == state {
		return
	}
	c.state = state
	if c.onState != nil {
		// Invoked inline; handlers must not call back into the client while
		// holding their own locks against it.
		go c.onState(state)
	}
}
