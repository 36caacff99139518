package chat

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Room and message limits.
const (
	MaxRoomMembers   = 10
	MaxHistorySize   = 100
	JoinReplayLimit  = 50
	MaxMessageLength = 5000
)

// Errors reported back to the originating connection as error events. Each is
// terminal to the triggering intent only and never terminates the connection.
var (
	ErrRoomNotFound    = errors.New("Room not found")
	ErrRoomFull        = errors.New("Room is full (max 10 users)")
	ErrNotInRoom       = errors.New("Not in a room")
	ErrMalformedIntent = errors.New("Invalid message format")
	ErrMessageTooLong  = errors.New("Message exceeds maximum length")
)

// NormalizeContent trims message content. An empty result means the send is a
// silent no-op: no message, no event, no error.
func NormalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", nil
	}
	if len(content) > MaxMessageLength {
		return "", ErrMessageTooLong
	}
	if !utf8.ValidString(content) {
		return "", ErrMalformedIntent
	}
	return content, nil
}
