package chat

import (
	"crypto/rand"
	"math/big"
)

// Room codes use uppercase letters and digits only, matching what users are
// expected to read out or paste into a join form.
const roomCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RoomCodeLength is the length of generated room codes.
const RoomCodeLength = 8

// GenerateRoomCode generates a random room code. The store retries on the
// unlikely collision with a live room.
func GenerateRoomCode() (string, error) {
	code := make([]byte, RoomCodeLength)
	max := big.NewInt(int64(len(roomCodeChars)))

	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = roomCodeChars[n.Int64()]
	}

	return string(code), nil
}

// IsValidRoomCode checks if a string has the shape of a room code.
func IsValidRoomCode(code string) bool {
	if len(code) != RoomCodeLength {
		return false
	}
	for _, c := range code {
		if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}
