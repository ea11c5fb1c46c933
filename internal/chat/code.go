package chat

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// GenerateRoomCode returns a 6-character upper-hex code. Every chat session
// gets its own room unless the caller supplies an existing code to join.
func GenerateRoomCode() string {
	bytes := make([]byte, 3)
	rand.Read(bytes)
	return strings.ToUpper(hex.EncodeToString(bytes))
}
