package chat

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	// Client to Server
	MessageTypeJoinRoom  MessageType = "JOIN_ROOM"
	MessageTypeLeaveRoom MessageType = "LEAVE_ROOM"
	MessageTypeChat      MessageType = "MESSAGE"

	// Server to Client
	MessageTypeHistory      MessageType = "HISTORY"
	MessageTypeMemberJoined MessageType = "MEMBER_JOINED"
	MessageTypeMemberLeft   MessageType = "MEMBER_LEFT"
	MessageTypeError        MessageType = "ERROR"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// Client to Server payloads

type JoinRoomPayload struct {
	RoomCode    string `json:"roomCode"`
	DisplayName string `json:"displayName"`
}

type ChatPayload struct {
	Body string `json:"body"`
}

// Server to Client payloads

type HistoryPayload struct {
	RoomCode string        `json:"roomCode"`
	Messages []ChatMessage `json:"messages"`
}

type BroadcastChatPayload struct {
	Sender string `json:"sender"`
	Body   string `json:"body"`
}

type MemberEventPayload struct {
	DisplayName string `json:"displayName"`
	Members     int    `json:"members"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
