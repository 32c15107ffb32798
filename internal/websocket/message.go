package websocket

import (
	"encoding/json"

	"github.com/google/uuid"
)

type MessageType string

const (
	// Client → Server
	MessageTypeJoinCanvas MessageType = "JOIN_CANVAS"
	MessageTypeViewport   MessageType = "VIEWPORT"

	// Server → Client
	MessageTypePeerJoined MessageType = "PEER_JOINED"
	MessageTypePeerLeft   MessageType = "PEER_LEFT"
	MessageTypeError      MessageType = "ERROR"
)

type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:    msgType,
		Payload: payloadBytes,
	}, nil
}

type JoinCanvasPayload struct {
	CanvasID uuid.UUID `json:"canvasId"`
}

type ViewportPayload struct {
	UserID uuid.UUID `json:"userId,omitempty"`
	Scale  float64   `json:"scale"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
}

type PeerPayload struct {
	UserID uuid.UUID `json:"userId"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
