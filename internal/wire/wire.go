// Package wire defines the JSON envelopes the client and relay exchange
// over the channel. The chat payload is itself a JSON string carrying
// {"shape": ...}, so a shape travels double-encoded, exactly as the relay
// persists it.
package wire

import (
	"encoding/json"
	"fmt"

	"inkroom/internal/shape"
)

const (
	TypeJoinRoom  = "join_room"
	TypeLeaveRoom = "leave_room"
	TypeChat      = "chat"
)

// Envelope is one frame on the channel.
type Envelope struct {
	Type    string `json:"type"`
	RoomID  string `json:"roomId,omitempty"`
	Message string `json:"message,omitempty"`
}

func Join(roomID string) Envelope {
	return Envelope{Type: TypeJoinRoom, RoomID: roomID}
}

func Leave(roomID string) Envelope {
	return Envelope{Type: TypeLeaveRoom, RoomID: roomID}
}

// Chat wraps a shape into a chat envelope for the given room.
func Chat(roomID string, s shape.Shape) (Envelope, error) {
	payload, err := EncodeShape(s)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: TypeChat, RoomID: roomID, Message: payload}, nil
}

// shapePayload is the chat message body: {"shape": {...}}.
type shapePayload struct {
	Shape json.RawMessage `json:"shape"`
}

// EncodeShape produces the chat payload string for a shape.
func EncodeShape(s shape.Shape) (string, error) {
	raw, err := shape.Marshal(s)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(shapePayload{Shape: raw})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeShape extracts the shape from a chat payload string.
func DecodeShape(message string) (shape.Shape, error) {
	var p shapePayload
	if err := json.Unmarshal([]byte(message), &p); err != nil {
		return nil, fmt.Errorf("wire: chat payload: %w", err)
	}
	if len(p.Shape) == 0 {
		return nil, fmt.Errorf("wire: chat payload has no shape")
	}
	return shape.Unmarshal(p.Shape)
}
