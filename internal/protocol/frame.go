// Package protocol converts room websocket frames to typed messages and back.
//
// Frames flowing from the room server to a participant decode to Events;
// frames flowing from a participant to the server decode to Commands. Both
// directions validate ids and fill missing optional fields at this boundary
// so the roster and the draft engine only ever see well-formed values.
package protocol

import (
	"encoding/json"
	"strings"
)

// Frame types. The names match the room protocol's event names.
const (
	TypeRoomJoined = "room joined"
	TypeUserJoined = "user joined"
	TypeUserLeft   = "user left"
	TypeChatUpdate = "chat update"
	TypeError      = "error"
	TypeJoinLobby  = "join lobby"
	TypeJoinRoom   = "join room"
)

// Frame is the websocket envelope.
type Frame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// ParseFrame decodes one frame envelope.
func ParseFrame(b []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(b, &f); err != nil {
		return Frame{}, Wrap(CodeInvalidFrame, "invalid frame", err)
	}
	f.Type = strings.TrimSpace(f.Type)
	if f.Type == "" {
		return Frame{}, New(CodeInvalidFrame, "frame type is required")
	}
	return f, nil
}

func newFrame(frameType string, payload any) (Frame, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, Wrap(CodeInvalidPayload, "marshal "+frameType+" payload", err)
	}
	return Frame{Type: frameType, Payload: b}, nil
}

func unmarshalPayload(f Frame, target any) error {
	if len(f.Payload) == 0 {
		return New(CodeInvalidPayload, f.Type+" payload is required")
	}
	if err := json.Unmarshal(f.Payload, target); err != nil {
		return Wrap(CodeInvalidPayload, "invalid "+f.Type+" payload", err)
	}
	return nil
}
