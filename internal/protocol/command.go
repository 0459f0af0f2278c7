package protocol

import (
	"strings"

	"github.com/louisbranch/livedraft/internal/draft"
)

// Command is a message sent by a participant to the room server.
type Command interface {
	// Kind returns the frame type the command travels as.
	Kind() string
	isCommand()
}

// JoinLobby introduces the participant to the server.
type JoinLobby struct {
	Username string
	Location string
}

// JoinRoom asks the server to place the participant in a room.
type JoinRoom struct {
	RoomID string
}

// Compose broadcasts one edit to the sender's own draft.
type Compose struct {
	Op draft.Op
}

func (JoinLobby) Kind() string { return TypeJoinLobby }
func (JoinRoom) Kind() string  { return TypeJoinRoom }
func (Compose) Kind() string   { return TypeChatUpdate }

func (JoinLobby) isCommand() {}
func (JoinRoom) isCommand()  {}
func (Compose) isCommand()   {}

type joinLobbyPayload struct {
	Username string `json:"username"`
	Location string `json:"location"`
}

type joinRoomPayload struct {
	RoomID wireID `json:"roomId"`
}

type composePayload struct {
	Diff    *wireDiff `json:"diff,omitempty"`
	Message *string   `json:"message,omitempty"`
}

// DecodeCommand decodes a participant-to-server frame.
func DecodeCommand(f Frame) (Command, error) {
	switch f.Type {
	case TypeJoinLobby:
		var p joinLobbyPayload
		if err := unmarshalPayload(f, &p); err != nil {
			return nil, err
		}
		return JoinLobby{Username: strings.TrimSpace(p.Username), Location: strings.TrimSpace(p.Location)}, nil

	case TypeJoinRoom:
		var p joinRoomPayload
		if err := unmarshalPayload(f, &p); err != nil {
			return nil, err
		}
		if p.RoomID == "" {
			return nil, New(CodeMissingID, "join room without roomId")
		}
		return JoinRoom{RoomID: string(p.RoomID)}, nil

	case TypeChatUpdate:
		var p composePayload
		if err := unmarshalPayload(f, &p); err != nil {
			return nil, err
		}
		return Compose{Op: chatUpdateOp(p.Diff, p.Message)}, nil

	default:
		return nil, New(CodeUnknownType, "unknown command type "+f.Type)
	}
}

// EncodeCommand encodes a participant-to-server frame.
func EncodeCommand(c Command) (Frame, error) {
	switch c := c.(type) {
	case JoinLobby:
		return newFrame(TypeJoinLobby, joinLobbyPayload{Username: c.Username, Location: c.Location})

	case JoinRoom:
		if strings.TrimSpace(c.RoomID) == "" {
			return Frame{}, New(CodeMissingID, "room id is required")
		}
		return newFrame(TypeJoinRoom, joinRoomPayload{RoomID: wireID(c.RoomID)})

	case Compose:
		diff, err := diffFromOp(c.Op)
		if err != nil {
			return Frame{}, err
		}
		return newFrame(TypeChatUpdate, composePayload{Diff: &diff})

	default:
		return Frame{}, New(CodeUnknownType, "cannot encode command")
	}
}
