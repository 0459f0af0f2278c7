package protocol

import (
	"encoding/json"

	"github.com/louisbranch/livedraft/internal/draft"
	"github.com/louisbranch/livedraft/internal/roster"
)

// Event is a message sent by the room server to a participant.
type Event interface {
	// Kind returns the frame type the event travels as.
	Kind() string
	isEvent()
}

// RoomJoined is the snapshot a participant receives after joining a room.
type RoomJoined struct {
	RoomID          string
	Users           []roster.Seed
	CurrentMessages map[string]string
}

// UserJoined announces a participant entering the room.
type UserJoined struct {
	User roster.Seed
}

// UserLeft announces a participant leaving the room.
type UserLeft struct {
	ID string
}

// ChatUpdate carries one edit to UserID's draft.
type ChatUpdate struct {
	UserID string
	Op     draft.Op
}

// ServerError is an error reported by the room server.
type ServerError struct {
	Code    string
	Message string
}

func (RoomJoined) Kind() string  { return TypeRoomJoined }
func (UserJoined) Kind() string  { return TypeUserJoined }
func (UserLeft) Kind() string    { return TypeUserLeft }
func (ChatUpdate) Kind() string  { return TypeChatUpdate }
func (ServerError) Kind() string { return TypeError }

func (RoomJoined) isEvent()  {}
func (UserJoined) isEvent()  {}
func (UserLeft) isEvent()    {}
func (ChatUpdate) isEvent()  {}
func (ServerError) isEvent() {}

type roomJoinedPayload struct {
	RoomID          string             `json:"roomId,omitempty"`
	Users           []wireUser         `json:"users"`
	CurrentMessages map[string]*string `json:"currentMessages"`
}

type chatUpdateEventPayload struct {
	UserID  wireID    `json:"userId"`
	Diff    *wireDiff `json:"diff,omitempty"`
	Message *string   `json:"message,omitempty"`
}

type errorEnvelope struct {
	Error wireError `json:"error"`
}

type wireError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// DecodeEvent decodes a server-to-participant frame.
func DecodeEvent(f Frame) (Event, error) {
	switch f.Type {
	case TypeRoomJoined:
		var p roomJoinedPayload
		if err := unmarshalPayload(f, &p); err != nil {
			return nil, err
		}
		users := make([]roster.Seed, 0, len(p.Users))
		for _, u := range p.Users {
			if u.ID == "" {
				// One bad entry does not invalidate the rest of the snapshot.
				continue
			}
			users = append(users, u.seed())
		}
		messages := make(map[string]string, len(p.CurrentMessages))
		for id, text := range p.CurrentMessages {
			messages[id] = deref(text)
		}
		return RoomJoined{RoomID: p.RoomID, Users: users, CurrentMessages: messages}, nil

	case TypeUserJoined:
		var u wireUser
		if err := unmarshalPayload(f, &u); err != nil {
			return nil, err
		}
		if u.ID == "" {
			return nil, New(CodeMissingID, "user joined without id")
		}
		return UserJoined{User: u.seed()}, nil

	case TypeUserLeft:
		id, err := decodeUserLeft(f)
		if err != nil {
			return nil, err
		}
		return UserLeft{ID: id}, nil

	case TypeChatUpdate:
		var p chatUpdateEventPayload
		if err := unmarshalPayload(f, &p); err != nil {
			return nil, err
		}
		if p.UserID == "" {
			return nil, New(CodeMissingID, "chat update without userId")
		}
		return ChatUpdate{UserID: string(p.UserID), Op: chatUpdateOp(p.Diff, p.Message)}, nil

	case TypeError:
		var p errorEnvelope
		if err := unmarshalPayload(f, &p); err != nil {
			return nil, err
		}
		return ServerError{Code: p.Error.Code, Message: p.Error.Message}, nil

	default:
		return nil, New(CodeUnknownType, "unknown event type "+f.Type)
	}
}

// EncodeEvent encodes a server-to-participant frame.
func EncodeEvent(e Event) (Frame, error) {
	switch e := e.(type) {
	case RoomJoined:
		p := roomJoinedPayload{
			RoomID:          e.RoomID,
			Users:           make([]wireUser, 0, len(e.Users)),
			CurrentMessages: make(map[string]*string, len(e.CurrentMessages)),
		}
		for _, u := range e.Users {
			p.Users = append(p.Users, wireUser{ID: wireID(u.ID), Username: u.DisplayName, Location: u.Location})
		}
		for id, text := range e.CurrentMessages {
			p.CurrentMessages[id] = &text
		}
		return newFrame(TypeRoomJoined, p)

	case UserJoined:
		return newFrame(TypeUserJoined, wireUser{ID: wireID(e.User.ID), Username: e.User.DisplayName, Location: e.User.Location})

	case UserLeft:
		return newFrame(TypeUserLeft, e.ID)

	case ChatUpdate:
		diff, err := diffFromOp(e.Op)
		if err != nil {
			return Frame{}, err
		}
		return newFrame(TypeChatUpdate, chatUpdateEventPayload{UserID: wireID(e.UserID), Diff: &diff})

	case ServerError:
		return newFrame(TypeError, errorEnvelope{Error: wireError{Code: e.Code, Message: e.Message}})

	default:
		return Frame{}, New(CodeUnknownType, "cannot encode event")
	}
}

// decodeUserLeft accepts a bare id or an object with an id field.
func decodeUserLeft(f Frame) (string, error) {
	var id wireID
	if err := unmarshalPayload(f, &id); err != nil {
		var obj struct {
			ID wireID `json:"id"`
		}
		if objErr := json.Unmarshal(f.Payload, &obj); objErr != nil {
			return "", err
		}
		id = obj.ID
	}
	if id == "" {
		return "", New(CodeMissingID, "user left without id")
	}
	return string(id), nil
}

func (u wireUser) seed() roster.Seed {
	return roster.Seed{ID: string(u.ID), DisplayName: u.Username, Location: u.Location}
}
