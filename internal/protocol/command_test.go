package protocol

import (
	"encoding/json"
	"testing"

	"github.com/louisbranch/livedraft/internal/draft"
)

func TestEncodeComposeFullReplaceShape(t *testing.T) {
	f, err := EncodeCommand(Compose{Op: draft.FullReplace{Text: "Hello, world!"}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if f.Type != "chat update" {
		t.Fatalf("type = %q, want %q", f.Type, "chat update")
	}
	want := `{"diff":{"type":"full-replace","text":"Hello, world!"}}`
	if string(f.Payload) != want {
		t.Fatalf("payload = %s, want %s", f.Payload, want)
	}
}

func TestEncodeComposeEmptyFullReplaceKeepsText(t *testing.T) {
	f, err := EncodeCommand(Compose{Op: draft.FullReplace{}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"diff":{"type":"full-replace","text":""}}`
	if string(f.Payload) != want {
		t.Fatalf("payload = %s, want %s", f.Payload, want)
	}
}

func TestEncodeJoinFrames(t *testing.T) {
	lobby, err := EncodeCommand(JoinLobby{Username: "SigmaBot", Location: "BotBotBot"})
	if err != nil {
		t.Fatalf("encode lobby: %v", err)
	}
	if lobby.Type != "join lobby" || string(lobby.Payload) != `{"username":"SigmaBot","location":"BotBotBot"}` {
		t.Fatalf("lobby frame = %s %s", lobby.Type, lobby.Payload)
	}

	room, err := EncodeCommand(JoinRoom{RoomID: "219456"})
	if err != nil {
		t.Fatalf("encode room: %v", err)
	}
	if room.Type != "join room" || string(room.Payload) != `{"roomId":"219456"}` {
		t.Fatalf("room frame = %s %s", room.Type, room.Payload)
	}

	if _, err := EncodeCommand(JoinRoom{RoomID: "  "}); CodeOf(err) != CodeMissingID {
		t.Fatalf("blank room err = %v, want missing id", err)
	}
}

func TestCommandsSurviveEncoding(t *testing.T) {
	commands := []Command{
		JoinLobby{Username: "Bob", Location: "Lisbon"},
		JoinRoom{RoomID: "r1"},
		Compose{Op: draft.Insert{Index: 1, Text: "x"}},
		Compose{Op: draft.Delete{Index: 1, Count: 4}},
		Compose{Op: draft.Replace{Index: 1, Text: "yz"}},
	}
	for _, want := range commands {
		f, err := EncodeCommand(want)
		if err != nil {
			t.Fatalf("encode %#v: %v", want, err)
		}
		got, err := DecodeCommand(f)
		if err != nil {
			t.Fatalf("decode %s: %v", f.Payload, err)
		}
		if got != want {
			t.Fatalf("decoded %#v, want %#v", got, want)
		}
	}
}

func TestDecodeComposeFromMessage(t *testing.T) {
	var f Frame
	if err := json.Unmarshal([]byte(`{"type":"chat update","payload":{"message":"typed"}}`), &f); err != nil {
		t.Fatalf("frame: %v", err)
	}
	c, err := DecodeCommand(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c != (Compose{Op: draft.FullReplace{Text: "typed"}}) {
		t.Fatalf("command = %#v", c)
	}
}

func TestDecodeCommandRejectsEvents(t *testing.T) {
	_, err := DecodeCommand(Frame{Type: TypeUserLeft, Payload: json.RawMessage(`"1"`)})
	if CodeOf(err) != CodeUnknownType {
		t.Fatalf("err = %v, want unknown type", err)
	}
}
