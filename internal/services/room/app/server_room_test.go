package server

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/livedraft/internal/draft"
)

func TestRoomHubForgetsEmptyRooms(t *testing.T) {
	hub := newRoomHub()
	ann := newWSSession("a", nil)

	r, _ := hub.join("r1", ann, nil)
	if hub.size() != 1 {
		t.Fatalf("rooms = %d, want 1", hub.size())
	}
	hub.leave(r, ann)
	if hub.size() != 0 {
		t.Fatalf("rooms = %d, want 0", hub.size())
	}
}

func TestRoomSnapshotExcludesJoiner(t *testing.T) {
	hub := newRoomHub()
	ann := newWSSession("a", nil)
	ann.setProfile("Ann", "")
	bob := newWSSession("b", nil)

	r, _ := hub.join("r1", ann, nil)
	if _, err := r.applyEdit(ann, draft.FullReplace{Text: "hi"}); err != nil {
		t.Fatalf("apply edit: %v", err)
	}
	_, snapshot := hub.join("r1", bob, nil)

	if len(snapshot.users) != 1 || snapshot.users[0].ID != "a" || snapshot.users[0].DisplayName != "Ann" {
		t.Fatalf("users = %+v, want Ann only", snapshot.users)
	}
	if snapshot.messages["a"] != "hi" {
		t.Fatalf("message for a = %q, want hi", snapshot.messages["a"])
	}
	if _, ok := snapshot.messages["b"]; ok {
		t.Fatal("snapshot includes the joiner's own draft")
	}
	if len(snapshot.others) != 1 {
		t.Fatalf("others = %d, want 1", len(snapshot.others))
	}
}

func TestRoomJoinWelcomesBeforeConcurrentEdits(t *testing.T) {
	hub := newRoomHub()
	ann := newWSSession("a", nil)
	bob := newWSSession("b", nil)
	r, _ := hub.join("r1", ann, nil)

	recipients := make(chan int, 1)
	_, snapshot := hub.join("r1", bob, func(*room, roomSnapshot) {
		go func() {
			others, err := r.applyEdit(ann, draft.FullReplace{Text: "typing"})
			if err != nil {
				recipients <- -1
				return
			}
			recipients <- len(others)
		}()
		select {
		case <-recipients:
			t.Error("edit applied before the joiner was welcomed")
		case <-time.After(50 * time.Millisecond):
		}
	})

	if got := snapshot.messages["a"]; got != "" {
		t.Fatalf("snapshot message for a = %q, want empty", got)
	}
	select {
	case n := <-recipients:
		if n != 1 {
			t.Fatalf("edit recipients = %d, want the joiner", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("edit was never applied")
	}
}

func TestRoomApplyEdit(t *testing.T) {
	r := newRoom("r1")
	ann := newWSSession("a", nil)
	if _, err := r.applyEdit(ann, draft.Insert{Text: "x"}); !errors.Is(err, errNotInRoom) {
		t.Fatalf("err = %v, want errNotInRoom", err)
	}

	r.join(ann, nil)
	for _, op := range []draft.Op{
		draft.Insert{Index: 0, Text: "helo"},
		draft.Insert{Index: 3, Text: "l"},
		draft.Delete{Index: 0, Count: 1},
	} {
		if _, err := r.applyEdit(ann, op); err != nil {
			t.Fatalf("apply %#v: %v", op, err)
		}
	}
	if got := r.message("a"); got != "ello" {
		t.Fatalf("message = %q, want %q", got, "ello")
	}

	if _, err := r.applyEdit(ann, draft.FullReplace{Text: strings.Repeat("a", maxDraftUnits+1)}); !errors.Is(err, errDraftTooLong) {
		t.Fatalf("err = %v, want errDraftTooLong", err)
	}
	if got := r.message("a"); got != "ello" {
		t.Fatalf("message after rejected edit = %q, want %q", got, "ello")
	}
}
