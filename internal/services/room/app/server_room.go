package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/louisbranch/livedraft/internal/draft"
	"github.com/louisbranch/livedraft/internal/platform/timeouts"
	"github.com/louisbranch/livedraft/internal/protocol"
	"github.com/louisbranch/livedraft/internal/roster"
	"golang.org/x/net/websocket"
)

type wsSession struct {
	mu       sync.Mutex
	id       string
	username string
	location string
	room     *room
	peer     *wsPeer
}

func newWSSession(id string, peer *wsPeer) *wsSession {
	return &wsSession{id: id, peer: peer}
}

func (s *wsSession) setProfile(username, location string) {
	s.mu.Lock()
	s.username = username
	s.location = location
	s.mu.Unlock()
}

func (s *wsSession) seed() roster.Seed {
	s.mu.Lock()
	defer s.mu.Unlock()
	return roster.Seed{ID: s.id, DisplayName: s.username, Location: s.location}
}

func (s *wsSession) setRoom(next *room) *room {
	s.mu.Lock()
	previous := s.room
	s.room = next
	s.mu.Unlock()
	return previous
}

func (s *wsSession) currentRoom() *room {
	s.mu.Lock()
	r := s.room
	s.mu.Unlock()
	return r
}

type wsPeer struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	encoder *json.Encoder
}

func newWSPeer(conn *websocket.Conn) *wsPeer {
	return &wsPeer{conn: conn, encoder: json.NewEncoder(conn)}
}

func (p *wsPeer) writeFrame(frame protocol.Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.conn.SetWriteDeadline(time.Now().Add(timeouts.Write))
	return p.encoder.Encode(frame)
}

type roomHub struct {
	mu    sync.Mutex
	rooms map[string]*room
}

func newRoomHub() *roomHub {
	return &roomHub{rooms: make(map[string]*room)}
}

// join adds session to roomID, creating the room on first use. welcome, when
// set, runs under the room lock; see room.join.
func (h *roomHub) join(roomID string, session *wsSession, welcome func(*room, roomSnapshot)) (*room, roomSnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[roomID]
	if !ok {
		r = newRoom(roomID)
		h.rooms[roomID] = r
	}
	return r, r.join(session, welcome)
}

// leave removes session from r and forgets r once nobody is left in it.
func (h *roomHub) leave(r *room, session *wsSession) []*wsPeer {
	h.mu.Lock()
	defer h.mu.Unlock()

	others, empty := r.leave(session)
	if empty && h.rooms[r.id] == r {
		delete(h.rooms, r.id)
	}
	return others
}

func (h *roomHub) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}

type room struct {
	mu sync.Mutex
	id string
	// members is kept in arrival order.
	members  []*wsSession
	messages map[string]string
}

func newRoom(id string) *room {
	return &room{id: id, messages: make(map[string]string)}
}

// roomSnapshot is what a joining participant needs to build its roster.
type roomSnapshot struct {
	users    []roster.Seed
	messages map[string]string
	others   []*wsPeer
}

// join registers session and returns what it needs to build its roster.
// welcome runs before the lock is released, so no edit applied after the
// snapshot can reach session ahead of whatever welcome writes.
func (r *room) join(session *wsSession, welcome func(*room, roomSnapshot)) roomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := roomSnapshot{
		users:    make([]roster.Seed, 0, len(r.members)),
		messages: make(map[string]string, len(r.members)),
		others:   make([]*wsPeer, 0, len(r.members)),
	}
	for _, member := range r.members {
		if member == session {
			continue
		}
		snapshot.users = append(snapshot.users, member.seed())
		snapshot.messages[member.id] = r.messages[member.id]
		snapshot.others = append(snapshot.others, member.peer)
	}
	if !r.has(session) {
		r.members = append(r.members, session)
		r.messages[session.id] = ""
	}
	if welcome != nil {
		welcome(r, snapshot)
	}
	return snapshot
}

func (r *room) leave(session *wsSession) ([]*wsPeer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, member := range r.members {
		if member == session {
			r.members = append(r.members[:i], r.members[i+1:]...)
			break
		}
	}
	delete(r.messages, session.id)
	return r.othersLocked(session), len(r.members) == 0
}

// applyEdit updates the sender's draft and returns the peers to notify.
func (r *room) applyEdit(session *wsSession, op draft.Op) ([]*wsPeer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.has(session) {
		return nil, errNotInRoom
	}
	next := draft.Apply(r.messages[session.id], op)
	if draft.Len16(next) > maxDraftUnits {
		return nil, errDraftTooLong
	}
	r.messages[session.id] = next
	return r.othersLocked(session), nil
}

func (r *room) message(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messages[id]
}

func (r *room) has(session *wsSession) bool {
	for _, member := range r.members {
		if member == session {
			return true
		}
	}
	return false
}

func (r *room) othersLocked(session *wsSession) []*wsPeer {
	others := make([]*wsPeer, 0, len(r.members))
	for _, member := range r.members {
		if member != session {
			others = append(others, member.peer)
		}
	}
	return others
}
