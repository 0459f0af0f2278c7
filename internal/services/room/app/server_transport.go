package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/louisbranch/livedraft/internal/platform/telemetry/metrics"
	"github.com/louisbranch/livedraft/internal/protocol"
	"golang.org/x/net/websocket"
)

// NewHandler creates the room server routes.
func NewHandler() http.Handler {
	return newHandler(newRoomHub(), uuid.NewString)
}

func newHandler(hub *roomHub, newID func() string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", metrics.Handler())

	wsHandler := websocket.Handler(func(conn *websocket.Conn) {
		handleWSConn(conn, hub, newID())
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		wsHandler.ServeHTTP(w, r)
	})

	return mux
}

func handleWSConn(conn *websocket.Conn, hub *roomHub, participantID string) {
	metrics.RoomConnections.Inc()
	defer func() {
		metrics.RoomConnections.Dec()
		_ = conn.Close()
	}()

	decoder := json.NewDecoder(conn)
	session := newWSSession(participantID, newWSPeer(conn))
	defer func() {
		if r := session.setRoom(nil); r != nil {
			leaveRoom(hub, r, session)
		}
	}()

	windowStart := time.Now()
	framesInWindow := 0
	decodeErrors := 0

	for {
		var frame protocol.Frame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			_ = writeWSError(session.peer, "", codeInvalidArgument, "invalid frame payload")
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			// The decoder cannot resync after a syntax error.
			decoder = json.NewDecoder(conn)
			continue
		}
		decodeErrors = 0

		if len(frame.Payload) > maxFramePayloadBytes {
			_ = writeWSError(session.peer, frame.RequestID, codeInvalidArgument, "payload too large")
			continue
		}

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > maxFramesPerSecond {
			_ = writeWSError(session.peer, frame.RequestID, codeResourceExhausted, "rate limit exceeded")
			return
		}

		metrics.RoomFramesTotal.WithLabelValues(frameLabel(frame.Type)).Inc()
		cmd, err := protocol.DecodeCommand(frame)
		if err != nil {
			_ = writeWSError(session.peer, frame.RequestID, codeInvalidArgument, err.Error())
			continue
		}

		switch cmd := cmd.(type) {
		case protocol.JoinLobby:
			session.setProfile(cmd.Username, cmd.Location)
		case protocol.JoinRoom:
			handleJoinRoom(hub, session, frame.RequestID, cmd)
		case protocol.Compose:
			handleCompose(session, frame.RequestID, cmd)
		}
	}
}

func handleJoinRoom(hub *roomHub, session *wsSession, requestID string, cmd protocol.JoinRoom) {
	if previous := session.currentRoom(); previous != nil {
		if previous.id == cmd.RoomID {
			_ = writeWSError(session.peer, requestID, codeFailedPrecondition, "already in room")
			return
		}
		session.setRoom(nil)
		leaveRoom(hub, previous, session)
	}

	r, snapshot := hub.join(cmd.RoomID, session, func(r *room, snapshot roomSnapshot) {
		joined, err := protocol.EncodeEvent(protocol.RoomJoined{
			RoomID:          r.id,
			Users:           snapshot.users,
			CurrentMessages: snapshot.messages,
		})
		if err != nil {
			log.Printf("room: encode room joined: %v", err)
			return
		}
		joined.RequestID = requestID
		_ = session.peer.writeFrame(joined)
	})
	session.setRoom(r)
	log.Printf("room: participant=%q joined room=%q others=%d", session.id, r.id, len(snapshot.others))

	announce, err := protocol.EncodeEvent(protocol.UserJoined{User: session.seed()})
	if err != nil {
		log.Printf("room: encode user joined: %v", err)
		return
	}
	broadcast(snapshot.others, announce)
}

func handleCompose(session *wsSession, requestID string, cmd protocol.Compose) {
	r := session.currentRoom()
	if r == nil {
		_ = writeWSError(session.peer, requestID, codeForbidden, "must join a room before sending")
		return
	}

	// Encode first so an unsupported diff never reaches the room's copy.
	update, err := protocol.EncodeEvent(protocol.ChatUpdate{UserID: session.id, Op: cmd.Op})
	if err != nil {
		_ = writeWSError(session.peer, requestID, codeInvalidArgument, "unsupported diff type "+cmd.Op.Type())
		return
	}
	others, err := r.applyEdit(session, cmd.Op)
	if err != nil {
		if errors.Is(err, errDraftTooLong) {
			_ = writeWSError(session.peer, requestID, codeInvalidArgument, err.Error())
			return
		}
		_ = writeWSError(session.peer, requestID, codeForbidden, err.Error())
		return
	}
	broadcast(others, update)
}

func leaveRoom(hub *roomHub, r *room, session *wsSession) {
	others := hub.leave(r, session)
	log.Printf("room: participant=%q left room=%q", session.id, r.id)
	left, err := protocol.EncodeEvent(protocol.UserLeft{ID: session.id})
	if err != nil {
		log.Printf("room: encode user left: %v", err)
		return
	}
	broadcast(others, left)
}

func broadcast(peers []*wsPeer, frame protocol.Frame) {
	for _, peer := range peers {
		if err := peer.writeFrame(frame); err != nil {
			log.Printf("room: write %s frame: %v", frame.Type, err)
		}
	}
}

func writeWSError(peer *wsPeer, requestID string, code string, message string) error {
	frame, err := protocol.EncodeEvent(protocol.ServerError{Code: code, Message: message})
	if err != nil {
		return err
	}
	frame.RequestID = requestID
	return peer.writeFrame(frame)
}

func frameLabel(frameType string) string {
	switch frameType {
	case protocol.TypeJoinLobby, protocol.TypeJoinRoom, protocol.TypeChatUpdate:
		return frameType
	default:
		return "unsupported"
	}
}
