package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/louisbranch/livedraft/internal/draft"
	"github.com/louisbranch/livedraft/internal/platform/telemetry/metrics"
	"github.com/louisbranch/livedraft/internal/protocol"
	"github.com/louisbranch/livedraft/internal/roster"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/livedraft/internal/services/livedraft/app"

// OutboundMode selects how the local participant's text is published.
type OutboundMode string

const (
	// OutboundFullReplace sends the whole text on every change.
	OutboundFullReplace OutboundMode = "full-replace"
	// OutboundDiff sends the add/delete edits between the last sent text and
	// the new one.
	OutboundDiff OutboundMode = "diff"
)

// ParseOutboundMode validates a configured mode. Blank selects full-replace.
func ParseOutboundMode(value string) (OutboundMode, error) {
	switch mode := OutboundMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "", OutboundFullReplace:
		return OutboundFullReplace, nil
	case OutboundDiff:
		return OutboundDiff, nil
	default:
		return "", fmt.Errorf("unknown outbound mode %q", value)
	}
}

// Emitter delivers commands to the room.
type Emitter interface {
	Send(ctx context.Context, cmd protocol.Command) error
}

// SessionOptions configures a Session.
type SessionOptions struct {
	Mode     OutboundMode
	Greeting string
	// OnChange is called on the dispatcher goroutine after each roster change.
	OnChange func(*roster.Store)
}

// Session applies room events to a roster and publishes local edits.
type Session struct {
	store    *roster.Store
	emitter  Emitter
	mode     OutboundMode
	greeting string
	onChange func(*roster.Store)
	tracer   trace.Tracer

	mu       sync.Mutex
	lastSent string
	// synced is false until the room has seen a full copy of lastSent.
	synced bool
}

// NewSession returns a session that owns store. A nil emitter makes Compose
// fail with ErrNotConnected.
func NewSession(store *roster.Store, emitter Emitter, opts SessionOptions) *Session {
	if store == nil {
		store = roster.New()
	}
	if opts.Mode == "" {
		opts.Mode = OutboundFullReplace
	}
	return &Session{
		store:    store,
		emitter:  emitter,
		mode:     opts.Mode,
		greeting: opts.Greeting,
		onChange: opts.OnChange,
		tracer:   otel.Tracer(tracerName),
	}
}

// Store returns the roster the session writes to.
func (s *Session) Store() *roster.Store {
	return s.store
}

// Run handles events one at a time until the channel closes or ctx ends.
func (s *Session) Run(ctx context.Context, events <-chan protocol.Event) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			s.Handle(ctx, event)
		}
	}
}

// Handle applies a single event. It must not be called concurrently with
// itself or with Run.
func (s *Session) Handle(ctx context.Context, event protocol.Event) {
	if event == nil {
		return
	}
	ctx, span := s.tracer.Start(ctx, "session.handle", trace.WithAttributes(
		attribute.String("livedraft.event", event.Kind()),
	))
	defer span.End()
	metrics.EventsTotal.WithLabelValues(event.Kind()).Inc()

	switch e := event.(type) {
	case protocol.RoomJoined:
		s.store.Initialize(e.Users, e.CurrentMessages)
		s.resetOutbound()
		log.Printf("session: joined room=%q participants=%d", e.RoomID, s.store.Len())
		s.changed()
		if s.greeting != "" {
			if err := s.Compose(ctx, s.greeting); err != nil {
				span.RecordError(err)
				log.Printf("session: send greeting: %v", err)
			}
		}

	case protocol.UserJoined:
		s.store.UpsertOnJoin(e.User)
		s.changed()

	case protocol.UserLeft:
		s.store.Remove(e.ID)
		s.changed()

	case protocol.ChatUpdate:
		span.SetAttributes(attribute.String("livedraft.op", opLabel(e.Op)))
		participant, ok := s.store.Get(e.UserID)
		if !ok {
			metrics.EditsDroppedTotal.Inc()
			span.SetAttributes(attribute.Bool("livedraft.dropped", true))
			return
		}
		s.store.SetDraftText(e.UserID, draft.Apply(participant.DraftText, e.Op))
		metrics.EditsAppliedTotal.WithLabelValues(opLabel(e.Op)).Inc()
		s.changed()

	case protocol.ServerError:
		span.SetStatus(codes.Error, e.Code)
		log.Printf("session: room error code=%q message=%q", e.Code, e.Message)

	default:
		log.Printf("session: ignoring event kind=%q", event.Kind())
	}
}

// Compose publishes text as the local participant's current draft.
func (s *Session) Compose(ctx context.Context, text string) error {
	if s.emitter == nil {
		return ErrNotConnected
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var ops []draft.Op
	if s.mode == OutboundDiff && s.synced {
		ops = draft.Diff(s.lastSent, text)
		if len(ops) == 0 {
			return nil
		}
	} else {
		ops = []draft.Op{draft.FullReplace{Text: text}}
	}

	for _, op := range ops {
		if err := s.emitter.Send(ctx, protocol.Compose{Op: op}); err != nil {
			// The room may now hold any prefix of ops; resync with a full copy.
			s.synced = false
			return fmt.Errorf("send %s: %w", op.Type(), err)
		}
	}
	s.lastSent = text
	s.synced = true
	return nil
}

func (s *Session) resetOutbound() {
	s.mu.Lock()
	s.lastSent = ""
	s.synced = false
	s.mu.Unlock()
}

func (s *Session) changed() {
	metrics.RosterParticipants.Set(float64(s.store.Len()))
	if s.onChange != nil {
		s.onChange(s.store)
	}
}

func opLabel(op draft.Op) string {
	switch op.(type) {
	case draft.FullReplace, draft.Insert, draft.Delete, draft.Replace:
		return op.Type()
	default:
		return "unknown"
	}
}
