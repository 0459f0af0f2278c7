package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EventsTotal counts inbound events handled by the session dispatcher.
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livedraft_events_total",
		Help: "Inbound room events handled, by kind",
	}, []string{"kind"})

	// EditsAppliedTotal counts edit operations applied to a draft.
	EditsAppliedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livedraft_edits_applied_total",
		Help: "Edit operations applied to participant drafts, by operation",
	}, []string{"op"})

	// EditsDroppedTotal counts edit operations for participants no longer in the roster.
	EditsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "livedraft_edits_dropped_total",
		Help: "Edit operations dropped because the author is not in the roster",
	})

	// FramesRejectedTotal counts inbound frames the protocol codec refused.
	FramesRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livedraft_frames_rejected_total",
		Help: "Inbound frames rejected at the protocol boundary, by code",
	}, []string{"code"})

	// ReconnectsTotal counts re-dials after a dropped room connection.
	ReconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "livedraft_reconnects_total",
		Help: "Room connection re-dials",
	})

	// RosterParticipants tracks the current roster size.
	RosterParticipants = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "livedraft_roster_participants",
		Help: "Participants currently in the roster",
	})

	// RoomConnections tracks open room server websocket connections.
	RoomConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "roomd_connections",
		Help: "Open websocket connections on the room server",
	})

	// RoomFramesTotal counts frames handled by the room server.
	RoomFramesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roomd_frames_total",
		Help: "Frames handled by the room server, by type",
	}, []string{"type"})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
