// Package timeouts defines shared timeout constants used by the participant
// and the room server.
package timeouts

import "time"

// Dial caps the websocket handshake with the room server.
const Dial = 5 * time.Second

// Write caps a single outbound frame write.
const Write = 2 * time.Second

// ReconnectMin is the first delay before re-dialing a dropped room connection.
const ReconnectMin = 200 * time.Millisecond

// ReconnectMax caps the exponential re-dial delay.
const ReconnectMax = 5 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP or gRPC server waits for in-flight
// requests during graceful shutdown.
const Shutdown = 5 * time.Second
