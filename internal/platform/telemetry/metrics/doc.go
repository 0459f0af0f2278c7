// Package metrics provides operational metrics collection.
//
// Metrics are registered with the default Prometheus registry and exposed by
// Handler in the Prometheus text format.
//
// # Participant metrics
//
//   - Inbound events by kind
//   - Edit operations applied by operation type
//   - Edit operations dropped because the author already left
//   - Frames rejected at the protocol boundary, by error code
//   - Room reconnects and the current roster size
//
// # Room server metrics
//
//   - Open websocket connections
//   - Frames handled by type
package metrics
