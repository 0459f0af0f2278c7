// Package telemetry groups operational observability for livedraft and roomd.
//
// Tracing is configured by internal/platform/otel and is opt-in. Metrics live
// in telemetry/metrics and are always collected; they are only exposed when
// the status HTTP server is enabled.
package telemetry
