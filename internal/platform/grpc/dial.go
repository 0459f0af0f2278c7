package grpc

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ProbeStage describes where a probe failed.
type ProbeStage string

const (
	// ProbeStageConnect indicates the client could not be created.
	ProbeStageConnect ProbeStage = "connect"
	// ProbeStageHealth indicates the service never reported SERVING.
	ProbeStageHealth ProbeStage = "health"
)

// ProbeError wraps probe failures with a stage indicator.
type ProbeError struct {
	Stage ProbeStage
	Err   error
}

// Error implements the error interface.
func (e *ProbeError) Error() string {
	if e == nil {
		return "health probe error"
	}
	return fmt.Sprintf("health %s error: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProbeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DefaultClientDialOptions returns dial options for local probes.
func DefaultClientDialOptions() []gogrpc.DialOption {
	return []gogrpc.DialOption{
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
}

// Probe connects to a health endpoint and waits up to timeout for the
// service to report SERVING.
func Probe(ctx context.Context, addr string, service string, timeout time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	conn, err := gogrpc.NewClient(addr, DefaultClientDialOptions()...)
	if err != nil {
		return &ProbeError{Stage: ProbeStageConnect, Err: err}
	}
	defer conn.Close()

	if err := WaitForHealth(ctx, conn, service, nil); err != nil {
		return &ProbeError{Stage: ProbeStageHealth, Err: err}
	}
	return nil
}
