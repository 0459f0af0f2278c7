// Package grpc exposes the standard grpc.health.v1 service for processes that
// are not otherwise gRPC servers, and probes it from the command line.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServer reports whether the process is currently serving.
type HealthServer struct {
	service    string
	listener   net.Listener
	grpcServer *gogrpc.Server
	health     *health.Server
}

// ListenHealth binds addr and registers a health service that starts in
// NOT_SERVING for both the overall status and the named service.
func ListenHealth(addr string, service string) (*HealthServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	grpcServer := gogrpc.NewServer(gogrpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	s := &HealthServer{
		service:    service,
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
	}
	s.SetServing(false)
	return s, nil
}

// Addr returns the listener address.
func (s *HealthServer) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// SetServing flips the reported status.
func (s *HealthServer) SetServing(serving bool) {
	if s == nil || s.health == nil {
		return
	}
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	if s.service != "" {
		s.health.SetServingStatus(s.service, status)
	}
}

// Serve runs the gRPC server until context cancellation.
func (s *HealthServer) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("health server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("health server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		err := <-serveErr
		if err == nil || errors.Is(err, gogrpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve health: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, gogrpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve health: %w", err)
	}
}

// Close stops the server immediately.
func (s *HealthServer) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
}

// WaitForHealth blocks until the health check reports SERVING or the context ends.
func WaitForHealth(ctx context.Context, conn *gogrpc.ClientConn, service string, logf func(string, ...any)) error {
	if conn == nil {
		return fmt.Errorf("gRPC connection is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	healthClient := grpc_health_v1.NewHealthClient(conn)
	backoff := 100 * time.Millisecond
	for {
		callCtx, cancel := context.WithTimeout(ctx, time.Second)
		response, err := healthClient.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
		cancel()
		if err == nil && response.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING {
			return nil
		}
		if logf != nil {
			if err != nil {
				logf("waiting for health: %v", err)
			} else {
				logf("waiting for health: status %s", response.GetStatus().String())
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for health: %w", ctx.Err())
		case <-time.After(backoff):
		}

		if backoff < time.Second {
			backoff = min(backoff*2, time.Second)
		}
	}
}
