package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/livedraft/internal/platform/timeouts"
)

const (
	maxFramePayloadBytes   = 16 * 1024
	maxFramesPerSecond     = 40
	maxDecodeErrorsPerConn = 3

	maxDraftUnits = 8 * 1024
)

// Error codes sent in error frames.
const (
	codeInvalidArgument    = "INVALID_ARGUMENT"
	codeForbidden          = "FORBIDDEN"
	codeFailedPrecondition = "FAILED_PRECONDITION"
	codeResourceExhausted  = "RESOURCE_EXHAUSTED"
)

var (
	errNotInRoom    = errors.New("participant is not in the room")
	errDraftTooLong = errors.New("draft must be at most 8192 units")
)

// Config defines the inputs for the room server.
type Config struct {
	HTTPAddr          string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server hosts the room HTTP/WebSocket process.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
}

// NewServer builds a configured room server.
func NewServer(config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = timeouts.Shutdown
	}

	return &Server{
		httpAddr:        httpAddr,
		shutdownTimeout: config.ShutdownTimeout,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           NewHandler(),
			ReadHeaderTimeout: config.ReadHeaderTimeout,
		},
	}, nil
}

// Run creates and serves a room server until the context ends.
func Run(ctx context.Context, config Config) error {
	server, err := NewServer(config)
	if err != nil {
		return fmt.Errorf("init room server: %w", err)
	}
	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve room: %w", err)
	}
	return nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("room server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	listener, err := net.Listen("tcp", s.httpAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpAddr, err)
	}
	return s.serve(ctx, listener)
}

func (s *Server) serve(ctx context.Context, listener net.Listener) error {
	serveErr := make(chan error, 1)
	log.Printf("room server listening on %s", listener.Addr())
	go func() {
		serveErr <- s.httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
