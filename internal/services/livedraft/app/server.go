package app

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	platformgrpc "github.com/louisbranch/livedraft/internal/platform/grpc"
	"github.com/louisbranch/livedraft/internal/platform/telemetry/metrics"
	"github.com/louisbranch/livedraft/internal/platform/timeouts"
	"github.com/louisbranch/livedraft/internal/protocol"
	"github.com/louisbranch/livedraft/internal/roster"
)

// HealthService is the grpc.health.v1 service name reported by the participant.
const HealthService = "livedraft.room"

const eventBuffer = 64

// Config defines the inputs for one participant process.
type Config struct {
	ServerURL    string
	Origin       string
	RoomID       string
	Username     string
	Location     string
	Greeting     string
	OutboundMode OutboundMode
	// HTTPAddr serves /up, /roster and /metrics. Empty disables it.
	HTTPAddr string
	// HealthAddr serves grpc.health.v1. Empty disables it.
	HealthAddr string
	Lang       string
	Render     bool
	// Output receives the board when Render is set.
	Output io.Writer
	// Input, when set, is read line by line and each line is published as
	// the local draft.
	Input io.Reader

	ReconnectMin time.Duration
	ReconnectMax time.Duration
}

// Run joins the room and keeps the roster current until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if cfg.Render && cfg.Output == nil {
		return errors.New("render output is required")
	}

	var health *platformgrpc.HealthServer
	if addr := strings.TrimSpace(cfg.HealthAddr); addr != "" {
		var err error
		health, err = platformgrpc.ListenHealth(addr, HealthService)
		if err != nil {
			return fmt.Errorf("listen health: %w", err)
		}
		defer health.Close()
	}

	client, err := NewClient(ClientConfig{
		ServerURL:    cfg.ServerURL,
		Origin:       cfg.Origin,
		RoomID:       cfg.RoomID,
		Username:     cfg.Username,
		Location:     cfg.Location,
		ReconnectMin: cfg.ReconnectMin,
		ReconnectMax: cfg.ReconnectMax,
		Health:       health,
	})
	if err != nil {
		return fmt.Errorf("init client: %w", err)
	}

	opts := SessionOptions{Mode: cfg.OutboundMode, Greeting: cfg.Greeting}
	if cfg.Render {
		opts.OnChange = NewBoard(cfg.Output, cfg.Lang, cfg.RoomID).Render
	}
	session := NewSession(roster.New(), client, opts)

	var status *http.Server
	var statusListener net.Listener
	if addr := strings.TrimSpace(cfg.HTTPAddr); addr != "" {
		statusListener, err = net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen status on %s: %w", addr, err)
		}
		status = &http.Server{
			Handler:           NewStatusHandler(session.Store()),
			ReadHeaderTimeout: timeouts.ReadHeader,
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 4)
	var wg sync.WaitGroup
	start := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				errs <- fmt.Errorf("%s: %w", name, err)
				cancel()
			}
		}()
	}

	events := make(chan protocol.Event, eventBuffer)
	start("client", func(ctx context.Context) error { return client.Run(ctx, events) })
	start("session", func(ctx context.Context) error { return session.Run(ctx, events) })
	if health != nil {
		start("health", health.Serve)
	}
	if status != nil {
		start("status", func(ctx context.Context) error {
			return serveStatus(ctx, status, statusListener)
		})
	}
	if cfg.Input != nil {
		// Not waited on: a blocked terminal read cannot be interrupted.
		go composeLines(runCtx, session, cfg.Input)
	}

	wg.Wait()
	close(errs)
	return <-errs
}

// NewStatusHandler serves the participant's status endpoints.
func NewStatusHandler(store *roster.Store) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/roster", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(store.List()); err != nil {
			log.Printf("status: encode roster: %v", err)
		}
	})
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

func serveStatus(ctx context.Context, server *http.Server, listener net.Listener) error {
	serveErr := make(chan error, 1)
	log.Printf("status server listening on %s", listener.Addr())
	go func() {
		serveErr <- server.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := server.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown status server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve status: %w", err)
	}
}

func composeLines(ctx context.Context, session *Session, input io.Reader) {
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if err := session.Compose(ctx, scanner.Text()); err != nil {
			log.Printf("compose: %v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("compose: read input: %v", err)
	}
}
