// Package livedraft parses participant command flags and launches the
// participant runtime.
package livedraft

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	entrypoint "github.com/louisbranch/livedraft/internal/platform/cmd"
	"github.com/louisbranch/livedraft/internal/platform/config"
	platformgrpc "github.com/louisbranch/livedraft/internal/platform/grpc"
	"github.com/louisbranch/livedraft/internal/platform/timeouts"
	"github.com/louisbranch/livedraft/internal/services/livedraft/app"
)

// Config holds participant command configuration.
type Config struct {
	ServerURL    string `env:"SERVER_URL"    envDefault:"ws://localhost:8090/ws"`
	Origin       string `env:"ORIGIN"        envDefault:"http://localhost/"`
	RoomID       string `env:"ROOM_ID"`
	Username     string `env:"USERNAME"      envDefault:"livedraft"`
	Location     string `env:"LOCATION"      envDefault:"Unknown"`
	Greeting     string `env:"GREETING"`
	OutboundMode string `env:"OUTBOUND_MODE" envDefault:"full-replace"`
	HTTPAddr     string `env:"HTTP_ADDR"     envDefault:"127.0.0.1:8091"`
	HealthAddr   string `env:"HEALTH_ADDR"   envDefault:"127.0.0.1:8092"`
	Lang         string `env:"LANG"          envDefault:"en-US"`

	Render      bool
	Stdin       bool
	HealthCheck bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.ServerURL, "server-url", cfg.ServerURL, "Room server websocket URL")
	fs.StringVar(&cfg.Origin, "origin", cfg.Origin, "Origin sent in the websocket handshake")
	fs.StringVar(&cfg.RoomID, "room", cfg.RoomID, "Room to join")
	fs.StringVar(&cfg.Username, "username", cfg.Username, "Display name announced to the room")
	fs.StringVar(&cfg.Location, "location", cfg.Location, "Location announced to the room")
	fs.StringVar(&cfg.Greeting, "greeting", cfg.Greeting, "Draft published after every join")
	fs.StringVar(&cfg.OutboundMode, "outbound", cfg.OutboundMode, "How local edits are sent: full-replace or diff")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "Status HTTP listen address (empty disables)")
	fs.StringVar(&cfg.HealthAddr, "health-addr", cfg.HealthAddr, "gRPC health listen address (empty disables)")
	fs.StringVar(&cfg.Lang, "lang", cfg.Lang, "Console board language")
	fs.BoolVar(&cfg.Render, "render", cfg.Render, "Print the roster after every change")
	fs.BoolVar(&cfg.Stdin, "stdin", cfg.Stdin, "Publish each line read from stdin as the local draft")
	fs.BoolVar(&cfg.HealthCheck, "healthcheck", cfg.HealthCheck, "Probe the health address of a running participant and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if !cfg.HealthCheck && strings.TrimSpace(cfg.RoomID) == "" {
		return Config{}, fmt.Errorf("room is required (set -room or %sROOM_ID)", config.EnvPrefix)
	}
	return cfg, nil
}

// Run starts the participant, or probes a running one with -healthcheck.
func Run(ctx context.Context, cfg Config) error {
	if cfg.HealthCheck {
		if err := platformgrpc.Probe(ctx, cfg.HealthAddr, app.HealthService, timeouts.Dial); err != nil {
			return fmt.Errorf("healthcheck %s: %w", cfg.HealthAddr, err)
		}
		return nil
	}
	appConfig, err := runtimeConfig(cfg, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceLiveDraft, func(ctx context.Context) error {
		return app.Run(ctx, appConfig)
	})
}

func runtimeConfig(cfg Config, stdin io.Reader, stdout io.Writer) (app.Config, error) {
	mode, err := app.ParseOutboundMode(cfg.OutboundMode)
	if err != nil {
		return app.Config{}, err
	}
	appConfig := app.Config{
		ServerURL:    cfg.ServerURL,
		Origin:       cfg.Origin,
		RoomID:       cfg.RoomID,
		Username:     cfg.Username,
		Location:     cfg.Location,
		Greeting:     cfg.Greeting,
		OutboundMode: mode,
		HTTPAddr:     cfg.HTTPAddr,
		HealthAddr:   cfg.HealthAddr,
		Lang:         cfg.Lang,
		Render:       cfg.Render,
	}
	if cfg.Render {
		appConfig.Output = stdout
	}
	if cfg.Stdin {
		appConfig.Input = stdin
	}
	return appConfig, nil
}
