// Package roomd parses room server flags and composes the relay entrypoint.
package roomd

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/louisbranch/livedraft/internal/platform/cmd"
	server "github.com/louisbranch/livedraft/internal/services/room/app"
)

// Config holds room server command configuration.
type Config struct {
	HTTPAddr string `env:"ROOMD_HTTP_ADDR" envDefault:":8090"`
	// ShutdownTimeout bounds both HTTP shutdown and the final span flush.
	ShutdownTimeout time.Duration `env:"ROOMD_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "room server HTTP listen address")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "grace period for open connections and telemetry on exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the room server and serves websocket rooms.
func Run(ctx context.Context, cfg Config) error {
	options := entrypoint.RunOptions{ShutdownTimeout: cfg.ShutdownTimeout}
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceRoomd, options, func(ctx context.Context) error {
		if err := server.Run(ctx, serverConfig(cfg)); err != nil {
			return fmt.Errorf("serve roomd: %w", err)
		}
		return nil
	})
}

func serverConfig(cfg Config) server.Config {
	return server.Config{
		HTTPAddr:        cfg.HTTPAddr,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}
}
