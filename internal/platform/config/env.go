// Package config loads process configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces every variable read by ParseEnv. Struct tags name the
// variable without it, so `env:"ROOM_ID"` reads LIVEDRAFT_ROOM_ID.
const EnvPrefix = "LIVEDRAFT_"

// ParseEnv loads configuration from prefixed environment variables.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
