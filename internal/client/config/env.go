package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

const (
	EnvBackendURL     = "ACADCART_BACKEND_URL"
	EnvGRPCHealthAddr = "ACADCART_GRPC_HEALTH_ADDR"

	// EnvLegacyBackendURL is read when EnvBackendURL is unset.
	EnvLegacyBackendURL = "NODE_APP_BACKEND_URL"
)

// parseEnv loads dotenv (when it exists) into the process environment and
// overlays the supported variables. Variables already set in the
// environment win over the file.
func parseEnv(cfg *Config, dotenv string) error {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", dotenv, err)
		}
	}

	for _, name := range []string{EnvBackendURL, EnvLegacyBackendURL} {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			cfg.BackendURL = v
			break
		}
	}
	if v, ok := os.LookupEnv(EnvGRPCHealthAddr); ok && v != "" {
		cfg.GRPCHealthAddr = v
	}
	return nil
}
