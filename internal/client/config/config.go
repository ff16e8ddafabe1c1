package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultBackendURL = "https://backend.acadcart.com"

	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

// Config holds runtime settings for the acadcart client.
type Config struct {
	BackendURL     string
	RequestTimeout time.Duration

	ProbeAttempts  int
	ProbeBackoff   time.Duration
	ProbeTransport string
	GRPCHealthAddr string

	DatabasePath string
	MetricsAddr  string
}

// LoadDefaults populates c with the built-in defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = DefaultBackendURL
	c.RequestTimeout = 5 * time.Second
	c.ProbeAttempts = 3
	c.ProbeBackoff = 2 * time.Second
	c.ProbeTransport = TransportHTTP
	c.GRPCHealthAddr = ""
	c.DatabasePath = "session.db"
	c.MetricsAddr = ""
}

// LoadConfig builds a Config from defaults, the environment, an optional
// JSON file and the command line, in that order. args excludes the
// program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, ".env"); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return errors.New("backend url is empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.ProbeAttempts < 1 {
		return fmt.Errorf("probe attempts must be at least 1, got %d", c.ProbeAttempts)
	}
	if c.ProbeBackoff < 0 {
		return fmt.Errorf("probe backoff must not be negative, got %s", c.ProbeBackoff)
	}
	switch c.ProbeTransport {
	case TransportHTTP:
	case TransportGRPC:
		if c.GRPCHealthAddr == "" {
			return errors.New("grpc probe transport needs a health address")
		}
	default:
		return fmt.Errorf("unknown probe transport %q", c.ProbeTransport)
	}
	return nil
}
