package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/acadcart/internal/flagx"
	"github.com/dmitrijs2005/acadcart/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields tell
// "absent" apart from a zero value, so a partial file only overrides what
// it names.
type JsonConfig struct {
	BackendURL     *string         `json:"backend_url"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	ProbeAttempts  *int            `json:"probe_attempts"`
	ProbeBackoff   *timex.Duration `json:"probe_backoff"`
	ProbeTransport *string         `json:"probe_transport"`
	GRPCHealthAddr *string         `json:"grpc_health_addr"`
	DatabasePath   *string         `json:"database_path"`
	MetricsAddr    *string         `json:"metrics_addr"`
}

// parseJson overlays cfg with the file named by -c/-config, if any.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.BackendURL, jc.BackendURL)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	if jc.ProbeAttempts != nil {
		cfg.ProbeAttempts = *jc.ProbeAttempts
	}
	setDuration(&cfg.ProbeBackoff, jc.ProbeBackoff)
	setString(&cfg.ProbeTransport, jc.ProbeTransport)
	setString(&cfg.GRPCHealthAddr, jc.GRPCHealthAddr)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.MetricsAddr, jc.MetricsAddr)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
