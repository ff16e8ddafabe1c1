package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/acadcart/internal/flagx"
)

// parseFlags populates cfg from the flags it owns; other arguments are
// left for their respective parsers.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-b", "-t", "-p", "-g", "-d", "-m"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.BackendURL, "b", cfg.BackendURL, "base URL of the acadcart service")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.ProbeTransport, "p", cfg.ProbeTransport, "liveness probe transport (http|grpc)")
	fs.StringVar(&cfg.GRPCHealthAddr, "g", cfg.GRPCHealthAddr, "host:port of the gRPC health service")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local session database")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "listen address for client metrics")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
