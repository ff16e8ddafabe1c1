package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/acadcart/internal/buildinfo"
	"github.com/dmitrijs2005/acadcart/internal/healthz"
	"github.com/dmitrijs2005/acadcart/internal/logging"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg healthz.Config

	cmd := &cobra.Command{
		Use:           "healthz",
		Short:         "Liveness responder for the acadcart backend",
		Long:          "Answers GET /healthz with {\"status\":\"ok\"} while the process is up.\nThe PORT environment variable overrides the port of --addr.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.Addr = applyPortEnv(cfg.Addr, os.Getenv("PORT"))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
			defer stop()

			logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)
			return healthz.NewServer(cfg, logger).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", ":8080", "HTTP listen address")
	cmd.Flags().StringVar(&cfg.GRPCAddr, "grpc-addr", "", "gRPC health listen address (disabled when empty)")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	})

	cmd.SetContext(context.Background())
	return cmd
}

// applyPortEnv replaces the port of addr with port when port is set.
func applyPortEnv(addr, port string) string {
	if port == "" {
		return addr
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = ""
	}
	return net.JoinHostPort(host, port)
}
