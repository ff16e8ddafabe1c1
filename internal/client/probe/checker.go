package probe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/acadcart/internal/client/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ErrNotReady means the backend answered but did not report itself healthy.
var ErrNotReady = errors.New("backend not ready")

type Checker interface {
	Check(ctx context.Context) error
}

type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

type healthClient interface {
	Health(ctx context.Context) (*models.HealthResponse, error)
}

// HTTPChecker probes the liveness endpoint through the shared API client.
// Only a body with status "ok" counts as healthy.
type HTTPChecker struct {
	client healthClient
}

func NewHTTPChecker(c healthClient) *HTTPChecker {
	return &HTTPChecker{client: c}
}

func (h *HTTPChecker) Check(ctx context.Context) error {
	resp, err := h.client.Health(ctx)
	if err != nil {
		return err
	}
	if !strings.EqualFold(resp.Status, "ok") {
		return fmt.Errorf("%w: status %q", ErrNotReady, resp.Status)
	}
	return nil
}

// GRPCChecker probes the standard gRPC health service.
type GRPCChecker struct {
	conn    *grpc.ClientConn
	client  healthpb.HealthClient
	service string
}

// NewGRPCChecker prepares a checker for addr. No connection is made until
// the first Check.
func NewGRPCChecker(addr, service string) (*GRPCChecker, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc health client: %w", err)
	}
	return &GRPCChecker{conn: conn, client: healthpb.NewHealthClient(conn), service: service}, nil
}

func (g *GRPCChecker) Check(ctx context.Context) error {
	resp, err := g.client.Check(ctx, &healthpb.HealthCheckRequest{Service: g.service})
	if err != nil {
		return fmt.Errorf("grpc health check: %w", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: %s", ErrNotReady, resp.GetStatus())
	}
	return nil
}

func (g *GRPCChecker) Close() error {
	return g.conn.Close()
}
