package probe

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/dmitrijs2005/acadcart/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type fakeHealth struct {
	statuses []string
	err      error
	calls    int
}

func (f *fakeHealth) Health(context.Context) (*models.HealthResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	s := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return &models.HealthResponse{Status: s}, nil
}

func TestHTTPChecker(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		require.NoError(t, NewHTTPChecker(&fakeHealth{statuses: []string{"ok"}}).Check(context.Background()))
	})

	t.Run("OK in capitals", func(t *testing.T) {
		require.NoError(t, NewHTTPChecker(&fakeHealth{statuses: []string{"OK"}}).Check(context.Background()))
	})

	t.Run("other status", func(t *testing.T) {
		err := NewHTTPChecker(&fakeHealth{statuses: []string{"starting"}}).Check(context.Background())
		require.ErrorIs(t, err, ErrNotReady)
		assert.Contains(t, err.Error(), `"starting"`)
	})

	t.Run("transport error", func(t *testing.T) {
		boom := errors.New("boom")
		require.ErrorIs(t, NewHTTPChecker(&fakeHealth{err: boom}).Check(context.Background()), boom)
	})
}

func startHealthServer(t *testing.T) (*health.Server, string) {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	hs := health.NewServer()
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	return hs, lis.Addr().String()
}

func TestGRPCChecker_Serving(t *testing.T) {
	_, addr := startHealthServer(t)

	c, err := NewGRPCChecker(addr, "")
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Check(context.Background()))
}

func TestGRPCChecker_NotServing(t *testing.T) {
	hs, addr := startHealthServer(t)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	c, err := NewGRPCChecker(addr, "")
	require.NoError(t, err)
	defer c.Close()

	require.ErrorIs(t, c.Check(context.Background()), ErrNotReady)
}

func TestGRPCChecker_UnknownService(t *testing.T) {
	_, addr := startHealthServer(t)

	c, err := NewGRPCChecker(addr, "acadcart.missing")
	require.NoError(t, err)
	defer c.Close()

	require.ErrorContains(t, c.Check(context.Background()), "grpc health check")
}
