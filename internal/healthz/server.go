// Package healthz is the standalone liveness responder of the acadcart
// backend. It answers GET /healthz with {"status":"ok"} for as long as
// the process is up and optionally serves the standard gRPC health
// service. It holds no state.
package healthz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/acadcart/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	Addr     string
	GRPCAddr string
}

type Server struct {
	config   Config
	logger   logging.Logger
	registry *prometheus.Registry
	requests *prometheus.CounterVec

	// ready is closed once the listeners are bound; tests read the
	// resolved addresses after it.
	ready    chan struct{}
	mu       sync.Mutex
	httpAddr net.Addr
	grpcAddr net.Addr
}

func NewServer(c Config, l logging.Logger) *Server {
	reg := prometheus.NewRegistry()
	return &Server{
		config:   c,
		logger:   l.With("module", "healthz"),
		registry: reg,
		requests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "acadcart_healthz",
			Name:      "requests_total",
			Help:      "Liveness requests served, by status code",
		}, []string{"code"}),
		ready: make(chan struct{}),
	}
}

// Handler routes /healthz and /metrics.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	s.requests.WithLabelValues(strconv.Itoa(http.StatusOK)).Inc()
}

// Run serves until ctx is cancelled, then shuts both listeners down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.Addr, err)
	}

	var grpcLis net.Listener
	if s.config.GRPCAddr != "" {
		grpcLis, err = net.Listen("tcp", s.config.GRPCAddr)
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("listen %s: %w", s.config.GRPCAddr, err)
		}
	}

	s.mu.Lock()
	s.httpAddr = httpLis.Addr()
	if grpcLis != nil {
		s.grpcAddr = grpcLis.Addr()
	}
	s.mu.Unlock()
	close(s.ready)

	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errs := make(chan error, 2)

	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", httpLis.Addr().String())
		if err := srv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	var gsrv *grpc.Server
	if grpcLis != nil {
		gsrv = grpc.NewServer()
		hs := health.NewServer()
		hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		healthpb.RegisterHealthServer(gsrv, hs)

		go func() {
			s.logger.Info(ctx, "Starting gRPC server", "address", grpcLis.Addr().String())
			if err := gsrv.Serve(grpcLis); err != nil {
				errs <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errs:
	}

	s.logger.Info(ctx, "Stopping servers...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	if gsrv != nil {
		gsrv.GracefulStop()
	}
	return runErr
}

// Addrs returns the bound addresses once Run has started listening.
func (s *Server) Addrs(ctx context.Context) (httpAddr, grpcAddr net.Addr, err error) {
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case <-s.ready:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.httpAddr, s.grpcAddr, nil
}
