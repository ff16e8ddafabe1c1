package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/acadcart/internal/client/apiclient"
	"github.com/dmitrijs2005/acadcart/internal/client/authflow"
	"github.com/dmitrijs2005/acadcart/internal/client/config"
	"github.com/dmitrijs2005/acadcart/internal/client/metrics"
	"github.com/dmitrijs2005/acadcart/internal/client/pipeline"
	"github.com/dmitrijs2005/acadcart/internal/client/probe"
	"github.com/dmitrijs2005/acadcart/internal/client/session"
	"github.com/dmitrijs2005/acadcart/internal/client/sessionstore"
	"github.com/dmitrijs2005/acadcart/internal/client/state"
	"github.com/dmitrijs2005/acadcart/internal/client/users"
	"github.com/dmitrijs2005/acadcart/internal/logging"
	"github.com/go-chi/chi/v5"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	metrics *metrics.Metrics
	storage *sessionstore.Store

	httpClient *http.Client
	clock      probe.Clock
	reader     *bufio.Reader
	out        io.Writer

	mu  sync.RWMutex
	cur *boot

	reloadMu sync.Mutex
	reloads  chan struct{}
}

type Option func(*App)

func WithInput(r io.Reader) Option {
	return func(a *App) { a.reader = bufio.NewReader(r) }
}

func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

func WithClock(c probe.Clock) Option {
	return func(a *App) { a.clock = c }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(a *App) { a.httpClient = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(a *App) { a.logger = l }
}

// NewApp opens the session database and prepares the App. No network
// activity happens until Run.
func NewApp(ctx context.Context, c *config.Config, opts ...Option) (*App, error) {
	a := &App{
		config:  c,
		logger:  logging.Discard(),
		metrics: metrics.New(),
		clock:   probe.RealClock{},
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		reloads: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(a)
	}

	storage, err := sessionstore.Open(ctx, c.DatabasePath)
	if err != nil {
		a.logger.Error(ctx, "error initializing database", "path", c.DatabasePath, "err", err)
		return nil, err
	}
	a.storage = storage
	return a, nil
}

// Run starts the first boot and serves the REPL until the user exits or
// ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.storage.Close()

	if a.config.MetricsAddr != "" {
		stop := a.serveMetrics(ctx)
		defer stop()
	}

	b, err := a.startBoot(ctx)
	if err != nil {
		return err
	}
	a.setBoot(b)
	defer a.shutdown(cancel)

	go a.watchReloads(ctx)

	printlnFn("acadcart client (type 'help' for commands)")
	runREPL(ctx, a, a.statusLine, a.reader)
	return nil
}

// shutdown stops the current boot. Once ctx is cancelled no reload can
// start another one.
func (a *App) shutdown(cancel context.CancelFunc) {
	cancel()
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()
	if b := a.current(); b != nil {
		b.stop()
	}
}

func (a *App) current() *boot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cur
}

func (a *App) setBoot(b *boot) {
	a.mu.Lock()
	a.cur = b
	a.mu.Unlock()
}

// requestReload asks watchReloads for a new boot. Requests that arrive
// while one is pending collapse into it.
func (a *App) requestReload() {
	select {
	case a.reloads <- struct{}{}:
	default:
	}
}

func (a *App) watchReloads(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.reloads:
			if err := a.reload(ctx); err != nil {
				a.logger.Error(ctx, "reload failed", "err", err)
			}
		}
	}
}

// reload discards the current boot with all its state and starts over.
func (a *App) reload(ctx context.Context) error {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if old := a.current(); old != nil {
		old.stop()
	}

	b, err := a.startBoot(ctx)
	if err != nil {
		return err
	}
	a.setBoot(b)
	a.logger.Info(ctx, "reloaded")
	return nil
}

func (a *App) serveMetrics(ctx context.Context) func() {
	r := chi.NewRouter()
	r.Handle("/metrics", a.metrics.Handler())

	srv := &http.Server{Addr: a.config.MetricsAddr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(ctx, "metrics server", "addr", srv.Addr, "err", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

// boot is one client lifetime between reloads.
type boot struct {
	ctx    context.Context
	cancel context.CancelFunc

	store   *state.Store
	api     *apiclient.Client
	manager *session.Manager
	flow    *authflow.Flow
	fetcher *users.Fetcher

	wg sync.WaitGroup

	// pending tracks submissions started from the prompt; guarded by mu so
	// none is added once stop has begun
	mu      sync.Mutex
	stopped bool
	pending sync.WaitGroup
}

func (a *App) startBoot(parent context.Context) (*boot, error) {
	var apiOpts []apiclient.Option
	if a.httpClient != nil {
		apiOpts = append(apiOpts, apiclient.WithHTTPClient(a.httpClient))
	}
	api, err := apiclient.New(a.config.BackendURL, a.config.RequestTimeout, apiOpts...)
	if err != nil {
		return nil, err
	}

	checker, closeChecker, err := a.newChecker(api)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(parent)
	b := &boot{ctx: ctx, cancel: cancel, store: state.NewStore(), api: api}

	b.manager = session.NewManager(api, a.storage, b.store,
		session.WithLogger(a.logger), session.WithMetrics(a.metrics))
	api.Use(
		pipeline.RequestID(),
		pipeline.BearerToken(b.manager),
		pipeline.SessionExpiry(b.manager, apiclient.PathLogin),
		pipeline.Metrics(a.metrics),
	)
	b.flow = authflow.New(b.store, b.manager, a.logger)
	b.fetcher = users.New(api, b.store, a.logger)
	b.fetcher.Attach(ctx)

	prober := probe.New(checker,
		probe.RetryPolicy{MaxAttempts: a.config.ProbeAttempts, Backoff: a.config.ProbeBackoff},
		probe.WithClock(a.clock), probe.WithLogger(a.logger), probe.WithMetrics(a.metrics))

	b.wg.Add(3)
	go func() {
		defer b.wg.Done()
		defer closeChecker()
		if err := prober.Run(ctx, b.store); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error(ctx, "probe", "err", err)
		}
	}()
	go func() {
		defer b.wg.Done()
		if _, err := b.manager.Restore(ctx); err != nil {
			a.logger.Warn(ctx, "restore session", "err", err)
		}
	}()
	go func() {
		defer b.wg.Done()
		select {
		case <-ctx.Done():
		case <-b.store.Resolved():
			a.announce(b)
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
		case <-b.manager.Reloads():
			printlnFn("Session expired. Reloading...")
			a.requestReload()
		}
	}()

	return b, nil
}

func (a *App) newChecker(api *apiclient.Client) (probe.Checker, func(), error) {
	if a.config.ProbeTransport == config.TransportGRPC {
		c, err := probe.NewGRPCChecker(a.config.GRPCHealthAddr, "")
		if err != nil {
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil
	}
	return probe.NewHTTPChecker(api), func() {}, nil
}

// spawn runs fn in the background unless the boot is stopping.
func (b *boot) spawn(fn func(ctx context.Context)) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return false
	}
	b.pending.Add(1)
	go func() {
		defer b.pending.Done()
		fn(b.ctx)
	}()
	return true
}

// stop cancels the boot and waits for its background work.
func (b *boot) stop() {
	b.mu.Lock()
	b.stopped = true
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()
	b.pending.Wait()
	b.fetcher.Wait()
}

// announce prints the outcome of the connectivity probe.
func (a *App) announce(b *boot) {
	conn := b.store.Connectivity()
	if conn.Phase == state.Ready {
		printlnFn(fmt.Sprintf("Connected to %s", b.api.BaseURL()))
		return
	}
	printlnFn(unavailablePanel(conn.Reason, b.api.BaseURL()))
}
