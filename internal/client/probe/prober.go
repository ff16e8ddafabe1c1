package probe

import (
	"context"

	"github.com/dmitrijs2005/acadcart/internal/client/apiclient"
	"github.com/dmitrijs2005/acadcart/internal/client/metrics"
	"github.com/dmitrijs2005/acadcart/internal/logging"
)

// UnavailableMessage is shown when the service gave no reason of its own.
const UnavailableMessage = "Backend service unavailable"

// Target receives the single resolution of a probe run.
type Target interface {
	MarkReady() error
	MarkUnavailable(reason string) error
}

type Prober struct {
	checker Checker
	policy  RetryPolicy
	clock   Clock
	logger  logging.Logger
	metrics *metrics.Metrics
}

type Option func(*Prober)

func WithClock(c Clock) Option {
	return func(p *Prober) { p.clock = c }
}

func WithLogger(l logging.Logger) Option {
	return func(p *Prober) { p.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Prober) { p.metrics = m }
}

func New(checker Checker, policy RetryPolicy, opts ...Option) *Prober {
	p := &Prober{
		checker: checker,
		policy:  policy,
		clock:   RealClock{},
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("module", "probe")
	return p
}

// Run probes until the backend answers or the attempts are used up, then
// resolves target. It returns early with ctx.Err() when ctx is cancelled,
// leaving target unresolved.
func (p *Prober) Run(ctx context.Context, target Target) error {
	var lastErr error

	for attempt := 0; attempt < p.policy.attempts(); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-p.clock.After(p.policy.Backoff):
			}
		}

		err := p.checker.Check(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err == nil {
			p.record("success")
			p.logger.Info(ctx, "backend ready", "attempt", attempt+1)
			return target.MarkReady()
		}

		p.record("failure")
		p.logger.Warn(ctx, "backend check failed", "attempt", attempt+1, "err", err)
		lastErr = err
	}

	reason := apiclient.ServiceMessage(lastErr)
	if reason == "" {
		reason = UnavailableMessage
	}
	p.logger.Error(ctx, "backend unavailable", "attempts", p.policy.attempts(), "reason", reason)
	return target.MarkUnavailable(reason)
}

func (p *Prober) record(result string) {
	if p.metrics != nil {
		p.metrics.ProbeAttempts.WithLabelValues(result).Inc()
	}
}
