package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/acadcart/internal/client/apiclient"
	"github.com/dmitrijs2005/acadcart/internal/client/metrics"
	"github.com/dmitrijs2005/acadcart/internal/client/models"
	"github.com/dmitrijs2005/acadcart/internal/client/sessionstore"
	"github.com/dmitrijs2005/acadcart/internal/client/state"
	"github.com/dmitrijs2005/acadcart/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// API is the part of the service used by the Manager.
type API interface {
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error)
	Register(ctx context.Context, creds models.Credentials) error
}

// Storage persists the credential and the profile as one pair.
type Storage interface {
	Save(ctx context.Context, sess models.Session) error
	Load(ctx context.Context) (models.Session, error)
	Clear(ctx context.Context) error
}

type Manager struct {
	api     API
	storage Storage
	store   *state.Store
	logger  logging.Logger
	metrics *metrics.Metrics

	reloads chan struct{}
}

type Option func(*Manager)

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

func NewManager(api API, storage Storage, store *state.Store, opts ...Option) *Manager {
	m := &Manager{
		api:     api,
		storage: storage,
		store:   store,
		logger:  logging.Discard(),
		reloads: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("module", "session")
	return m
}

// Restore authenticates from storage when a complete pair is stored. It
// reports whether a session was restored.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	sess, err := m.storage.Load(ctx)
	if errors.Is(err, sessionstore.ErrNoSession) {
		m.logger.Debug(ctx, "no stored session")
		return false, nil
	}
	if err != nil {
		m.logger.Warn(ctx, "stored session unreadable", "err", err)
		return false, fmt.Errorf("restore session: %w", err)
	}

	m.store.SetSession(sess)
	m.logger.Info(ctx, "session restored", "user", sess.User.Username)
	return true, nil
}

// Login exchanges the credentials for a session, persists it and marks
// the boot authenticated. Failures are returned as *FailureError.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	resp, err := m.api.Login(ctx, models.Credentials{Username: username, Password: password})
	if err != nil {
		return m.failure(ctx, "login", LoginFailedMessage, err)
	}

	sess := models.Session{Token: resp.Token, User: resp.User}
	if !sess.Valid() {
		return m.failure(ctx, "login", LoginFailedMessage, errors.New("incomplete login response"))
	}

	if err := m.storage.Save(ctx, sess); err != nil {
		return m.failure(ctx, "login", LoginFailedMessage, fmt.Errorf("persist session: %w", err))
	}
	m.store.SetSession(sess)

	m.logger.Info(ctx, "logged in", "user", sess.User.Username)
	return nil
}

// Register creates an account. It never authenticates.
func (m *Manager) Register(ctx context.Context, username, password string) error {
	if err := m.api.Register(ctx, models.Credentials{Username: username, Password: password}); err != nil {
		return m.failure(ctx, "register", RegisterFailedMessage, err)
	}
	m.logger.Info(ctx, "registered", "user", username)
	return nil
}

// Logout drops the session locally. No request is made. The in-memory
// slices are reset even when clearing storage fails.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.storage.Clear(ctx)
	if err != nil {
		m.logger.Error(ctx, "clear stored session", "err", err)
	}

	m.store.ClearSession()
	m.store.ClearUsers()
	m.store.UpdateForm(state.AuthForm.Reset)

	m.logger.Info(ctx, "logged out")
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// SessionExpired tears the session down after the service rejected the
// credential and requests a reload. Repeated events before the reload is
// picked up collapse into one request.
func (m *Manager) SessionExpired(ctx context.Context) {
	// the request that failed may be cancelled right after this returns
	ctx = context.WithoutCancel(ctx)

	if err := m.storage.Clear(ctx); err != nil {
		m.logger.Error(ctx, "clear stored session", "err", err)
	}
	m.store.ClearSession()
	m.store.ClearUsers()

	if m.metrics != nil {
		m.metrics.SessionExpired.Inc()
	}
	m.logger.Warn(ctx, "session expired, reloading")

	select {
	case m.reloads <- struct{}{}:
	default:
	}
}

// Reloads delivers reload requests raised by SessionExpired.
func (m *Manager) Reloads() <-chan struct{} {
	return m.reloads
}

// Token returns the current bearer credential, "" when signed out.
func (m *Manager) Token() string {
	return m.store.Session().Token
}

// Claims reads the expiry of the current credential without verifying it.
// ok is false when signed out, or when the credential is not a JWT or has
// no expiry.
func (m *Manager) Claims() (expires time.Time, ok bool) {
	tok := m.Token()
	if tok == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (m *Manager) failure(ctx context.Context, op, fallback string, err error) error {
	msg := apiclient.ServiceMessage(err)
	if msg == "" {
		msg = fallback
	}
	m.logger.Warn(ctx, op+" failed", "status", apiclient.StatusCode(err), "err", err)
	return &FailureError{Op: op, Message: msg, Err: err}
}
