package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/acadcart/internal/client/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	PathHealth   = "/healthz"
	PathLogin    = "/api/login"
	PathRegister = "/api/register"
	PathUsers    = "/api/users"
)

const (
	tracerName   = "github.com/dmitrijs2005/acadcart/internal/client/apiclient"
	maxBodyBytes = 1 << 20
)

// Interceptor hooks into every exchange. Either phase may be nil.
//
// Request runs before the request is sent and may return a replacement
// request. Response runs after the exchange with the response (nil on
// transport failure) and the error so far; whatever it returns becomes
// the error seen by the next interceptor and finally by the caller.
type Interceptor struct {
	Name     string
	Request  func(req *http.Request) (*http.Request, error)
	Response func(req *http.Request, resp *http.Response, err error) error
}

type Client struct {
	baseURL      *url.URL
	http         *http.Client
	tracer       trace.Tracer
	interceptors []Interceptor
}

type Option func(*Client)

// WithHTTPClient replaces the default *http.Client. Its timeout is kept as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

func WithInterceptors(ics ...Interceptor) Option {
	return func(c *Client) { c.interceptors = append(c.interceptors, ics...) }
}

// New builds a client for baseURL with the given per-request timeout.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Use appends interceptors. It is meant for wiring at startup, before the
// client is shared; it is not safe to call concurrently with Do.
func (c *Client) Use(ics ...Interceptor) {
	c.interceptors = append(c.interceptors, ics...)
}

// Do sends in (JSON encoded, may be nil) to path and decodes a 2xx body
// into out (may be nil).
func (c *Client) Do(ctx context.Context, method, path string, in, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req, err := c.newRequest(ctx, method, path, in)
	if err != nil {
		return err
	}

	for _, ic := range c.interceptors {
		if ic.Request == nil {
			continue
		}
		if req, err = ic.Request(req); err != nil {
			return fmt.Errorf("interceptor %s: %w", ic.Name, err)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrUnavailable, err)
	} else {
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
		err = c.readResponse(method, path, resp, out)
	}

	for _, ic := range c.interceptors {
		if ic.Response != nil {
			err = ic.Response(req, resp, err)
		}
	}
	return err
}

func (c *Client) newRequest(ctx context.Context, method, path string, in any) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) readResponse(method, path string, resp *http.Response, out any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(method, path, resp.StatusCode, body)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// Health calls the liveness endpoint.
func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	var out models.HealthResponse
	if err := c.Do(ctx, http.MethodGet, PathHealth, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a token and the user profile.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	var out models.LoginResponse
	if err := c.Do(ctx, http.MethodPost, PathLogin, creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, creds models.Credentials) error {
	return c.Do(ctx, http.MethodPost, PathRegister, creds, nil)
}

// Users returns the raw user list body; the shape is checked by the caller.
func (c *Client) Users(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.Do(ctx, http.MethodGet, PathUsers, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
