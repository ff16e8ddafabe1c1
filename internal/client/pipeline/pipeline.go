// Package pipeline provides the interceptors installed on the acadcart
// HTTP client: bearer credential, request id, session expiry and metrics.
package pipeline

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/acadcart/internal/client/apiclient"
	"github.com/dmitrijs2005/acadcart/internal/client/metrics"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// TokenSource yields the current bearer credential, "" when there is none.
type TokenSource interface {
	Token() string
}

// ExpirySink receives the session-expired event. There is exactly one sink:
// the session manager, which tears the session down.
type ExpirySink interface {
	SessionExpired(ctx context.Context)
}

// BearerToken attaches "Authorization: Bearer <token>" to every request
// while src holds a credential.
func BearerToken(src TokenSource) apiclient.Interceptor {
	return apiclient.Interceptor{
		Name: "bearer",
		Request: func(req *http.Request) (*http.Request, error) {
			if tok := src.Token(); tok != "" {
				req.Header.Set("Authorization", "Bearer "+tok)
			}
			return req, nil
		},
	}
}

// RequestID tags each request with a fresh uuid unless it already has one.
func RequestID() apiclient.Interceptor {
	return apiclient.Interceptor{
		Name: "request-id",
		Request: func(req *http.Request) (*http.Request, error) {
			if req.Header.Get(RequestIDHeader) == "" {
				req.Header.Set(RequestIDHeader, uuid.NewString())
			}
			return req, nil
		},
	}
}

// SessionExpiry publishes a session-expired event when the service answers
// 401 to anything but loginPath. A rejected login is an ordinary form error.
// The error always reaches the caller unchanged.
func SessionExpiry(sink ExpirySink, loginPath string) apiclient.Interceptor {
	return apiclient.Interceptor{
		Name: "session-expiry",
		Response: func(req *http.Request, resp *http.Response, err error) error {
			var apiErr *apiclient.APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
				return err
			}
			if apiErr.Path == loginPath {
				return err
			}
			sink.SessionExpired(req.Context())
			return err
		},
	}
}

type startKey struct{}

// Metrics counts requests by path and status code and observes latency.
// Transport failures are counted with code "error".
func Metrics(m *metrics.Metrics) apiclient.Interceptor {
	return apiclient.Interceptor{
		Name: "metrics",
		Request: func(req *http.Request) (*http.Request, error) {
			return req.WithContext(context.WithValue(req.Context(), startKey{}, time.Now())), nil
		},
		Response: func(req *http.Request, resp *http.Response, err error) error {
			path := req.URL.Path
			code := "error"
			if resp != nil {
				code = strconv.Itoa(resp.StatusCode)
			}
			m.RequestsTotal.WithLabelValues(path, code).Inc()
			if start, ok := req.Context().Value(startKey{}).(time.Time); ok {
				m.RequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
			}
			return err
		},
	}
}
