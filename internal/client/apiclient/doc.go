// Package apiclient is the HTTP client core of acadcart.
//
// A single Client carries the base endpoint, the request timeout and the
// JSON defaults. Every call goes through Client.Do so that the registered
// interceptors see every exchange: request interceptors may decorate the
// outgoing request, response interceptors observe the outcome and may
// replace the error. The client never retries; callers decide that.
//
// Failures come back as *APIError for non-2xx answers and as errors
// wrapping ErrUnavailable for transport problems. Use errors.Is with
// ErrUnauthorized / ErrUnavailable and ServiceMessage to get the text the
// service supplied, if any.
package apiclient
