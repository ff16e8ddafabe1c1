// Package cli provides the interactive acadcart terminal client.
//
// The App owns everything that survives a reload: configuration, the local
// session database, metrics and the terminal. Everything else lives in a
// boot: a fresh state store, HTTP client with its interceptors, session
// manager, auth flow and user fetcher. A boot starts the connectivity probe
// and the session restore side by side. Reloading, either on request
// ("retry") or because the service rejected the session, cancels the
// current boot and starts a new one.
//
// The REPL is gated on connectivity: while the probe runs only help,
// status and exit work; when the backend is unavailable, retry is offered.
package cli
