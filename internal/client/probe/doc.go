// Package probe decides, once per client boot, whether the backend is
// reachable.
//
// A Prober asks a Checker up to RetryPolicy.MaxAttempts times, waiting a
// fixed RetryPolicy.Backoff between attempts, and resolves the boot's
// connectivity to Ready on the first success or to Unavailable after the
// last failure. Attempts are strictly sequential. Waiting goes through a
// Clock so tests never sleep.
package probe
