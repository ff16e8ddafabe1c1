// Package sessionstore persists the signed-in session between runs.
//
// The credential and the user profile live in the SQLite "metadata"
// key/value table under the keys "token" and "user". Both are written and
// removed in one transaction, and Load reports ErrNoSession unless both
// are present, so a half-written session is never restored.
package sessionstore
