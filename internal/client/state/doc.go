// Package state holds the client's state as independent slices:
// connectivity, session, auth form and user list.
//
// Each slice is a plain value type with its own transition functions and
// is guarded by its own lock inside Store. Components only touch the
// slices they own, so a change to the form can never disturb the session
// and vice versa.
//
// Store also publishes authentication flips to watchers. Every flip bumps
// an epoch counter; asynchronous work started for one epoch can check
// whether it is still current before writing its result.
package state
