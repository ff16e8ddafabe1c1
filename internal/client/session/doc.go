// Package session owns the signed-in session of one client boot.
//
// The Manager is the only writer of the durable session store. It restores
// the stored credential and profile at boot, runs the login, register and
// logout transitions, and is the single sink of the session-expired event
// raised by the HTTP pipeline: on that event it wipes the stored pair and
// the in-memory session and asks the front end for a reload.
package session
