// Package lockout implements the progressive lockout policy applied to
// login attempts.
//
// # Model
//
// The failure counter and the lock status live on the account record, so
// every mutation goes through the persist callback supplied by the engine.
// The policy computes the next record; it never mutates the caller's copy.
//
// # What this package must NOT do
//
//   - Import goTeller or the session packages.
//   - Compare secrets or decide what error a caller sees.
package lockout
