// Package internal contains helper utilities that are intentionally private to goTeller,
// including secure session id generation.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - console: line-oriented presentation collaborator used by cmd/goteller
//   - flows: pure-function flow orchestrators for every Engine operation
//   - keylock: per-account mutual exclusion
//   - lockout: failed-attempt counter and lock transitions
//
// # What this package must NOT do
//
//   - Export types that appear in the public goTeller API.
//   - Be imported by any package outside the goTeller module.
package internal
