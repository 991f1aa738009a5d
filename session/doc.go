// Package session provides session persistence for issued access tokens and
// the compact binary session encoding.
//
// # Stores
//
//   - [MemoryStore]: in-process map, the default for the terminal simulator.
//   - [RedisStore]: Redis-backed, replacement of an account's live session
//     is one Lua script so two logins never leave two live sessions.
//
// # Architecture boundaries
//
// This package owns the [Store] contract and the [Session] model. It does NOT
// sign or parse tokens, look up accounts or enforce lockout. Those
// responsibilities belong to the Engine.
//
// # What this package must NOT do
//
//   - Import goTeller, token, or account (no upward imports).
//   - Store secrets or answers in [Session] fields.
package session
