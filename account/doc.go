// Package account defines the customer and account records shared by the
// registry, the storage backends, and the engine.
//
// # Architecture boundaries
//
// This package owns plain data and structural validation only. Lockout,
// session, and recovery decisions belong to the engine.
//
// # What this package must NOT do
//
//   - Import goTeller, registry, or any storage backend.
//   - Perform I/O.
package account
