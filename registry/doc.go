// Package registry provides the in-memory account and customer registry
// owned by a single engine instance.
//
// The registry is a lookup container. It is passed to the engine at build
// time and never reached through package-level state.
package registry
