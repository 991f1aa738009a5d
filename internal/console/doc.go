// Package console is the line-oriented teller front end used by
// cmd/goteller. It owns prompts, menus and operator-facing messages and
// talks to the engine only through its public operations.
package console
