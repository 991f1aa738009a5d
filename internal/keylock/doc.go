// Package keylock provides per-key mutual exclusion for account mutations.
package keylock
