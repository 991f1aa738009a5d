// Package sqlite is a goTeller.Storage backed by SQLite through the pure Go
// modernc.org/sqlite driver.
//
// Every save is a single-row upsert committed in its own transaction with
// synchronous=FULL, so a nil return means the record is on disk.
package sqlite
