// Package jsonfile is a goTeller.Storage backed by a single JSON snapshot
// file, suited to the single-terminal deployment.
//
// Records are held in memory and the whole snapshot is rewritten on every
// save. Writes go to a temporary file in the same directory, are fsynced,
// then renamed over the target.
package jsonfile
