// Package flows contains the orchestration logic behind each public Engine
// operation.
//
// Every flow receives its collaborators as a Deps struct of plain function
// fields and host-level sentinel errors, so the package never imports the
// root goTeller package and every flow can be driven in isolation from
// tests.
//
// Flows that mutate an account take the per-account lock first, read the
// current record under that lock, and commit through the persist callback.
// Nothing is written to memory before storage accepted the change.
package flows
