// Package store holds the record shapes shared by the durable backends in
// store/jsonfile and store/sqlite.
//
// Both backends satisfy goTeller.Storage: Load returns every record, and
// SaveAccount and SaveCustomer return only after the write is durable.
package store
