// Package storage persists remindd's durable state: armed job specs and
// the last-applied reminder configurations.
//
// Two drivers are provided: a dependency-free file backend (JSON
// snapshot + append-only journal) and a SQLite backend.
package storage
