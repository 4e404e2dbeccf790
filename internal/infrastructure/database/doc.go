// Package database provides the SQLite connection wrapper and the embedded
// schema migration runner for ClassKit.
//
// The connection is configured for a single writer (SQLite's model) with WAL
// mode for concurrent readers, which also makes each statement-level record
// mutation atomic with respect to other mutations.
package database
