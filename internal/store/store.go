// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store defines the narrow interface the engine depends on for the
// underlying wide-column store (spec §6 "Store contract"): asynchronous
// (context-aware) execution, statements with positional '?' bind markers
// (named markers are not used), logged batches, and keyspace/UDT metadata
// introspection. A gocql-backed
// implementation lives in store/gocqlstore; a fake lives in store/storetest
// for unit tests that exercise IngestEngine/QueryEngine without a live
// Cassandra cluster.
package store

import "context"

// Session is the store handle IngestEngine, QueryEngine, and UdtCodec are
// built against. It is safe for concurrent use by multiple goroutines, per
// spec §5 ("one store session per process, shared freely — the driver is
// thread-safe").
type Session interface {
	// Query returns a bound, executable statement for stmt with the given
	// positional bind values.
	Query(stmt string, values ...any) Query

	// NewLoggedBatch returns an empty logged batch (spec GLOSSARY: "an
	// atomic group of writes to a single partition").
	NewLoggedBatch() Batch

	// ExecuteBatch runs b, returning the first error encountered.
	ExecuteBatch(ctx context.Context, b Batch) error

	// KeyspaceMetadata fetches schema metadata for keyspace, including its
	// declared user-defined types, used by UdtCodec.
	KeyspaceMetadata(ctx context.Context, keyspace string) (*KeyspaceMetadata, error)

	// Close releases the session's underlying connections.
	Close()
}

// Query is a bound CQL statement ready for execution.
type Query interface {
	Exec(ctx context.Context) error
	Iter(ctx context.Context) Iter
}

// Batch accumulates statements for one logged, atomic write.
type Batch interface {
	Query(stmt string, values ...any)
	Size() int
}

// Iter iterates result rows of a SELECT.
type Iter interface {
	// MapScan decodes the next row into m, keyed by column name, returning
	// false when iteration is exhausted.
	MapScan(m map[string]any) bool
	// Columns returns the row's column names in driver order. QueryEngine
	// does not call it; its rows are record.Record maps and carry no
	// column order.
	Columns() []string
	Close() error
}

// KeyspaceMetadata describes a keyspace's declared user-defined types.
type KeyspaceMetadata struct {
	Keyspace  string
	UserTypes map[string]*UDTMetadata // keyed by UDT type name
}

// UDTMetadata describes one user-defined type's declared field order,
// which UdtCodec's udt->record direction must preserve (spec §4.3).
type UDTMetadata struct {
	Name       string
	FieldNames []string
}
