// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package partitionkey implements PartitionKey, a value-equal composite key
// used only as an in-memory grouping key for the ingest batching pipeline
// (spec §3). It is never persisted.
package partitionkey

import (
	"fmt"
	"strings"

	"github.com/sudaredd/data-platform-core/internal/record"
)

// PartitionKey is an ordered sequence of scalar Values corresponding
// positionally to a TenantConfig's PartitionKeys.
type PartitionKey struct {
	values []record.Value
	key    string // memoized ScalarKey join, computed once at construction
}

// From projects the named columns out of rec, in order, building the
// PartitionKey a batched insert groups on. Returns an error naming the
// first missing column — per spec §8's invariant, a record with an
// incomplete partition-key tuple must never reach the store.
func From(columns []string, rec record.Record) (PartitionKey, error) {
	values := make([]record.Value, len(columns))
	for i, col := range columns {
		v, ok := rec[col]
		if !ok || v.IsNull() {
			return PartitionKey{}, fmt.Errorf("partition key column %q missing or null", col)
		}
		values[i] = v
	}
	return PartitionKey{values: values, key: joinKeys(values)}, nil
}

func joinKeys(values []record.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.ScalarKey()
	}
	return strings.Join(parts, "\x1f")
}

// Values returns the ordered scalar values making up the key.
func (p PartitionKey) Values() []record.Value { return p.values }

// Equal reports structural equality between two PartitionKeys.
func (p PartitionKey) Equal(o PartitionKey) bool {
	return p.key == o.key
}

// String renders the key for diagnostics (e.g. PartialBatchFailure
// messages enumerating failed partitions). Not guaranteed stable across
// versions; for logging/error text only.
func (p PartitionKey) String() string {
	parts := make([]string, len(p.values))
	for i, v := range p.values {
		parts[i] = v.ScalarKey()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// GroupKey returns the string usable as a Go map key for grouping records
// that share this PartitionKey. Two PartitionKeys with equal GroupKey are
// Equal, and vice versa.
func (p PartitionKey) GroupKey() string { return p.key }
