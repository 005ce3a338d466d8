// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package statement generates and caches the CQL text IngestEngine and
// QueryEngine bind values against (spec §4.4). Every tenant/table shares
// the same small set of statement shapes (INSERT with a column list,
// SELECT * with an equality/range WHERE clause), so the cache's job is to
// avoid rebuilding and re-sorting the column list on every request, and to
// collapse concurrent first-use builds for the same shape into one
// builder call via singleflight (spec §4.4: "concurrent cache misses for
// the same key are coalesced into a single prepare").
package statement

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/sudaredd/data-platform-core/internal/metrics"
)

// Operation distinguishes the two CQL shapes the engine ever issues.
type Operation string

const (
	OpInsert Operation = "insert"
	OpSelect Operation = "select"
)

// Cache is a bounded, single-flighted cache from (keyspace, table, sorted
// column tuple, operation) to generated CQL text.
type Cache struct {
	lru    *lruCache
	flight singleflight.Group
}

// NewCache builds a Cache holding at most capacity statement shapes
// (capacity <= 0 defaults to 1024, per spec §4.4 "bounded, e.g. 1024
// entries").
func NewCache(capacity int) *Cache {
	return &Cache{
		lru: newLRUCache(capacity, func(string) {
			metrics.StatementCacheEvictions.Inc()
		}),
	}
}

// key renders the cache key for one statement shape: keyspace, table, the
// operation, and the columns involved sorted for stability, since ingest
// enrichment may present a record's fields in any order (spec §4.4's "sorted
// column tuple").
func key(keyspace, table string, op Operation, columns []string) string {
	sorted := append([]string(nil), columns...)
	sort.Strings(sorted)
	return fmt.Sprintf("%s.%s/%s/%s", keyspace, table, op, strings.Join(sorted, ","))
}

// InsertStatement returns the cached (or newly built) INSERT CQL text for
// keyspace.table binding columns positionally. On a miss the statement
// lists columns in the order given; because the cache key sorts columns, a
// later call with the same columns in another order gets that first-built
// statement back unchanged. IngestEngine always passes columns sorted.
func (c *Cache) InsertStatement(keyspace, table string, columns []string) string {
	k := key(keyspace, table, OpInsert, columns)
	if cql, ok := c.lru.get(k); ok {
		metrics.StatementCacheHits.Inc()
		return cql
	}

	v, _, _ := c.flight.Do(k, func() (any, error) {
		if cql, ok := c.lru.get(k); ok {
			return cql, nil
		}
		cql := buildInsert(keyspace, table, columns)
		c.lru.add(k, cql)
		return cql, nil
	})
	metrics.StatementCacheMisses.Inc()
	return v.(string)
}

// SelectStatement returns the cached (or newly built) SELECT CQL text for
// keyspace.table filtering on equalityColumns (in order) plus, when
// rangeColumn is non-empty, a >= / <= range predicate on rangeColumn (the
// shape QueryEngine's scatter-gather path uses to bound one bucket, spec
// §4.6.1).
func (c *Cache) SelectStatement(keyspace, table string, equalityColumns []string, rangeColumn string) string {
	allColumns := append(append([]string(nil), equalityColumns...), rangeColumn)
	k := key(keyspace, table, OpSelect, allColumns)
	if cql, ok := c.lru.get(k); ok {
		metrics.StatementCacheHits.Inc()
		return cql
	}

	v, _, _ := c.flight.Do(k, func() (any, error) {
		if cql, ok := c.lru.get(k); ok {
			return cql, nil
		}
		cql := buildSelect(keyspace, table, equalityColumns, rangeColumn)
		c.lru.add(k, cql)
		return cql, nil
	})
	metrics.StatementCacheMisses.Inc()
	return v.(string)
}

// Len reports the number of statement shapes currently cached, for tests
// and admin diagnostics.
func (c *Cache) Len() int { return c.lru.len() }

func buildInsert(keyspace, table string, columns []string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s.%s (%s) VALUES (%s)",
		keyspace, table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
}

func buildSelect(keyspace, table string, equalityColumns []string, rangeColumn string) string {
	var clauses []string
	for _, col := range equalityColumns {
		clauses = append(clauses, col+" = ?")
	}
	if rangeColumn != "" {
		clauses = append(clauses, rangeColumn+" >= ?", rangeColumn+" <= ?")
	}
	if len(clauses) == 0 {
		return fmt.Sprintf("SELECT * FROM %s.%s", keyspace, table)
	}
	return fmt.Sprintf("SELECT * FROM %s.%s WHERE %s", keyspace, table, strings.Join(clauses, " AND "))
}
