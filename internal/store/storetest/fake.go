// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storetest provides an in-memory fake implementing store.Session,
// used by ingest/query/udt unit tests so they exercise real grouping,
// batching, and scatter-gather logic without a live Cassandra cluster.
package storetest

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/sudaredd/data-platform-core/internal/store"
)

// Row is one stored record, keyed by column name, as it would come back
// from a MapScan.
type Row map[string]any

// FailRule forces Exec, batch execution and SELECT iteration to fail for
// statements whose table name (without keyspace) matches Table, simulating
// a store-side failure of every partition of that table.
type FailRule struct {
	Table string
	Err   error
}

// Fake is a minimal in-memory store. Rows are appended on INSERT (no
// upsert-by-primary-key semantics; duplicates are kept, matching append-only
// ingest test fixtures) and scanned back on SELECT with a predicate that
// understands equality and period_date range bind markers, matching the
// shape QueryEngine generates (spec §4.6.1).
type Fake struct {
	mu        sync.Mutex
	rows      map[string][]Row // table -> rows
	userTypes map[string]map[string]*store.UDTMetadata
	failRules []FailRule
	execCount int
}

// New builds an empty Fake store.
func New() *Fake {
	return &Fake{
		rows:      make(map[string][]Row),
		userTypes: make(map[string]map[string]*store.UDTMetadata),
	}
}

// RegisterUDT declares a UDT's field order for a keyspace, so
// KeyspaceMetadata lookups resolve.
func (f *Fake) RegisterUDT(keyspace, name string, fieldNames []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.userTypes[keyspace] == nil {
		f.userTypes[keyspace] = make(map[string]*store.UDTMetadata)
	}
	f.userTypes[keyspace][name] = &store.UDTMetadata{Name: name, FieldNames: fieldNames}
}

// FailTable forces every Exec, batch and SELECT touching table (a bare
// table name, without keyspace) to fail with err, until ClearFailRules is
// called.
func (f *Fake) FailTable(table string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failRules = append(f.failRules, FailRule{Table: table, Err: err})
}

func (f *Fake) ClearFailRules() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failRules = nil
}

// Rows returns a snapshot of every row stored for table.
func (f *Fake) Rows(table string) []Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Row, len(f.rows[table]))
	copy(out, f.rows[table])
	return out
}

// ExecCount returns how many successful Exec calls and logged batches have
// run (a batch counts once, however many statements it holds), for
// assertions such as "exactly N logged batches submitted".
func (f *Fake) ExecCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.execCount
}

func (f *Fake) Query(stmt string, values ...any) store.Query {
	return &fakeQuery{fake: f, stmt: parseStatement(stmt, values)}
}

func (f *Fake) NewLoggedBatch() store.Batch {
	return &fakeBatch{fake: f}
}

func (f *Fake) ExecuteBatch(ctx context.Context, b store.Batch) error {
	fb, ok := b.(*fakeBatch)
	if !ok {
		return fmt.Errorf("storetest: foreign batch")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range fb.stmts {
		if err := f.failErrLocked(s.table); err != nil {
			return err
		}
	}
	f.execCount++
	for _, s := range fb.stmts {
		f.rows[s.table] = append(f.rows[s.table], s.toRow())
	}
	return nil
}

func (f *Fake) failErrLocked(table string) error {
	for _, r := range f.failRules {
		if r.Table == table {
			return r.Err
		}
	}
	return nil
}

func (f *Fake) KeyspaceMetadata(_ context.Context, keyspace string) (*store.KeyspaceMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	types, ok := f.userTypes[keyspace]
	if !ok {
		return &store.KeyspaceMetadata{Keyspace: keyspace, UserTypes: map[string]*store.UDTMetadata{}}, nil
	}
	return &store.KeyspaceMetadata{Keyspace: keyspace, UserTypes: types}, nil
}

func (f *Fake) Close() {}

// parsedStatement recovers the structure of the two CQL shapes
// statement.Cache generates (spec §4.4/§4.6.1): an INSERT with a
// column list and positional '?' markers, or a SELECT * with an equality/
// range WHERE clause, also positional. The fake never sees real CQL from
// an arbitrary source, so this restricted grammar is sufficient.
type parsedStatement struct {
	isInsert bool
	table    string
	columns  []string // INSERT: bound columns; SELECT: equality column names
	values   []any    // INSERT: bound values; SELECT: equality bound values
	hasRange bool
	rangeCol string
	rangeLo  any
	rangeHi  any
}

func (s parsedStatement) toRow() Row {
	row := make(Row, len(s.columns))
	for i, c := range s.columns {
		row[c] = s.values[i]
	}
	return row
}

var (
	insertRe = regexp.MustCompile(`(?i)^INSERT INTO (\S+)\.(\S+) \(([^)]+)\) VALUES`)
	selectRe = regexp.MustCompile(`(?i)^SELECT \* FROM (\S+)\.(\S+)(?: WHERE (.+))?$`)
)

func parseStatement(stmt string, values []any) parsedStatement {
	stmt = strings.TrimSpace(stmt)
	if m := insertRe.FindStringSubmatch(stmt); m != nil {
		cols := strings.Split(m[3], ",")
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}
		return parsedStatement{isInsert: true, table: m[2], columns: cols, values: values}
	}

	if m := selectRe.FindStringSubmatch(stmt); m != nil {
		ps := parsedStatement{table: m[2]}
		if m[3] == "" {
			return ps
		}
		clauses := strings.Split(m[3], " AND ")
		vi := 0
		for _, clause := range clauses {
			clause = strings.TrimSpace(clause)
			switch {
			case strings.Contains(clause, ">="):
				col := strings.TrimSpace(strings.SplitN(clause, ">=", 2)[0])
				ps.hasRange = true
				ps.rangeCol = col
				ps.rangeLo = values[vi]
				vi++
			case strings.Contains(clause, "<="):
				ps.rangeHi = values[vi]
				vi++
			case strings.Contains(clause, "="):
				col := strings.TrimSpace(strings.SplitN(clause, "=", 2)[0])
				ps.columns = append(ps.columns, col)
				ps.values = append(ps.values, values[vi])
				vi++
			}
		}
		return ps
	}

	return parsedStatement{table: "__unparsed__"}
}

type fakeQuery struct {
	fake *Fake
	stmt parsedStatement
}

func (q *fakeQuery) Exec(ctx context.Context) error {
	if !q.stmt.isInsert {
		return nil
	}
	return q.fake.execInsertDirect(q.stmt)
}

func (q *fakeQuery) Iter(ctx context.Context) store.Iter {
	q.fake.mu.Lock()
	defer q.fake.mu.Unlock()

	if err := q.fake.failErrLocked(q.stmt.table); err != nil {
		return &fakeIter{err: err}
	}

	var matched []Row
	for _, row := range q.fake.rows[q.stmt.table] {
		if rowMatches(row, q.stmt) {
			matched = append(matched, row)
		}
	}
	return &fakeIter{rows: matched}
}

func (f *Fake) execInsertDirect(s parsedStatement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failErrLocked(s.table); err != nil {
		return err
	}
	f.execCount++
	f.rows[s.table] = append(f.rows[s.table], s.toRow())
	return nil
}

func rowMatches(row Row, s parsedStatement) bool {
	for i, col := range s.columns {
		if fmt.Sprintf("%v", row[col]) != fmt.Sprintf("%v", s.values[i]) {
			return false
		}
	}
	if s.hasRange {
		lo := fmt.Sprintf("%v", s.rangeLo)
		hi := fmt.Sprintf("%v", s.rangeHi)
		v := fmt.Sprintf("%v", row[s.rangeCol])
		if v < lo || v > hi {
			return false
		}
	}
	return true
}

type fakeIter struct {
	rows []Row
	pos  int
	err  error
}

func (it *fakeIter) MapScan(m map[string]any) bool {
	if it.err != nil || it.pos >= len(it.rows) {
		return false
	}
	for k, v := range it.rows[it.pos] {
		m[k] = v
	}
	it.pos++
	return true
}

func (it *fakeIter) Columns() []string {
	if len(it.rows) == 0 {
		return nil
	}
	cols := make([]string, 0, len(it.rows[0]))
	for k := range it.rows[0] {
		cols = append(cols, k)
	}
	return cols
}

func (it *fakeIter) Close() error { return it.err }

type fakeBatch struct {
	fake  *Fake
	stmts []parsedStatement
}

func (b *fakeBatch) Query(stmt string, values ...any) {
	if stmt == "" {
		return
	}
	b.stmts = append(b.stmts, parseStatement(stmt, values))
}

func (b *fakeBatch) Size() int { return len(b.stmts) }
