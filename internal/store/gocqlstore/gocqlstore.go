// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gocqlstore adapts github.com/apache/cassandra-gocql-driver/v2 to
// the store.Session interface. This is the only package that imports
// gocql directly; everything above it (ingest, query, udt) depends on the
// store interfaces so it can be unit tested against store/storetest's fake
// without a live cluster.
package gocqlstore

import (
	"context"
	"fmt"

	gocql "github.com/apache/cassandra-gocql-driver/v2"

	"github.com/sudaredd/data-platform-core/internal/store"
)

// Config describes how to connect to the wide-column store (spec §6
// "Configuration": connection endpoint, local datacenter, default keyspace).
type Config struct {
	Hosts             []string
	LocalDatacenter   string
	Keyspace          string
	Consistency       gocql.Consistency
	ConnectTimeoutSec int
}

// Open dials the cluster and returns a ready Session.
func Open(cfg Config) (store.Session, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = cfg.Keyspace
	if cfg.LocalDatacenter != "" {
		cluster.PoolConfig.HostSelectionPolicy = gocql.DCAwareRoundRobinPolicy(cfg.LocalDatacenter)
	}
	if cfg.Consistency != 0 {
		cluster.Consistency = cfg.Consistency
	} else {
		cluster.Consistency = gocql.Quorum
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("gocqlstore: create session: %w", err)
	}
	return &sessionAdapter{session: session}, nil
}

type sessionAdapter struct {
	session *gocql.Session
}

func (s *sessionAdapter) Query(stmt string, values ...any) store.Query {
	return &queryAdapter{query: s.session.Query(stmt, values...)}
}

func (s *sessionAdapter) NewLoggedBatch() store.Batch {
	return &batchAdapter{batch: s.session.NewBatch(gocql.LoggedBatch)}
}

func (s *sessionAdapter) ExecuteBatch(ctx context.Context, b store.Batch) error {
	ba, ok := b.(*batchAdapter)
	if !ok {
		return fmt.Errorf("gocqlstore: batch not created by this session")
	}
	if err := s.session.ExecuteBatch(ba.batch.WithContext(ctx)); err != nil {
		return fmt.Errorf("%w: %v", store.ErrStoreError, err)
	}
	return nil
}

func (s *sessionAdapter) KeyspaceMetadata(_ context.Context, keyspace string) (*store.KeyspaceMetadata, error) {
	md, err := s.session.KeyspaceMetadata(keyspace)
	if err != nil {
		return nil, fmt.Errorf("gocqlstore: keyspace metadata %q: %w", keyspace, err)
	}
	out := &store.KeyspaceMetadata{Keyspace: keyspace, UserTypes: make(map[string]*store.UDTMetadata, len(md.UserTypes))}
	for name, udt := range md.UserTypes {
		out.UserTypes[name] = &store.UDTMetadata{Name: udt.Name, FieldNames: append([]string(nil), udt.FieldNames...)}
	}
	return out, nil
}

func (s *sessionAdapter) Close() { s.session.Close() }

type queryAdapter struct {
	query *gocql.Query
}

func (q *queryAdapter) Exec(ctx context.Context) error {
	if err := q.query.WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrStoreError, err)
	}
	return nil
}

func (q *queryAdapter) Iter(ctx context.Context) store.Iter {
	return &iterAdapter{iter: q.query.WithContext(ctx).Iter()}
}

type batchAdapter struct {
	batch *gocql.Batch
}

func (b *batchAdapter) Query(stmt string, values ...any) {
	b.batch.Query(stmt, values...)
}

func (b *batchAdapter) Size() int { return b.batch.Size() }

type iterAdapter struct {
	iter    *gocql.Iter
	columns []string
}

func (it *iterAdapter) MapScan(m map[string]any) bool {
	return it.iter.MapScan(m)
}

func (it *iterAdapter) Columns() []string {
	if it.columns == nil {
		cols := it.iter.Columns()
		it.columns = make([]string, len(cols))
		for i, c := range cols {
			it.columns[i] = c.Name
		}
	}
	return it.columns
}

func (it *iterAdapter) Close() error { return it.iter.Close() }
