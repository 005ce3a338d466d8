// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package udt

import (
	"context"
	"sync"
	"time"

	"github.com/sudaredd/data-platform-core/internal/metrics"
	"github.com/sudaredd/data-platform-core/internal/store"
)

// metadataCache memoises KeyspaceMetadata lookups so the hot path of
// record<->udt conversion does not round-trip to the store's schema tables
// on every request (spec §4 component list item (e): "prepared-statement
// and metadata caching that makes (b)-(d) fast"). Entries expire after ttl
// so a schema change (new UDT field) is eventually observed without a
// process restart.
type metadataCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	md        *store.KeyspaceMetadata
	expiresAt time.Time
}

func newMetadataCache(ttl time.Duration) *metadataCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &metadataCache{entries: make(map[string]cacheEntry), ttl: ttl}
}

func (c *metadataCache) get(ctx context.Context, session store.Session, keyspace string) (*store.KeyspaceMetadata, error) {
	c.mu.RLock()
	entry, ok := c.entries[keyspace]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		metrics.UDTMetadataLookups.WithLabelValues(keyspace, "cache_hit").Inc()
		return entry.md, nil
	}

	md, err := session.KeyspaceMetadata(ctx, keyspace)
	if err != nil {
		metrics.UDTMetadataLookups.WithLabelValues(keyspace, "error").Inc()
		return nil, err
	}
	metrics.UDTMetadataLookups.WithLabelValues(keyspace, "cache_miss").Inc()

	c.mu.Lock()
	c.entries[keyspace] = cacheEntry{md: md, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return md, nil
}
