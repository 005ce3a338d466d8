// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package tenant

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sudaredd/data-platform-core/internal/logging"
)

// Key is the Registry lookup key: (tenant_id, periodicity, data_type),
// spec §3 "Registry entry key". All three are short ASCII strings.
type Key struct {
	TenantID    string
	Periodicity Periodicity
	DataType    DataType
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.TenantID, k.Periodicity, k.DataType)
}

// Snapshotter is implemented by an optional persistence backend (e.g. the
// BadgerDB-backed store in internal/tenant/persist) that mirrors registered
// configs so they survive a process restart. Register/Unregister/Clear
// call it best-effort; a Snapshotter failure never blocks the in-memory
// operation, it is only logged (the in-memory map is the source of truth
// for the running process).
type Snapshotter interface {
	Save(key Key, cfg *Config) error
	Delete(key Key) error
	Wipe() error
}

// Registry is the concurrent lookup (tenant,periodicity,dataType) →
// *Config (spec §4.1). The backing store is a sync.Map so concurrent
// readers never block on each other or on writers; writers are
// serialized only with respect to each other.
type Registry struct {
	entries sync.Map // Key -> *Config

	writeMu sync.Mutex // serializes Register/Unregister/Clear only
	snap    Snapshotter
}

// New creates an empty Registry. snap may be nil to disable persistence.
func New(snap Snapshotter) *Registry {
	return &Registry{snap: snap}
}

// Register validates cfg and installs it under key, overwriting any prior
// config silently — hot reconfiguration is intentional (spec §4.1).
// Unlike the source this validates the bucket-column-is-a-partition-key
// invariant up front (spec §9) instead of deferring to first use.
func (r *Registry) Register(key Key, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.writeMu.Lock()
	r.entries.Store(key, cfg)
	r.writeMu.Unlock()

	if r.snap != nil {
		if err := r.snap.Save(key, cfg); err != nil {
			logging.Warn().Str("key", key.String()).Err(err).Msg("tenant config persistence failed, continuing in-memory only")
		}
	}
	return nil
}

// Lookup returns the config registered for key, or ErrConfigNotFound with a
// message listing the known keys for operator diagnosis (spec §4.1).
func (r *Registry) Lookup(key Key) (*Config, error) {
	v, ok := r.entries.Load(key)
	if !ok {
		return nil, r.notFound(key)
	}
	return v.(*Config), nil
}

// Exists reports whether key is registered.
func (r *Registry) Exists(key Key) bool {
	_, ok := r.entries.Load(key)
	return ok
}

// Unregister removes key if present. De-registration is permitted but
// callers MUST synchronize it externally against in-flight requests
// touching that tenant (spec §3 lifecycle note).
func (r *Registry) Unregister(key Key) {
	r.writeMu.Lock()
	r.entries.Delete(key)
	r.writeMu.Unlock()

	if r.snap != nil {
		if err := r.snap.Delete(key); err != nil {
			logging.Warn().Str("key", key.String()).Err(err).Msg("tenant config persistence delete failed")
		}
	}
}

// Clear removes every registered config.
func (r *Registry) Clear() {
	r.writeMu.Lock()
	r.entries.Range(func(k, _ any) bool {
		r.entries.Delete(k)
		return true
	})
	r.writeMu.Unlock()

	if r.snap != nil {
		if err := r.snap.Wipe(); err != nil {
			logging.Warn().Err(err).Msg("tenant config persistence wipe failed")
		}
	}
}

// Keys returns every registered key, sorted for stable diagnostics/listing.
func (r *Registry) Keys() []Key {
	var keys []Key
	r.entries.Range(func(k, _ any) bool {
		keys = append(keys, k.(Key))
		return true
	})
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

func (r *Registry) notFound(key Key) error {
	keys := r.Keys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return fmt.Errorf("%w: %s (known keys: [%s])", ErrConfigNotFound, key, strings.Join(names, ", "))
}
