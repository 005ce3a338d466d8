// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads the engine's configuration from layered sources
// (defaults, optional YAML file, environment variables) via Koanf v2,
// the same three-layer pattern the rest of this codebase's stack uses.
package config

import "time"

// Config is the top-level configuration for the data access engine:
// the store connection, the concurrency/caching knobs for ingest and
// query, the HTTP API surface, the optional message-bus consumer, authz,
// persistence, and logging.
type Config struct {
	Store    StoreConfig    `koanf:"store"`
	Engine   EngineConfig   `koanf:"engine"`
	Server   ServerConfig   `koanf:"server"`
	Bus      BusConfig      `koanf:"bus"`
	Security SecurityConfig `koanf:"security"`
	Persist  PersistConfig  `koanf:"persist"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// StoreConfig names the wide-column cluster this engine talks to.
type StoreConfig struct {
	Hosts             []string      `koanf:"hosts"`
	Keyspace          string        `koanf:"keyspace"`
	LocalDC           string        `koanf:"local_dc"`
	Consistency       string        `koanf:"consistency"`
	ConnectTimeout    time.Duration `koanf:"connect_timeout"`
	Timeout           time.Duration `koanf:"timeout"`
	Username          string        `koanf:"username"`
	Password          string        `koanf:"password"`

	// CircuitBreakerThreshold is the number of consecutive store failures
	// that trip the gobreaker circuit before further requests fail fast.
	CircuitBreakerThreshold uint32        `koanf:"circuit_breaker_threshold"`
	CircuitBreakerTimeout   time.Duration `koanf:"circuit_breaker_timeout"`
}

// EngineConfig tunes IngestEngine and QueryEngine's shared knobs.
type EngineConfig struct {
	// IngestConcurrency bounds how many partition batches IngestEngine
	// executes at once (spec §5). 0 defaults to hardware threads x2.
	IngestConcurrency int `koanf:"ingest_concurrency"`

	// QueryConcurrency bounds how many scatter-gather bucket SELECTs
	// QueryEngine runs at once. 0 defaults to hardware threads x2.
	QueryConcurrency int `koanf:"query_concurrency"`

	// StatementCacheSize is the bounded LRU capacity for prepared CQL
	// statement text (spec §4.4).
	StatementCacheSize int `koanf:"statement_cache_size"`

	// UDTMetadataTTL is how long Codec caches a keyspace's UDT field
	// order before re-fetching from the store (spec §4.3).
	UDTMetadataTTL time.Duration `koanf:"udt_metadata_ttl"`
}

// ServerConfig is the HTTP API listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// BusConfig is the optional NATS JetStream ingest-batch consumer (spec
// §4.5 extension point; Non-goal in spec.md, supplemented per
// original_source/).
type BusConfig struct {
	Enabled     bool   `koanf:"enabled"`
	URL         string `koanf:"url"`
	Topic       string `koanf:"topic"`
	DurableName string `koanf:"durable_name"`
	QueueGroup  string `koanf:"queue_group"`
}

// SecurityConfig gates the admin tenant-registry surface with Casbin.
type SecurityConfig struct {
	CasbinModelPath  string `koanf:"casbin_model_path"`
	CasbinPolicyPath string `koanf:"casbin_policy_path"`
}

// PersistConfig is the BadgerDB-backed TenantConfig snapshot store.
type PersistConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// LoggingConfig mirrors logging.Config's fields exactly so it can be
// passed straight through to logging.Init.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
