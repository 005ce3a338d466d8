// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in
// priority order. The first one found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/data-platform-core/config.yaml",
	"/etc/data-platform-core/config.yml",
}

// ConfigPathEnvVar overrides the search path entirely when set.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Hosts:                   []string{"127.0.0.1"},
			Keyspace:                "marketdata",
			LocalDC:                 "datacenter1",
			Consistency:             "QUORUM",
			ConnectTimeout:          5 * time.Second,
			Timeout:                 10 * time.Second,
			CircuitBreakerThreshold: 5,
			CircuitBreakerTimeout:   30 * time.Second,
		},
		Engine: EngineConfig{
			IngestConcurrency:  0,
			QueryConcurrency:   0,
			StatementCacheSize: 1024,
			UDTMetadataTTL:     5 * time.Minute,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Bus: BusConfig{
			Enabled:     false,
			URL:         "nats://127.0.0.1:4222",
			Topic:       "platform-ingest",
			DurableName: "data-platform-core",
			QueueGroup:  "ingest-workers",
		},
		Security: SecurityConfig{
			CasbinModelPath:  "configs/rbac_model.conf",
			CasbinPolicyPath: "configs/rbac_policy.csv",
		},
		Persist: PersistConfig{
			Enabled: false,
			Path:    "/data/tenant-registry",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds a Config using Koanf's three-layer precedence: defaults,
// then an optional YAML file, then environment variables (spec's
// ambient configuration concern — not itself part of any [MODULE]).
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("config: process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths names koanf paths that come back as comma-separated
// strings from environment variables but must be []string.
var sliceConfigPaths = []string{
	"store.hosts",
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps the unprefixed environment variables listed in
// envMappings (e.g. STORE_KEYSPACE, HTTP_PORT) to koanf dotted paths. Unmapped variables are ignored, so arbitrary
// process environment doesn't leak into Config.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)
	mapped, ok := envMappings[key]
	if !ok {
		return ""
	}
	return mapped
}

var envMappings = map[string]string{
	"store_hosts":                     "store.hosts",
	"store_keyspace":                  "store.keyspace",
	"store_local_dc":                  "store.local_dc",
	"store_consistency":               "store.consistency",
	"store_connect_timeout":           "store.connect_timeout",
	"store_timeout":                   "store.timeout",
	"store_username":                  "store.username",
	"store_password":                  "store.password",
	"store_circuit_breaker_threshold": "store.circuit_breaker_threshold",
	"store_circuit_breaker_timeout":   "store.circuit_breaker_timeout",

	"ingest_concurrency":   "engine.ingest_concurrency",
	"query_concurrency":    "engine.query_concurrency",
	"statement_cache_size": "engine.statement_cache_size",
	"udt_metadata_ttl":     "engine.udt_metadata_ttl",

	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"rate_limit_reqs":       "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",
	"cors_origins":          "server.cors_origins",

	"bus_enabled":      "bus.enabled",
	"bus_url":          "bus.url",
	"bus_topic":        "bus.topic",
	"bus_durable_name": "bus.durable_name",
	"bus_queue_group":  "bus.queue_group",

	"casbin_model_path":  "security.casbin_model_path",
	"casbin_policy_path": "security.casbin_policy_path",

	"persist_enabled": "persist.enabled",
	"persist_path":    "persist.path",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}
