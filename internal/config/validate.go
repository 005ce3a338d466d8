// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import "fmt"

// Validate checks that required configuration is present and sane.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateBus(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStore() error {
	if len(c.Store.Hosts) == 0 {
		return fmt.Errorf("store.hosts must have at least one entry")
	}
	if c.Store.Keyspace == "" {
		return fmt.Errorf("store.keyspace is required")
	}
	switch c.Store.Consistency {
	case "ONE", "QUORUM", "LOCAL_QUORUM", "ALL", "LOCAL_ONE":
	default:
		return fmt.Errorf("store.consistency %q is not a recognised consistency level", c.Store.Consistency)
	}
	if c.Store.CircuitBreakerThreshold == 0 {
		return fmt.Errorf("store.circuit_breaker_threshold must be > 0")
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.IngestConcurrency < 0 {
		return fmt.Errorf("engine.ingest_concurrency must be >= 0")
	}
	if c.Engine.QueryConcurrency < 0 {
		return fmt.Errorf("engine.query_concurrency must be >= 0")
	}
	if c.Engine.StatementCacheSize <= 0 {
		return fmt.Errorf("engine.statement_cache_size must be > 0")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Server.RateLimitReqs <= 0 {
		return fmt.Errorf("server.rate_limit_reqs must be > 0")
	}
	return nil
}

func (c *Config) validateBus() error {
	if !c.Bus.Enabled {
		return nil
	}
	if c.Bus.URL == "" {
		return fmt.Errorf("bus.url is required when bus.enabled=true")
	}
	if c.Bus.Topic == "" {
		return fmt.Errorf("bus.topic is required when bus.enabled=true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q must be one of: json, console", c.Logging.Format)
	}
	return nil
}
