// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

// Command server wires together and runs the data access engine: it loads
// configuration, opens the store session, restores the tenant registry,
// builds the ingest/query engines, and serves the HTTP API (and, if
// enabled, the NATS JetStream ingest subscriber) under a supervised tree
// until SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gocql "github.com/apache/cassandra-gocql-driver/v2"

	"github.com/sudaredd/data-platform-core/internal/api"
	"github.com/sudaredd/data-platform-core/internal/authz"
	"github.com/sudaredd/data-platform-core/internal/bucket"
	"github.com/sudaredd/data-platform-core/internal/bus"
	"github.com/sudaredd/data-platform-core/internal/config"
	"github.com/sudaredd/data-platform-core/internal/ingest"
	"github.com/sudaredd/data-platform-core/internal/logging"
	"github.com/sudaredd/data-platform-core/internal/query"
	"github.com/sudaredd/data-platform-core/internal/statement"
	"github.com/sudaredd/data-platform-core/internal/store"
	"github.com/sudaredd/data-platform-core/internal/store/gocqlstore"
	"github.com/sudaredd/data-platform-core/internal/supervisor"
	"github.com/sudaredd/data-platform-core/internal/tenant"
	"github.com/sudaredd/data-platform-core/internal/tenant/persist"
	"github.com/sudaredd/data-platform-core/internal/udt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Caller: cfg.Logging.Caller})
	logging.Info().Msg("starting data-platform-core")

	session, err := gocqlstore.Open(gocqlstore.Config{
		Hosts:             cfg.Store.Hosts,
		LocalDatacenter:   cfg.Store.LocalDC,
		Keyspace:          cfg.Store.Keyspace,
		Consistency:       gocql.ParseConsistency(cfg.Store.Consistency),
		ConnectTimeoutSec: int(cfg.Store.ConnectTimeout.Seconds()),
	})
	if err != nil {
		logging.Error().Err(err).Msg("failed to open store session")
		os.Exit(1)
	}
	session = store.WithCircuitBreaker(session, store.CircuitBreakerConfig{
		FailureThreshold: cfg.Store.CircuitBreakerThreshold,
		Timeout:          cfg.Store.CircuitBreakerTimeout,
	})
	defer session.Close()

	registry, closePersist, err := buildRegistry(cfg.Persist)
	if err != nil {
		logging.Error().Err(err).Msg("failed to build tenant registry")
		os.Exit(1)
	}
	if closePersist != nil {
		defer closePersist()
	}

	statements := statement.NewCache(cfg.Engine.StatementCacheSize)
	buckets := bucket.NewCalculator(time.UTC)
	codec := udt.NewCodec(session, cfg.Engine.UDTMetadataTTL)

	ingestEngine := ingest.NewEngine(registry, session, statements, codec, buckets, cfg.Engine.IngestConcurrency)
	queryEngine := query.NewEngine(registry, session, statements, codec, cfg.Engine.QueryConcurrency)

	enforcer, err := authz.NewEnforcer(authz.Config{
		ModelPath:  cfg.Security.CasbinModelPath,
		PolicyPath: cfg.Security.CasbinPolicyPath,
	})
	if err != nil {
		logging.Error().Err(err).Msg("failed to build authz enforcer")
		os.Exit(1)
	}

	router := api.NewRouter(api.Config{
		CORSOrigins:     cfg.Server.CORSOrigins,
		RateLimitReqs:   cfg.Server.RateLimitReqs,
		RateLimitWindow: cfg.Server.RateLimitWindow,
	}, registry, ingestEngine, queryEngine, enforcer)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	tree := supervisor.New(logging.NewSlogLogger(), supervisor.DefaultConfig())
	tree.Add(supervisor.NewHTTPServerService(httpServer, cfg.Server.ShutdownTimeout))

	if cfg.Bus.Enabled {
		subscriber, err := bus.NewSubscriber(bus.Config{
			URL:         cfg.Bus.URL,
			Topic:       cfg.Bus.Topic,
			DurableName: cfg.Bus.DurableName,
			QueueGroup:  cfg.Bus.QueueGroup,
		}, ingestEngine)
		if err != nil {
			logging.Error().Err(err).Msg("failed to build bus subscriber")
			os.Exit(1)
		}
		defer subscriber.Close()
		tree.Add(subscriber)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", httpServer.Addr).Msg("serving")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree exited unexpectedly")
		}
	}

	<-errCh
	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("service did not stop within the shutdown timeout")
		}
	}
	logging.Info().Msg("shutdown complete")
}

// buildRegistry wires a tenant.Registry, restoring any persisted
// TenantConfigs from BadgerDB when persistence is enabled (spec §3).
func buildRegistry(cfg config.PersistConfig) (*tenant.Registry, func(), error) {
	if !cfg.Enabled {
		return tenant.New(nil), nil, nil
	}

	pstore, err := persist.Open(cfg.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open persistence store: %w", err)
	}

	registry := tenant.New(pstore)
	snapshots, err := pstore.LoadAll()
	if err != nil {
		_ = pstore.Close()
		return nil, nil, fmt.Errorf("load persisted tenant configs: %w", err)
	}
	for key, tc := range snapshots {
		if err := registry.Register(key, tc); err != nil {
			logging.Warn().Str("key", key.String()).Err(err).Msg("skipping invalid persisted tenant config")
		}
	}
	logging.Info().Int("count", len(snapshots)).Msg("restored tenant registry from persistence")

	return registry, func() { _ = pstore.Close() }, nil
}
