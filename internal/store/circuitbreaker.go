// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/sudaredd/data-platform-core/internal/metrics"
)

// CircuitBreakerConfig tunes the breaker guarding ExecuteBatch and
// KeyspaceMetadata against a degraded cluster (spec §6 "Configuration":
// CircuitBreakerThreshold, CircuitBreakerTimeout).
type CircuitBreakerConfig struct {
	FailureThreshold uint32
	Timeout          time.Duration
}

// circuitBreakerSession decorates a Session, tripping open after
// FailureThreshold consecutive ExecuteBatch/KeyspaceMetadata failures and
// failing fast (without hitting the cluster) until Timeout elapses.
// Query/Iter are left undecorated: they stream rows lazily, which does not
// fit a single-call breaker boundary, and scatter-gather already isolates
// per-bucket read failures (spec §4.6 ErrScatterGatherFailure).
type circuitBreakerSession struct {
	Session
	batchBreaker    *gobreaker.CircuitBreaker[struct{}]
	metadataBreaker *gobreaker.CircuitBreaker[*KeyspaceMetadata]
}

// WithCircuitBreaker wraps session with a gobreaker-backed circuit breaker.
func WithCircuitBreaker(session Session, cfg CircuitBreakerConfig) Session {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	readyToTrip := func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= cfg.FailureThreshold
	}
	onStateChange := func(name string, from, to gobreaker.State) {
		metrics.StoreCircuitBreakerState.Set(stateGauge(to))
	}

	return &circuitBreakerSession{
		Session: session,
		batchBreaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:          "store-batch",
			Timeout:       cfg.Timeout,
			ReadyToTrip:   readyToTrip,
			OnStateChange: onStateChange,
		}),
		metadataBreaker: gobreaker.NewCircuitBreaker[*KeyspaceMetadata](gobreaker.Settings{
			Name:          "store-metadata",
			Timeout:       cfg.Timeout,
			ReadyToTrip:   readyToTrip,
			OnStateChange: onStateChange,
		}),
	}
}

func (c *circuitBreakerSession) ExecuteBatch(ctx context.Context, b Batch) error {
	_, err := c.batchBreaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.Session.ExecuteBatch(ctx, b)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreError, err)
	}
	return nil
}

func (c *circuitBreakerSession) KeyspaceMetadata(ctx context.Context, keyspace string) (*KeyspaceMetadata, error) {
	meta, err := c.metadataBreaker.Execute(func() (*KeyspaceMetadata, error) {
		return c.Session.KeyspaceMetadata(ctx, keyspace)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreError, err)
	}
	return meta, nil
}

func stateGauge(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
