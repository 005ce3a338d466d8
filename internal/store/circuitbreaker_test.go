// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sudaredd/data-platform-core/internal/store"
	"github.com/sudaredd/data-platform-core/internal/store/storetest"
)

func TestCircuitBreakerWrapsFailureInErrStoreError(t *testing.T) {
	fake := storetest.New()
	fake.FailTable("tbl", errors.New("boom"))
	session := store.WithCircuitBreaker(fake, store.CircuitBreakerConfig{FailureThreshold: 2})

	b := session.NewLoggedBatch()
	b.Query("INSERT INTO ks.tbl (a) VALUES (?)", 1)
	err := session.ExecuteBatch(context.Background(), b)

	require.Error(t, err)
	require.ErrorIs(t, err, store.ErrStoreError)
}

func TestCircuitBreakerTripsOpenAfterThreshold(t *testing.T) {
	fake := storetest.New()
	fake.FailTable("tbl", errors.New("boom"))
	session := store.WithCircuitBreaker(fake, store.CircuitBreakerConfig{FailureThreshold: 2})

	for i := 0; i < 2; i++ {
		b := session.NewLoggedBatch()
		b.Query("INSERT INTO ks.tbl (a) VALUES (?)", 1)
		_ = session.ExecuteBatch(context.Background(), b)
	}

	// Breaker should now be open: even a statement with no fail rule is
	// rejected fast, without reaching the underlying fake store.
	fake.ClearFailRules()
	execBefore := fake.ExecCount()

	b := session.NewLoggedBatch()
	b.Query("INSERT INTO ks.tbl (a) VALUES (?)", 1)
	err := session.ExecuteBatch(context.Background(), b)

	require.Error(t, err)
	require.ErrorIs(t, err, store.ErrStoreError)
	require.Equal(t, execBefore, fake.ExecCount())
}

func TestKeyspaceMetadataPassesThroughOnSuccess(t *testing.T) {
	fake := storetest.New()
	fake.RegisterUDT("ks", "address", []string{"street", "city"})
	session := store.WithCircuitBreaker(fake, store.CircuitBreakerConfig{})

	meta, err := session.KeyspaceMetadata(context.Background(), "ks")
	require.NoError(t, err)
	require.Contains(t, meta.UserTypes, "address")
}
