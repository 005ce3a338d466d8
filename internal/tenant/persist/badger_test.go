// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudaredd/data-platform-core/internal/tenant"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndLoadAllRoundTrips(t *testing.T) {
	s := openTestStore(t)
	key := tenant.Key{TenantID: "IBM", Periodicity: tenant.PeriodicityDaily, DataType: tenant.DataTypeNumeric}
	cfg := tenant.NewConfig("marketdata", "daily_price", []string{"tenant_id", "instrument_id", "period_year"}, "period_year", []string{"data"})

	require.NoError(t, s.Save(key, cfg))

	all, err := s.LoadAll()
	require.NoError(t, err)
	require.Contains(t, all, key)
	assert.Equal(t, cfg.Keyspace, all[key].Keyspace)
	assert.Equal(t, cfg.PartitionKeys, all[key].PartitionKeys)
}

func TestDeleteRemovesSnapshot(t *testing.T) {
	s := openTestStore(t)
	key := tenant.Key{TenantID: "IBM", Periodicity: tenant.PeriodicityDaily, DataType: tenant.DataTypeNumeric}
	cfg := tenant.NewConfig("marketdata", "daily_price", []string{"tenant_id"}, "", nil)

	require.NoError(t, s.Save(key, cfg))
	require.NoError(t, s.Delete(key))

	all, err := s.LoadAll()
	require.NoError(t, err)
	assert.NotContains(t, all, key)
}

func TestWipeClearsEverything(t *testing.T) {
	s := openTestStore(t)
	k1 := tenant.Key{TenantID: "IBM", Periodicity: tenant.PeriodicityDaily, DataType: tenant.DataTypeNumeric}
	k2 := tenant.Key{TenantID: "AAPL", Periodicity: tenant.PeriodicityDaily, DataType: tenant.DataTypeNumeric}
	cfg := tenant.NewConfig("marketdata", "daily_price", []string{"tenant_id"}, "", nil)

	require.NoError(t, s.Save(k1, cfg))
	require.NoError(t, s.Save(k2, cfg))
	require.NoError(t, s.Wipe())

	all, err := s.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}
