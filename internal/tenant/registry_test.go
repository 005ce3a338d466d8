// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package tenant

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ibmConfig() *Config {
	return NewConfig("analytics", "daily_numeric", []string{"tenant_id", "instrument_id", "period_year"}, "period_year", []string{"data"})
}

func TestRegistryRegisterLookup(t *testing.T) {
	r := New(nil)
	key := Key{TenantID: "IBM", Periodicity: PeriodicityDaily, DataType: DataTypeNumeric}

	require.NoError(t, r.Register(key, ibmConfig()))
	assert.True(t, r.Exists(key))

	cfg, err := r.Lookup(key)
	require.NoError(t, err)
	assert.Equal(t, "daily_numeric", cfg.Table)
}

func TestRegistryLookupMissingListsKnownKeys(t *testing.T) {
	r := New(nil)
	known := Key{TenantID: "IBM", Periodicity: PeriodicityDaily, DataType: DataTypeNumeric}
	require.NoError(t, r.Register(known, ibmConfig()))

	missing := Key{TenantID: "AAPL", Periodicity: PeriodicityDaily, DataType: DataTypeNumeric}
	_, err := r.Lookup(missing)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigNotFound))
	assert.Contains(t, err.Error(), known.String())
}

func TestRegistryRejectsBucketColumnNotInPartitionKeys(t *testing.T) {
	r := New(nil)
	cfg := NewConfig("analytics", "daily_numeric", []string{"tenant_id", "instrument_id"}, "period_year", nil)
	err := r.Register(Key{TenantID: "IBM", Periodicity: PeriodicityDaily, DataType: DataTypeNumeric}, cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestRegistryPolymorphicRouting(t *testing.T) {
	r := New(nil)
	numericKey := Key{TenantID: "IBM", Periodicity: PeriodicityDaily, DataType: DataTypeNumeric}
	stringKey := Key{TenantID: "IBM", Periodicity: PeriodicityDaily, DataType: DataTypeString}

	require.NoError(t, r.Register(numericKey, NewConfig("ks", "DailyNumeric", []string{"tenant_id"}, "", nil)))
	require.NoError(t, r.Register(stringKey, NewConfig("ks", "DailyString", []string{"tenant_id"}, "", nil)))

	numCfg, err := r.Lookup(numericKey)
	require.NoError(t, err)
	strCfg, err := r.Lookup(stringKey)
	require.NoError(t, err)

	assert.NotEqual(t, numCfg.Table, strCfg.Table)
	assert.Equal(t, "DailyNumeric", numCfg.Table)
	assert.Equal(t, "DailyString", strCfg.Table)
}

func TestRegistryOverwriteIsSilent(t *testing.T) {
	r := New(nil)
	key := Key{TenantID: "IBM", Periodicity: PeriodicityDaily, DataType: DataTypeNumeric}
	require.NoError(t, r.Register(key, NewConfig("ks", "v1", []string{"tenant_id"}, "", nil)))
	require.NoError(t, r.Register(key, NewConfig("ks", "v2", []string{"tenant_id"}, "", nil)))

	cfg, err := r.Lookup(key)
	require.NoError(t, err)
	assert.Equal(t, "v2", cfg.Table)
}

func TestRegistryUnregisterAndClear(t *testing.T) {
	r := New(nil)
	key := Key{TenantID: "IBM", Periodicity: PeriodicityDaily, DataType: DataTypeNumeric}
	require.NoError(t, r.Register(key, ibmConfig()))

	r.Unregister(key)
	assert.False(t, r.Exists(key))

	require.NoError(t, r.Register(key, ibmConfig()))
	r.Clear()
	assert.Empty(t, r.Keys())
}

func TestRegistryConcurrentReadersDoNotBlock(t *testing.T) {
	r := New(nil)
	key := Key{TenantID: "IBM", Periodicity: PeriodicityDaily, DataType: DataTypeNumeric}
	require.NoError(t, r.Register(key, ibmConfig()))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.Lookup(key)
		}()
	}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			k := Key{TenantID: "OTHER", Periodicity: PeriodicityDaily, DataType: DataTypeNumeric}
			_ = r.Register(k, ibmConfig())
		}(i)
	}
	wg.Wait()
}
