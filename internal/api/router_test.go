// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/sudaredd/data-platform-core/internal/authz"
	"github.com/sudaredd/data-platform-core/internal/bucket"
	"github.com/sudaredd/data-platform-core/internal/ingest"
	"github.com/sudaredd/data-platform-core/internal/query"
	"github.com/sudaredd/data-platform-core/internal/statement"
	"github.com/sudaredd/data-platform-core/internal/store/storetest"
	"github.com/sudaredd/data-platform-core/internal/tenant"
	"github.com/sudaredd/data-platform-core/internal/udt"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	registry := tenant.New(nil)
	session := storetest.New()
	statements := statement.NewCache(64)
	codec := udt.NewCodec(session, time.Minute)
	buckets := bucket.NewCalculator(time.UTC)

	ingestEngine := ingest.NewEngine(registry, session, statements, codec, buckets, 4)
	queryEngine := query.NewEngine(registry, session, statements, codec, 4)

	enforcer, err := authz.NewEnforcer(authz.Config{})
	require.NoError(t, err)

	return NewRouter(Config{}, registry, ingestEngine, queryEngine, enforcer)
}

func TestHealthzReturnsOK(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}

func TestIngestBatchWithoutTenantIDIsRejected(t *testing.T) {
	router := newTestRouter(t)

	body, err := json.Marshal(map[string]any{
		"periodicity": "DAILY",
		"data":        []map[string]any{{"value": 1}},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/ingest/batch", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRegisterRequiresAdminRole(t *testing.T) {
	router := newTestRouter(t)

	body, err := json.Marshal(map[string]any{
		"tenant_id":      "acme",
		"periodicity":    "DAILY",
		"data_type":      "NUMERIC",
		"keyspace":       "ks",
		"table":          "tbl",
		"partition_keys": []string{"tenant_id"},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/registry/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRegisterWithAdminRoleSucceeds(t *testing.T) {
	router := newTestRouter(t)

	body, err := json.Marshal(map[string]any{
		"tenant_id":      "acme",
		"periodicity":    "DAILY",
		"data_type":      "NUMERIC",
		"keyspace":       "ks",
		"table":          "tbl",
		"partition_keys": []string{"tenant_id"},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/registry/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Role", "admin")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
}
