// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/sudaredd/data-platform-core/internal/authz"
	"github.com/sudaredd/data-platform-core/internal/logging"
	"github.com/sudaredd/data-platform-core/internal/tenant"
	"github.com/sudaredd/data-platform-core/internal/validation"
)

type adminHandler struct {
	registry *tenant.Registry
	enforcer *authz.Enforcer
}

// roleFromRequest reads the caller's role off the X-Role header. A real
// deployment would derive this from an authenticated identity; spec.md
// names no auth mechanism for the admin surface, so the header is the
// documented placeholder for wherever that identity provider plugs in.
func roleFromRequest(r *http.Request) string {
	if role := r.Header.Get("X-Role"); role != "" {
		return role
	}
	return authz.RoleViewer
}

func (h *adminHandler) authorize(w http.ResponseWriter, r *http.Request, action string) bool {
	correlationID := logging.CorrelationIDFromContext(r.Context())
	allowed, err := h.enforcer.Allow(roleFromRequest(r), action)
	if err != nil {
		respondErr(w, correlationID, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return false
	}
	if !allowed {
		respondErr(w, correlationID, http.StatusForbidden, "FORBIDDEN", "role lacks "+action+" permission on the tenant registry")
		return false
	}
	return true
}

// Register handles POST /api/admin/registry (spec §4.1 Register).
func (h *adminHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, authz.ActionWrite) {
		return
	}
	correlationID := logging.CorrelationIDFromContext(r.Context())

	var body registerConfigBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondErr(w, correlationID, http.StatusBadRequest, "INVALID_REQUEST", "malformed JSON body: "+err.Error())
		return
	}
	if verr := validation.ValidateStruct(&body); verr != nil {
		respondErr(w, correlationID, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error())
		return
	}

	cfg := tenant.NewConfig(body.Keyspace, body.Table, body.PartitionKeys, body.BucketColumn, body.UDTColumns)
	cfg.TypeNameOverrides = body.TypeNameOverrides

	key := tenant.Key{
		TenantID:    body.TenantID,
		Periodicity: tenant.Periodicity(body.Periodicity),
		DataType:    tenant.DataType(body.DataType),
	}
	if err := h.registry.Register(key, cfg); err != nil {
		respondErr(w, correlationID, http.StatusBadRequest, "INVALID_CONFIG", err.Error())
		return
	}
	respondData(w, correlationID, http.StatusCreated, map[string]any{"key": key.String()})
}

// Unregister handles DELETE /api/admin/registry/{tenant}/{periodicity}/{dataType}.
func (h *adminHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, authz.ActionWrite) {
		return
	}
	correlationID := logging.CorrelationIDFromContext(r.Context())

	key := tenant.Key{
		TenantID:    chi.URLParam(r, "tenant"),
		Periodicity: tenant.Periodicity(chi.URLParam(r, "periodicity")),
		DataType:    tenant.DataType(chi.URLParam(r, "dataType")),
	}
	h.registry.Unregister(key)
	respondData(w, correlationID, http.StatusOK, map[string]any{"key": key.String()})
}

// List handles GET /api/admin/registry (spec §4.1, read-only).
func (h *adminHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, authz.ActionRead) {
		return
	}
	correlationID := logging.CorrelationIDFromContext(r.Context())

	keys := h.registry.Keys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	respondData(w, correlationID, http.StatusOK, map[string]any{"keys": names})
}
