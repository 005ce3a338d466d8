// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/sudaredd/data-platform-core/internal/ingest"
	"github.com/sudaredd/data-platform-core/internal/logging"
	"github.com/sudaredd/data-platform-core/internal/record"
	"github.com/sudaredd/data-platform-core/internal/recordjson"
	"github.com/sudaredd/data-platform-core/internal/tenant"
	"github.com/sudaredd/data-platform-core/internal/validation"
)

type ingestHandler struct {
	engine *ingest.Engine
}

// IngestTenant handles POST /api/ingest/{tenant}: ingest a batch of
// records for one tenant (spec §4.5, §6).
func (h *ingestHandler) IngestTenant(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenant")
	h.ingest(w, r, tenantID)
}

// IngestBatch handles POST /api/ingest/batch: the tenant is named in the
// request body rather than the path, for callers batching across multiple
// calls to a single endpoint.
func (h *ingestHandler) IngestBatch(w http.ResponseWriter, r *http.Request) {
	h.ingest(w, r, "")
}

func (h *ingestHandler) ingest(w http.ResponseWriter, r *http.Request, pathTenant string) {
	ctx := r.Context()
	correlationID := logging.CorrelationIDFromContext(ctx)

	var body ingestRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondErr(w, correlationID, http.StatusBadRequest, "INVALID_REQUEST", "malformed JSON body: "+err.Error())
		return
	}
	if verr := validation.ValidateStruct(&body); verr != nil {
		respondErr(w, correlationID, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error())
		return
	}

	tenantID := pathTenant
	if tenantID == "" {
		tenantID = body.TenantID
	}
	if tenantID == "" {
		respondErr(w, correlationID, http.StatusBadRequest, "INVALID_REQUEST", "tenant_id is required")
		return
	}

	periodicity := tenant.PeriodicityDaily
	if body.Periodicity != "" {
		periodicity = tenant.Periodicity(body.Periodicity)
	}
	dataType := tenant.DataType(body.DataType)

	records := make([]record.Record, len(body.Data))
	for i, m := range body.Data {
		records[i] = recordjson.FromJSON(m)
	}

	err := h.engine.IngestBatch(ctx, ingest.Request{
		TenantID:    tenantID,
		Periodicity: periodicity,
		DataType:    dataType,
		Data:        records,
	})
	if err != nil {
		status, code := errorToResponse(err)
		logging.Ctx(ctx).Error().Str("tenant_id", tenantID).Err(err).Msg("api: ingest failed")
		respondErr(w, correlationID, status, code, err.Error())
		return
	}

	respondData(w, correlationID, http.StatusAccepted, map[string]any{"ingested": len(records)})
}
