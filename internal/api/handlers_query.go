// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/sudaredd/data-platform-core/internal/logging"
	"github.com/sudaredd/data-platform-core/internal/query"
	"github.com/sudaredd/data-platform-core/internal/recordjson"
	"github.com/sudaredd/data-platform-core/internal/tenant"
	"github.com/sudaredd/data-platform-core/internal/validation"
)

type queryHandler struct {
	engine *query.Engine
}

// Retrieve handles POST /api/query/{tenant} and POST
// /api/query/{tenant}/{periodicity} (spec §4.6, §6).
func (h *queryHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := logging.CorrelationIDFromContext(ctx)

	tenantID := chi.URLParam(r, "tenant")
	periodicity := tenant.Periodicity(chi.URLParam(r, "periodicity"))

	var body queryRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondErr(w, correlationID, http.StatusBadRequest, "INVALID_REQUEST", "malformed JSON body: "+err.Error())
		return
	}
	if verr := validation.ValidateStruct(&body); verr != nil {
		respondErr(w, correlationID, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error())
		return
	}

	criteria := recordjson.FromJSON(body.Criteria)
	for _, field := range []string{"start_date", "end_date"} {
		raw, ok := body.Criteria[field]
		if !ok {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			continue
		}
		v, err := recordjson.Date(s)
		if err != nil {
			respondErr(w, correlationID, http.StatusBadRequest, "INVALID_REQUEST", field+": "+err.Error())
			return
		}
		criteria[field] = v
	}

	rows, err := h.engine.Retrieve(ctx, query.Request{
		TenantID:    tenantID,
		Periodicity: periodicity,
		DataType:    tenant.DataType(body.DataType),
		Criteria:    criteria,
	})
	if err != nil {
		status, code := errorToResponse(err)
		logging.Ctx(ctx).Error().Str("tenant_id", tenantID).Err(err).Msg("api: query failed")
		respondErr(w, correlationID, status, code, err.Error())
		return
	}

	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		out[i] = recordjson.ToJSON(row)
	}
	respondData(w, correlationID, http.StatusOK, out)
}
