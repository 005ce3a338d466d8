// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"net/http"

	"github.com/sudaredd/data-platform-core/internal/bucket"
	"github.com/sudaredd/data-platform-core/internal/ingest"
	"github.com/sudaredd/data-platform-core/internal/query"
	"github.com/sudaredd/data-platform-core/internal/store"
	"github.com/sudaredd/data-platform-core/internal/tenant"
	"github.com/sudaredd/data-platform-core/internal/udt"
	"github.com/sudaredd/data-platform-core/internal/validation"
)

// errorToResponse maps the engine's sentinel error taxonomy (spec §7) onto
// an HTTP status and a stable machine-readable code.
func errorToResponse(err error) (status int, code string) {
	var verr *validation.RequestError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, ingest.ErrInvalidRequest), errors.Is(err, query.ErrInvalidRequest):
		return http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, tenant.ErrConfigNotFound):
		return http.StatusNotFound, "CONFIG_NOT_FOUND"
	case errors.Is(err, bucket.ErrBucketType):
		return http.StatusUnprocessableEntity, "BUCKET_TYPE_ERROR"
	case errors.Is(err, bucket.ErrInvalidRange):
		return http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, udt.ErrMetadataMissing):
		return http.StatusUnprocessableEntity, "UDT_METADATA_MISSING"
	case errors.Is(err, ingest.ErrPartialBatchFailure):
		return http.StatusConflict, "PARTIAL_BATCH_FAILURE"
	case errors.Is(err, query.ErrScatterGatherFailure):
		return http.StatusBadGateway, "SCATTER_GATHER_FAILURE"
	case errors.Is(err, store.ErrStoreError):
		return http.StatusBadGateway, "STORE_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
