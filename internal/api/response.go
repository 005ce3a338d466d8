// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP boundary (spec §6): chi-routed ingest/query/admin
// endpoints over IngestEngine, QueryEngine, and the tenant Registry,
// wrapping every response in a consistent envelope and mapping the engine
// error taxonomy (spec §7) onto HTTP status codes.
package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/sudaredd/data-platform-core/internal/logging"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Status   string    `json:"status"`
	Data     any       `json:"data,omitempty"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

// Metadata carries response-scoped observability fields.
type Metadata struct {
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// APIError is the structured error body (spec §6 error format).
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, body *Response) {
	w.Header().Set("Content-Type", "application/json")
	data, err := json.Marshal(body)
	if err != nil {
		logging.Error().Err(err).Msg("api: marshal response failed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("api: write response failed")
	}
}

func respondData(w http.ResponseWriter, correlationID string, status int, data any) {
	respondJSON(w, status, &Response{
		Status:   "ok",
		Data:     data,
		Metadata: Metadata{Timestamp: time.Now(), CorrelationID: correlationID},
	})
}

func respondErr(w http.ResponseWriter, correlationID string, status int, code, message string) {
	respondJSON(w, status, &Response{
		Status:   "error",
		Metadata: Metadata{Timestamp: time.Now(), CorrelationID: correlationID},
		Error:    &APIError{Code: code, Message: message},
	})
}
