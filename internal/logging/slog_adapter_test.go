// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlogHandlerWritesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	logger := NewSlogLogger()
	logger.Info("bus: ingest failed, nacking for redelivery", slog.String("tenant_id", "acme"))

	out := buf.String()
	require.Contains(t, out, "bus: ingest failed, nacking for redelivery")
	require.Contains(t, out, "\"tenant_id\":\"acme\"")
}

func TestSlogHandlerEnabledRespectsGlobalLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	handler := NewSlogHandler()
	require.False(t, handler.Enabled(context.Background(), slog.LevelInfo))
	require.True(t, handler.Enabled(context.Background(), slog.LevelError))
}

func TestSlogHandlerWithGroupNestsRecordAttrKeys(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	logger := NewSlogLogger().WithGroup("req")
	logger.Info("processed", slog.String("id", "abc"))

	out := buf.String()
	require.Contains(t, out, "\"req.id\":\"abc\"")
}

func TestSlogHandlerWithAttrsCarriesFieldsAcrossCalls(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	logger := NewSlogLogger().With(slog.String("service", "bus"))
	logger.Info("processed")

	out := buf.String()
	require.Contains(t, out, "\"service\":\"bus\"")
}
