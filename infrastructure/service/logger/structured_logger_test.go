package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewStructuredLogger(LoggerConfig{Level: "debug", Format: "json", ServiceName: "audit", Output: &buf})

	ctx := WithCorrelationID(context.Background(), "cid-1")
	log.WithFields(map[string]interface{}{"component": "test"}).
		Error(ctx, "write failed", errors.New("boom"), map[string]interface{}{"resource": "order"})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "write failed", line["msg"])
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "cid-1", line["correlation_id"])
	assert.Equal(t, "audit", line["service"])
	assert.Equal(t, "test", line["component"])
	assert.Equal(t, "order", line["resource"])
}

func TestStructuredLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewStructuredLogger(LoggerConfig{Level: "warn", Format: "json", Output: &buf})

	log.Info(context.Background(), "hidden", nil)
	assert.Zero(t, buf.Len())

	log.Warn(context.Background(), "shown", nil)
	assert.Contains(t, buf.String(), "shown")
}

func TestLogAuditFailure(t *testing.T) {
	var buf bytes.Buffer
	log := NewStructuredLogger(LoggerConfig{Level: "info", Format: "json", Output: &buf})

	LogAuditFailure(context.Background(), log, "persist", "update", "order", errors.New("db down"), nil)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Audit step failed: persist", line["msg"])
	assert.Equal(t, "audit", line["event_type"])
	assert.Equal(t, "db down", line["error"])
}
