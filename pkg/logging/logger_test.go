package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{
		Level:      LevelDebug,
		Component:  "test",
		JSONFormat: true,
		Output:     &buf,
	})

	log.Info("owners resolved", F("count", 3), F("threshold", 0.7))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "owners resolved", entry["message"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, float64(3), entry["count"])
	assert.Equal(t, 0.7, entry["threshold"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{
		Level:      LevelWarn,
		Component:  "test",
		JSONFormat: true,
		Output:     &buf,
	})

	log.Debug("hidden")
	log.Info("also hidden")
	assert.Zero(t, buf.Len())

	log.Error("visible", Err(errors.New("boom")))
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "boom")
}

func TestWithAttachesFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{
		Level:      LevelInfo,
		Component:  "test",
		JSONFormat: true,
		Output:     &buf,
	})

	stageLog := log.With(F("stage", "owner_resolution"))
	stageLog.Info("pass 1 complete")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "owner_resolution", entry["stage"])
}

func TestWithContextExtractsRunID(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{
		Level:      LevelInfo,
		Component:  "test",
		JSONFormat: true,
		Output:     &buf,
	})

	ctx := context.WithValue(context.Background(), RunIDKey, "run_abc123")
	log.WithContext(ctx).Info("stage complete")

	assert.Contains(t, buf.String(), "run_abc123")
}

func TestNopLoggerDiscards(t *testing.T) {
	log := NewNopLogger()
	// Must not panic and must chain.
	log.With(F("a", 1)).WithContext(context.Background()).Info("ignored")
}
