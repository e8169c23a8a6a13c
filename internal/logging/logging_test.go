package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewInvalidLevel(t *testing.T) {
	_, err := New("verbose", "", false)
	assert.Error(t, err)
}

// TestNewWritesFile expects log entries at or above the level to end up in the file as JSON.
func TestNewWritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "service.log")
	log, err := New("warn", file, true)
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("kept", zap.String("id", "42"))
	_ = log.Sync()

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "dropped")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(content, &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "42", entry["id"])
}
