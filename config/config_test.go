package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
http:
  addr: ":9000"
control:
  detune_default: 0.1
  scan_timeout_seconds: 3
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  topic: "lab/snapshot"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, 5, cfg.HTTP.ShutdownSeconds)
	assert.Equal(t, 0.1, cfg.Control.DetuneDefault)
	assert.Equal(t, 3, cfg.Control.ScanTimeoutSeconds)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "lab/snapshot", cfg.MQTT.Topic)
	assert.NotEmpty(t, cfg.MQTT.ClientID)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"http": {"addr": ":7070"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := writeConfig(t, "config.toml", `addr = ":8080"`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
control:
  scan_timeout_seconds: -1
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
http:
  addr: ":8080"
`)
	t.Setenv("DP_HTTP__ADDR", ":6000")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":6000", cfg.HTTP.Addr)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 0.05, cfg.Control.DetuneDefault)
	assert.Equal(t, 10, cfg.Control.ScanTimeoutSeconds)
	assert.False(t, cfg.MQTT.Enabled)
	assert.NoError(t, cfg.Validate())
}
