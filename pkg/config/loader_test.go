package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Empty(t *testing.T) {
	_, err := ParseConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestParseConfig_Basic(t *testing.T) {
	yamlDoc := `
host:
  log_level: DEBUG
  metrics_port: 9191
providers:
  uprotocol-a:
    path: /opt/providers/libuprotocol.so
    expected_hash: any
`
	cfg, err := ParseConfig(yamlDoc)
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.Host.LogLevel)
	assert.Equal(t, 9191, cfg.Host.MetricsPort)
	require.Contains(t, cfg.Providers, "uprotocol-a")
	assert.Equal(t, "/opt/providers/libuprotocol.so", cfg.Providers["uprotocol-a"].Path)
}

func TestParseConfig_InvalidYAML(t *testing.T) {
	_, err := ParseConfig("host: [")
	require.Error(t, err)
}

func TestLoad_AppliesDefaultsAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "host.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
providers:
  mock:
    path: /opt/providers/libmock.so
    expected_hash: any
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultLogLevel, cfg.Host.LogLevel)
	assert.Equal(t, DefaultMetricsPort, cfg.Host.MetricsPort)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_FailsValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "host.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
providers:
  bad:
    path: ""
    expected_hash: any
`), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}
