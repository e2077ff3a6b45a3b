package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plume.yaml")
	content := `host: broker.local
port: 9100
name: kitchen-panel
log_file: session.plog
keepalive_interval: 45s
connect_timeout: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "broker.local", cfg.Host)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "kitchen-panel", cfg.Name)
	assert.Equal(t, "session.plog", cfg.LogFile)
	assert.Equal(t, 45*time.Second, cfg.KeepAliveInterval.Std())
	assert.Equal(t, 3*time.Second, cfg.ConnectTimeout.Std())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: [broken"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestClientConfigTranslation(t *testing.T) {
	fileCfg := &FileConfig{
		Host:              "broker.local",
		Port:              9100,
		Name:              "panel",
		KeepAliveInterval: Duration(30 * time.Second),
	}

	cfg := fileCfg.clientConfig()
	assert.Equal(t, "broker.local", cfg.Host)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "panel", cfg.Name)
	assert.Equal(t, 30*time.Second, cfg.KeepAlive.PingInterval)
}

func TestClientConfigDefaults(t *testing.T) {
	cfg := (&FileConfig{}).clientConfig()
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 4222, cfg.Port)
	assert.Zero(t, cfg.KeepAlive.PingInterval)
}
