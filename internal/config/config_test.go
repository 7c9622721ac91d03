package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `{"feed_url": "wss://feed.example.com/stream"}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "wss://feed.example.com/stream", cfg.FeedURL)
	assert.Equal(t, DefaultBatchWindowMS, cfg.BatchWindowMS)
	assert.Equal(t, DefaultBatchSize, cfg.BatchSize)
	assert.Equal(t, DefaultHistoryTTLSec, cfg.HistoryTTLSec)
	assert.Equal(t, DefaultMaxRecords, cfg.MaxRecords)
	assert.Equal(t, DefaultReconnectMaxMS, cfg.ReconnectMaxMS)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, DefaultLogFile, cfg.LogFile)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `{
		"feed_url": "ws://localhost:9000/stream",
		"history_api_url": "https://api.example.com",
		"batch_window_ms": 100,
		"batch_size": 32,
		"max_records": 250,
		"debug_logging": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "ws://localhost:9000/stream", cfg.FeedURL)
	assert.Equal(t, "https://api.example.com", cfg.HistoryAPIURL)
	assert.Equal(t, 100, cfg.BatchWindowMS)
	assert.Equal(t, 32, cfg.BatchSize)
	assert.Equal(t, 250, cfg.MaxRecords)
	assert.True(t, cfg.DebugLogging)
}

func TestLoadConfigMissingFeedURL(t *testing.T) {
	path := writeConfig(t, `{}`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feed_url")
}

func TestLoadConfigRejectsWrongSchemes(t *testing.T) {
	path := writeConfig(t, `{"feed_url": "https://not-a-socket.example.com"}`)
	_, err := LoadConfig(path)
	assert.Error(t, err)

	path = writeConfig(t, `{
		"feed_url": "wss://feed.example.com",
		"history_api_url": "ftp://files.example.com"
	}`)
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigRejectsInvalidNumerics(t *testing.T) {
	cases := []string{
		`{"feed_url": "wss://x", "batch_window_ms": 0}`,
		`{"feed_url": "wss://x", "batch_size": -1}`,
		`{"feed_url": "wss://x", "history_ttl_sec": 0}`,
		`{"feed_url": "wss://x", "max_records": 0}`,
		`{"feed_url": "wss://x", "reconnect_max_ms": 0}`,
	}

	for _, content := range cases {
		path := writeConfig(t, content)
		_, err := LoadConfig(path)
		assert.Error(t, err, content)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("GXSCAN_FEED_URL", "wss://env.example.com/stream")

	path := writeConfig(t, `{"feed_url": "wss://file.example.com/stream"}`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "wss://env.example.com/stream", cfg.FeedURL)
}
