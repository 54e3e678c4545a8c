package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jxo-me/curl-dyndns/config"
	"github.com/jxo-me/curl-dyndns/core/ddns"
	xlogger "github.com/jxo-me/curl-dyndns/sdk/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverridesApply(t *testing.T) {
	cfg := config.Config{URL: "https://from-file.example.com", ScanInterval: 20}
	overrides{}.apply(&cfg)
	assert.Equal(t, "https://from-file.example.com", cfg.URL)
	assert.Equal(t, 20, cfg.ScanInterval)
	assert.Nil(t, cfg.Log)

	overrides{
		URL:         "https://flag.example.com/?ip=%ip4%",
		Interval:    7,
		LogLevel:    "debug",
		MetricsAddr: ":9090",
	}.apply(&cfg)
	assert.Equal(t, "https://flag.example.com/?ip=%ip4%", cfg.URL)
	assert.Equal(t, 7, cfg.ScanInterval)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestConfigSourceRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("url: https://file.example.com/?ip=%ip4%\nscan_interval: 10\n"), 0o600))

	s := &configSource{path: path, overrides: overrides{Interval: 6}}
	cfg, err := s.Read(path, xlogger.Nop())
	require.NoError(t, err)
	assert.True(t, s.Watched())
	assert.Equal(t, "https://file.example.com/?ip=%ip4%", cfg.URL)
	assert.Equal(t, 6, cfg.ScanInterval)

	s.overrides.Interval = 3
	_, err = s.Read(path, xlogger.Nop())
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestConfigSourceWithoutFile(t *testing.T) {
	s := &configSource{}
	assert.False(t, s.Watched())

	_, err := s.Load()
	assert.ErrorIs(t, err, ddns.ErrConfigMissing)

	t.Setenv("DDNS_URL", "https://env.example.com/?ip=%ip6%")
	cfg, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com/?ip=%ip6%", cfg.URL)

	s.overrides.URL = "https://flag.example.com"
	cfg, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://flag.example.com", cfg.URL)
}
