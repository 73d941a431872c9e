package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ASSETCLI_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 10, cfg.Pipeline.HeaderScanRows)
	assert.Equal(t, 2, cfg.Pipeline.HeaderMatchThreshold)
	assert.Equal(t, 8.0, cfg.Pipeline.MinColumnWidth)
	assert.Equal(t, 60.0, cfg.Pipeline.MaxColumnWidth)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server:\n  port: 9000\npipeline:\n  header_scan_rows: 5\n"), 0o644))

	t.Setenv("ASSETCLI_CONFIG_FILE", file)
	t.Setenv("ASSETCLI_SERVER_PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Pipeline.HeaderScanRows)
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	t.Setenv("ASSETCLI_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("ASSETCLI_LOGGING_LEVEL", "loud")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsInvertedWidthBounds(t *testing.T) {
	t.Setenv("ASSETCLI_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("ASSETCLI_PIPELINE_MIN_COLUMN_WIDTH", "80")
	t.Setenv("ASSETCLI_PIPELINE_MAX_COLUMN_WIDTH", "40")

	_, err := Load()
	require.Error(t, err)
}

func TestDefaultPipeline(t *testing.T) {
	cfg := DefaultPipeline()
	assert.Equal(t, 10, cfg.HeaderScanRows)
	assert.Equal(t, 2, cfg.HeaderMatchThreshold)
	assert.Less(t, cfg.MinColumnWidth, cfg.MaxColumnWidth)
}
