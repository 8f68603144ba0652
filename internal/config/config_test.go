package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HEARTLOG_CONFIG_PATH", "HEARTLOG_SERVER_HOST", "HEARTLOG_SERVER_PORT",
		"HEARTLOG_TRANSPORT", "HEARTLOG_DB_PATH", "HEARTLOG_DATA_DIR",
		"HEARTLOG_TIMEZONE", "HEARTLOG_LOG_LEVEL", "HEARTLOG_LOG_PATH",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.Equal(t, ",", cfg.Backup.Delimiter)

	loc, err := cfg.Location()
	require.NoError(t, err)
	require.Equal(t, time.Local, loc)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "heartlog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
transport:
  mode: http
db:
  path: /var/lib/heartlog/samples.db
data:
  dir: /var/lib/heartlog/export
export:
  csv_delimiter: ";"
  timezone: UTC
backup:
  delimiter: "|"
app:
  version: "2.1"
`), 0o644))

	t.Setenv("HEARTLOG_CONFIG_PATH", path)
	t.Setenv("HEARTLOG_SERVER_PORT", "9090")
	t.Setenv("HEARTLOG_DATA_DIR", "/tmp/override")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http", cfg.Transport.Mode)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "/var/lib/heartlog/samples.db", cfg.DB.Path)
	require.Equal(t, "/tmp/override", cfg.Data.Dir)
	require.Equal(t, ";", cfg.Export.CSVDelimiter)
	require.Equal(t, "|", cfg.Backup.Delimiter)
	require.Equal(t, "BLE Cardiac Monitor", cfg.App.Name)
	require.Equal(t, "2.1", cfg.App.Version)

	loc, err := cfg.Location()
	require.NoError(t, err)
	require.Equal(t, "UTC", loc.String())
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("HEARTLOG_SERVER_PORT", "eighty")
	_, err := Load()
	require.ErrorContains(t, err, "HEARTLOG_SERVER_PORT")

	clearEnv(t)
	t.Setenv("HEARTLOG_TRANSPORT", "grpc")
	_, err = Load()
	require.ErrorContains(t, err, "transport mode")

	clearEnv(t)
	t.Setenv("HEARTLOG_TIMEZONE", "Mars/Olympus")
	_, err = Load()
	require.ErrorContains(t, err, "timezone")

	clearEnv(t)
	t.Setenv("HEARTLOG_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	require.ErrorContains(t, err, "read config file")
}
