package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, "app:\n  name: intake-test\n"))
	require.NoError(t, err)

	assert.Equal(t, "intake-test", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, filepath.Join("app", "data"), cfg.Storage.DataDir)
	assert.Equal(t, SessionStoreMemory, cfg.Wizard.SessionStore)
	assert.Equal(t, 86400, cfg.Wizard.SessionTTL)
	assert.Equal(t, "lead-follow-up", cfg.Camunda.ProcessID)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.False(t, IsWorkerEnabled(cfg, WorkerRecordLedger))
}

func TestLoadFromFile_ExpandsEnv(t *testing.T) {
	t.Setenv("INTAKE_TEST_DATA_DIR", "/var/lib/intake")
	cfg, err := LoadFromFile(writeConfig(t, "storage:\n  data_dir: ${INTAKE_TEST_DATA_DIR}\n  create_dir: true\n"))
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/intake", cfg.Storage.DataDir)
	assert.True(t, cfg.Storage.CreateDir)
}

func TestLoadFromFile_Workers(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, `
database:
  postgres:
    host: localhost
    database: intake
    user: intake
workers:
  record-ledger:
    enabled: true
    timeout: 2500
`))
	require.NoError(t, err)

	ledger := GetWorkerConfig(cfg, WorkerRecordLedger)
	assert.True(t, ledger.Enabled)
	assert.Equal(t, 2500, ledger.Timeout)
	assert.Equal(t, 2, ledger.MaxRetries)
	assert.False(t, GetWorkerConfig(cfg, WorkerNotifySales).Enabled)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown session store", "wizard:\n  session_store: disk\n"},
		{"redis store without address", "wizard:\n  session_store: redis\n"},
		{"rate limit without redis", "rate_limit:\n  enabled: true\n"},
		{"ledger without postgres", "workers:\n  record-ledger:\n    enabled: true\n"},
		{"notify without channel", "workers:\n  notify-sales:\n    enabled: true\n"},
		{"follow-up without broker", "workers:\n  start-follow-up:\n    enabled: true\n"},
		{"bad trusted proxy", "server:\n  trusted_proxies: [\"lb.internal\"]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestServerConfig_TrustedProxyPrefixes(t *testing.T) {
	s := ServerConfig{TrustedProxies: []string{"10.0.0.0/8", " 192.168.1.7 ", "10.1.2.3/16", "::1"}}
	prefixes, err := s.TrustedProxyPrefixes()
	require.NoError(t, err)

	got := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		got = append(got, p.String())
	}
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.7/32", "10.1.0.0/16", "::1/128"}, got)

	_, err = ServerConfig{TrustedProxies: []string{"10.0.0.0/33"}}.TrustedProxyPrefixes()
	assert.Error(t, err)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "intake", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=intake sslmode=disable", p.GetDSN())
}
