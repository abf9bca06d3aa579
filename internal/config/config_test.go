package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("XATA_API_KEY", "xau_test")
	t.Setenv("XATA_DATABASE_URL", "https://ws.us-east-1.xata.sh/db/school")
	t.Setenv("XATA_BRANCH", "dev")
	t.Setenv("STORAGE_TIMEOUT", "3s")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "xau_test", cfg.Xata.APIKey)
	assert.Equal(t, "https://ws.us-east-1.xata.sh/db/school", cfg.Xata.DatabaseURL)
	assert.Equal(t, "dev", cfg.Xata.Branch)
	assert.Equal(t, 3*time.Second, cfg.Storage.Timeout)
	assert.True(t, cfg.Xata.Configured())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, DriverXata, cfg.Storage.Driver)
	assert.Equal(t, "tbl_students", cfg.Storage.Table)
	assert.Equal(t, 5*time.Second, cfg.HTTPServer.ShutdownTimeout)
	assert.Equal(t, 60*time.Second, cfg.HTTPServer.IdleTimeout)
}

func TestLoadFromFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.yaml")
	yaml := `env: staging
http_server:
  address: "localhost:8082"
storage:
  driver: sqlite
  path: /tmp/students.db
xata:
  branch: feature
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("XATA_BRANCH", "override")

	cfg, err := Load([]string{"--config", path})
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Env)
	assert.Equal(t, "localhost:8082", cfg.HTTPServer.Addr)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/students.db", cfg.Storage.Path)
	assert.Equal(t, "override", cfg.Xata.Branch)
	assert.False(t, cfg.Xata.Configured())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{
			name: "unknown driver",
			env:  map[string]string{"STORAGE_DRIVER": "postgres"},
		},
		{
			name: "non-positive timeout",
			env:  map[string]string{"STORAGE_TIMEOUT": "0s"},
		},
		{
			name: "missing config file",
			args: []string{"--config", "/does/not/exist.yaml"},
		},
		{
			name: "unknown flag",
			args: []string{"--nope"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(tt.args)
			assert.Error(t, err)
		})
	}
}
