package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/school-api/internal/config"
	"github.com/aanand-mishra/school-api/internal/storage/sqlite"
	"github.com/aanand-mishra/school-api/internal/storage/xata"
)

func TestNewStorage(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{Storage: config.Storage{
		Driver:  config.DriverSQLite,
		Table:   "tbl_students",
		Timeout: time.Second,
		Path:    filepath.Join(t.TempDir(), "students.db"),
	}}
	store, closer, err := newStorage(cfg, log)
	require.NoError(t, err)
	assert.IsType(t, &sqlite.SQLite{}, store)
	require.NoError(t, closer.Close())

	cfg.Storage.Driver = config.DriverXata
	store, closer, err = newStorage(cfg, log)
	require.NoError(t, err)
	assert.IsType(t, &xata.Xata{}, store)
	assert.NoError(t, closer.Close())
}

func TestSetupLogger(t *testing.T) {
	for _, env := range []string{"dev", "staging", "prod", "unknown"} {
		assert.NotNil(t, setupLogger(env), env)
	}
	assert.False(t, setupLogger("prod").Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, setupLogger("dev").Enabled(context.Background(), slog.LevelDebug))
}
