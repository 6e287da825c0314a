package database

import (
	"context"
	"path/filepath"
	"testing"

	"notlikethat/internal/config"
	"notlikethat/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(t *testing.T) config.StorageConfig {
	t.Helper()
	cfg := config.Default().Storage
	cfg.Driver = "sqlite"
	cfg.URL = ""
	cfg.Path = filepath.Join(t.TempDir(), "nested", "state.db")
	return cfg
}

func TestOpen_SQLiteAppliesMigrations(t *testing.T) {
	dm := NewManager(observability.NewNopLogger())
	cfg := sqliteConfig(t)

	db, dialect, err := dm.Open(context.Background(), cfg)
	require.NoError(t, err)
	defer db.Close()

	assert.True(t, dialect.IsSQLite())

	var name string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'kv_store'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "kv_store", name)

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestOpen_SQLiteReopenIsIdempotent(t *testing.T) {
	dm := NewManager(observability.NewNopLogger())
	cfg := sqliteConfig(t)

	db, _, err := dm.Open(context.Background(), cfg)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO kv_store (key, value) VALUES ('theme', '\"dark\"')")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, _, err = dm.Open(context.Background(), cfg)
	require.NoError(t, err)
	defer db.Close()

	var value string
	require.NoError(t, db.QueryRow("SELECT value FROM kv_store WHERE key = 'theme'").Scan(&value))
	assert.Equal(t, `"dark"`, value)
}

func TestOpen_Errors(t *testing.T) {
	dm := NewManager(observability.NewNopLogger())

	_, _, err := dm.Open(context.Background(), config.StorageConfig{Driver: "redis"})
	assert.Error(t, err)

	_, _, err = dm.Open(context.Background(), config.StorageConfig{Driver: "sqlite"})
	assert.Error(t, err)

	_, _, err = dm.Open(context.Background(), config.StorageConfig{Driver: "postgres"})
	assert.Error(t, err)
}

func TestExtractDatabaseName(t *testing.T) {
	assert.Equal(t, "app", extractDatabaseName("postgres://u:p@localhost:5432/app?sslmode=disable"))
	assert.Equal(t, "notlikethat", extractDatabaseName(""))
	assert.Equal(t, "state.db", dataSourceName(SQLite, config.StorageConfig{Path: "/tmp/x/state.db"}))
}
