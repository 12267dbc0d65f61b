package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, 10, cfg.Paging.DefaultPageSize)
	assert.Zero(t, cfg.Paging.MaxPageSize)
	assert.True(t, cfg.Log.Compress)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte(
		"JWT_SECRET=from-file\n"+
			"STORAGE_DRIVER=Memory\n"+
			"CACHE_TTL=90s\n"+
			"CORS_ALLOWED_ORIGINS=https://a.example, https://b.example\n"+
			"MAX_PAGE_SIZE=50\n"+
			"LOG_COMPRESS=false\n",
	), 0o600))
	t.Setenv("APP_PORT", "9090")

	cfg, err := load(file)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 90*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 50, cfg.Paging.MaxPageSize)
	assert.False(t, cfg.Log.Compress)
}

func TestLoad_DefaultPageSizeAgainstCap(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("DEFAULT_PAGE_SIZE", "500")

	cfg, err := load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Paging.DefaultPageSize)

	t.Setenv("MAX_PAGE_SIZE", "100")
	_, err = load(filepath.Join(t.TempDir(), "missing.env"))
	assert.EqualError(t, err, "DEFAULT_PAGE_SIZE must be between 1 and MAX_PAGE_SIZE")
}

func TestLoad_Rejects(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := load(filepath.Join(t.TempDir(), "missing.env"))
	assert.EqualError(t, err, "JWT_SECRET is required")

	t.Setenv("JWT_SECRET", "x")
	t.Setenv("STORAGE_DRIVER", "mongo")
	_, err = load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestDBConfig_URL(t *testing.T) {
	db := DBConfig{Host: "db", Port: "5432", User: "app", Password: "p@ss", Name: "records", SSLMode: "disable"}
	assert.Equal(t, "pgx5://app:p%40ss@db:5432/records?sslmode=disable", db.URL())
	assert.Contains(t, db.DSN(), "dbname=records")
}
