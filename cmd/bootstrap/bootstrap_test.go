package bootstrap

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clinical-records-api/config"
	"clinical-records-api/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Port: "0", Env: "test"},
		Storage: config.StorageConfig{Driver: config.StorageDriverMemory},
		JWT:     config.JWTConfig{Secret: "secret", Issuer: "records", AccessExpiry: time.Minute},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"*"}},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Paging:  config.PagingConfig{DefaultPageSize: 10, MaxPageSize: 100},
		Redis:   config.RedisConfig{CacheTTL: time.Minute},
	}
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestNew_MemoryStorageServesEveryEntity(t *testing.T) {
	cfg := memoryConfig()
	mr := miniredis.RunT(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Host, cfg.Redis.Port = mr.Host(), mr.Port()

	app, err := New(cfg, quietLogger())
	require.NoError(t, err)
	defer app.Close()
	assert.Nil(t, app.DB)
	assert.NotNil(t, app.RedisClient)

	token, _, err := jwt.NewJWTService(cfg.JWT).GenerateAccessToken(uuid.New(), uuid.New(), []string{"*:*"})
	require.NoError(t, err)

	for _, route := range []string{"dunningletters", "prescription", "treatment", "auditlogs"} {
		req := httptest.NewRequest(http.MethodGet, "/api/"+route, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		app.Server.Handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, route)
	}

	body := `{"patientName":"John Doe","name":"Dialysis","status":"planned","startDate":"2024-04-10T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/treatment", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	app.Server.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNew_RedisUnavailable(t *testing.T) {
	cfg := memoryConfig()
	mr := miniredis.RunT(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Host, cfg.Redis.Port = mr.Host(), mr.Port()
	mr.Close()

	_, err := New(cfg, quietLogger())
	assert.Error(t, err)
}

func TestMigrate_RequiresPostgres(t *testing.T) {
	err := Migrate(memoryConfig(), quietLogger(), true)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	log := NewLogger(config.LogConfig{Level: "debug"})
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log = NewLogger(config.LogConfig{Level: "nonsense"})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())

	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestRotatingFile_FollowsConfig(t *testing.T) {
	cfg := config.LogConfig{File: "records.log", MaxSizeMB: 20, MaxAgeDays: 7, MaxBackups: 3}

	file := rotatingFile(cfg)
	assert.Equal(t, "records.log", file.Filename)
	assert.Equal(t, 20, file.MaxSize)
	assert.Equal(t, 7, file.MaxAge)
	assert.Equal(t, 3, file.MaxBackups)
	assert.False(t, file.Compress)

	cfg.Compress = true
	assert.True(t, rotatingFile(cfg).Compress)
}
