package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	return configPath
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
server:
  port: 9090
  host: "0.0.0.0"
  allowed_origins: ["https://admin.example.com"]

database:
  url: "postgres://app:secret@db:5432/app?sslmode=disable"
  max_open_conns: 10
  auto_migrate: true

redis:
  addr: "redis:6379"
  db: 2

storage:
  type: "s3"
  s3_bucket: "uploads"
  aws_region: "eu-west-1"
  file_path_root: "/srv/files"
  max_upload_mb: 20

password:
  hasher: "pbkdf2_sha256"
  bcrypt_cost: 11
  pbkdf2_iterations: 720000

admin:
  realm: "ops"
  default_limit: 25
  max_limit: 50

logging:
  level: "debug"
  redact_pii: false
`)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, []string{"https://admin.example.com"}, cfg.Server.AllowedOrigins)

	assert.Equal(t, "postgres://app:secret@db:5432/app?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Database.AutoMigrate)

	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)

	assert.Equal(t, "s3", cfg.Storage.Type)
	assert.Equal(t, "uploads", cfg.Storage.S3Bucket)
	assert.Equal(t, "/srv/files", cfg.Storage.FilePathRoot)
	assert.Equal(t, int64(20*1024*1024), cfg.Storage.MaxUploadBytes())

	assert.Equal(t, "pbkdf2_sha256", cfg.Password.Hasher)
	assert.Equal(t, 11, cfg.Password.BcryptCost)
	assert.Equal(t, 720000, cfg.Password.PBKDF2Iterations)

	assert.Equal(t, "ops", cfg.Admin.Realm)
	assert.Equal(t, 25, cfg.Admin.DefaultLimit)
	assert.Equal(t, 50, cfg.Admin.MaxLimit)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Logging.ShouldRedactPII())
}

func TestLoadDefaults(t *testing.T) {
	configPath := writeConfig(t, `
database:
  url: "postgres://localhost/app"
`)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime())
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "./media", cfg.Storage.LocalPath)
	assert.Equal(t, 10, cfg.Storage.MaxUploadMB)
	assert.Equal(t, "bcrypt_sha256", cfg.Password.Hasher)
	assert.Equal(t, 12, cfg.Password.BcryptCost)
	assert.Equal(t, 100, cfg.Admin.DefaultLimit)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Logging.ShouldRedactPII())
}

func TestLoadFromEnv(t *testing.T) {
	configPath := writeConfig(t, `
database:
  url: "postgres://file/app"
redis:
  addr: "file:6379"
`)

	t.Setenv("DATABASE_URL", "postgres://env/app")
	t.Setenv("REDIS_ADDR", "env:6379")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("PASSWORD_HASHER", "pbkdf2_sha256")
	t.Setenv("AUTO_MIGRATE", "true")

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env/app", cfg.Database.URL)
	assert.Equal(t, "env:6379", cfg.Redis.Addr)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "pbkdf2_sha256", cfg.Password.Hasher)
	assert.True(t, cfg.Database.AutoMigrate)
}

func TestLoadFromEnv_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/app")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "postgres://env/app", cfg.Database.URL)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestGetHost(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1"}
	assert.Equal(t, "127.0.0.1", cfg.GetHost())

	t.Setenv("SERVER_HOST", "10.0.0.5")
	assert.Equal(t, "10.0.0.5", cfg.GetHost())
}
