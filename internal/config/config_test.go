package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"
  upload_limit_mb: 8

storage:
  type: "aws"
  s3_bucket: "roster-uploads"
  s3_prefix: "incoming/"

state:
  backend: "redis"

lock:
  ttl_seconds: 60

roster:
  home_country: "België"
  affirmative: "Oui"
  family_slots: 6

logging:
  level: "debug"
  redact_pii: false
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, int64(8<<20), cfg.Server.UploadLimit())

	assert.Equal(t, "aws", cfg.Storage.Type)
	assert.Equal(t, "roster-uploads", cfg.Storage.S3Bucket)
	assert.Equal(t, "incoming/", cfg.Storage.S3Prefix)

	assert.Equal(t, "redis", cfg.State.Backend)
	assert.Equal(t, time.Minute, cfg.Lock.TTL())

	assert.Equal(t, "België", cfg.Roster.HomeCountry)
	assert.Equal(t, "Oui", cfg.Roster.Affirmative)
	assert.Equal(t, 6, cfg.Roster.FamilySlots)
	assert.Equal(t, 2, cfg.Roster.CardTier)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Redact())
}

func TestLoadDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(configPath, []byte("server:\n  port: 0\n"), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "Media Point Excel Processor", cfg.Server.Title)
	assert.Equal(t, int64(32<<20), cfg.Server.UploadLimit())
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "memory", cfg.State.Backend)
	assert.Equal(t, "roster:run", cfg.Lock.Key)
	assert.Equal(t, 5*time.Minute, cfg.Lock.TTL())
	assert.Equal(t, "Nederland", cfg.Roster.HomeCountry)
	assert.Equal(t, "Ja", cfg.Roster.Affirmative)
	assert.Equal(t, 4, cfg.Roster.FamilySlots)
	assert.Equal(t, "Bron.xlsx", cfg.Roster.SourceName)
	assert.Equal(t, "Modified_Bron.xlsx", cfg.Roster.OutputName)
	assert.True(t, cfg.Logging.Redact())
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(configPath, []byte("invalid: yaml: content:"), 0644)
	require.NoError(t, err)

	_, err = Load(configPath)
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	err := os.WriteFile(configPath, []byte("server:\n  port: 9000\n"), 0644)
	require.NoError(t, err)

	t.Setenv("PORT", "9191")
	t.Setenv("DATABASE_URL", "postgres://roster@localhost/roster")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ROSTER_S3_BUCKET", "roster-prod")
	t.Setenv("AWS_REGION", "eu-central-1")
	t.Setenv("LOG_LEVEL", "WARN")

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "postgres://roster@localhost/roster", cfg.Database.URL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, "aws", cfg.Storage.Type)
	assert.Equal(t, "roster-prod", cfg.Storage.S3Bucket)
	assert.Equal(t, "eu-central-1", cfg.Storage.AWSRegion)
	assert.Equal(t, "WARN", cfg.Logging.Level)
}

func TestLoadFromEnvMissingFile(t *testing.T) {
	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestGetHost(t *testing.T) {
	t.Setenv("ECS_CONTAINER_METADATA_URI", "")
	t.Setenv("AWS_EXECUTION_ENV", "")
	t.Setenv("SERVER_HOST", "")
	assert.Equal(t, "127.0.0.1", ServerConfig{Host: "127.0.0.1"}.GetHost())

	t.Setenv("SERVER_HOST", "10.0.0.5")
	assert.Equal(t, "10.0.0.5", ServerConfig{Host: "127.0.0.1"}.GetHost())

	t.Setenv("AWS_EXECUTION_ENV", "AWS_ECS_FARGATE")
	assert.Equal(t, "0.0.0.0", ServerConfig{Host: "127.0.0.1"}.GetHost())
}
