package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "chorestore.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "none", cfg.PhotoBackend)
	assert.Equal(t, devSecret, cfg.JWTSecret)
	assert.False(t, cfg.Production())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CHORESTORE_PORT", "9090")
	t.Setenv("CHORESTORE_LOG_LEVEL", "debug")
	t.Setenv("CHORESTORE_JWT_SECRET", "s3cret")
	t.Setenv("CHORESTORE_CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("CHORESTORE_TIME_ZONE", "America/Denver")
	t.Setenv("CHORESTORE_PHOTO_BACKEND", "s3")
	t.Setenv("CHORESTORE_S3_BUCKET", "photos")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, "photos", cfg.Photo().S3.Bucket)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Denver", loc.String())
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CHORESTORE_DB_PATH=from-file.db\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("CHORESTORE_DB_PATH") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file.db", cfg.DBPath)
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestProductionRequiresSecret(t *testing.T) {
	t.Setenv("CHORESTORE_ENV", "production")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := &Config{JWTSecret: "x", TimeZone: "Mars/Olympus", PhotoBackend: "none"}
	require.Error(t, cfg.Validate())

	cfg = &Config{JWTSecret: "x", TimeZone: "UTC", PhotoBackend: "ftp"}
	require.Error(t, cfg.Validate())
}
