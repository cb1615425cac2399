package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("OCR_ENGINE", "gemini")
	t.Setenv("OCR_MAX_DECODED_MB", "5")
	t.Setenv("OCR_RECOGNITION_TIMEOUT_SEC", "7")
	t.Setenv("OCR_EXPOSE_ENGINE_DETAIL", "false")
	t.Setenv("BODY_LIMIT_MB", "8")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, "gemini", cfg.OCR.Engine)
	assert.Equal(t, int64(5<<20), cfg.OCR.MaxDecodedBytes)
	assert.Equal(t, 7*time.Second, cfg.OCR.Timeout)
	assert.False(t, cfg.OCR.ExposeEngineDetail)
	assert.Equal(t, 8<<20, cfg.BodyLimit)
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"DB_HOST", "OCR_ENGINE", "OCR_MAX_DECODED_MB", "OCR_RECOGNITION_TIMEOUT_SEC", "DEFAULT_LOCALE", "TZ_LOCATION"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, "remote", cfg.OCR.Engine)
	assert.Equal(t, int64(20<<20), cfg.OCR.MaxDecodedBytes)
	assert.Equal(t, 60*time.Second, cfg.OCR.Timeout)
	assert.True(t, cfg.OCR.ExposeEngineDetail)
	assert.Equal(t, "fr", cfg.DefaultLocale)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvLocation(t *testing.T) {
	t.Setenv("TEST_LOC_VAR", "not/a-zone")
	assert.Equal(t, time.UTC, getEnvLocation("TEST_LOC_VAR", time.UTC))

	t.Setenv("TEST_LOC_VAR", "UTC")
	assert.Equal(t, "UTC", getEnvLocation("TEST_LOC_VAR", time.Local).String())
}
