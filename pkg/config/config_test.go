package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsPerService(t *testing.T) {
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")

	meta, err := Load(viper.New(), ServiceMetadata, "")
	require.NoError(t, err)
	assert.Equal(t, "6000", meta.Port)
	assert.Equal(t, ServiceMetadata, meta.Service)
	assert.Equal(t, 3, meta.MetadataMaxAttempts)
	assert.Equal(t, 10*time.Second, meta.MetadataRetryDelay)
	assert.Equal(t, 120*time.Second, meta.MetadataNavigationTimeout)
	assert.Equal(t, "none", meta.JournalBackend)
	assert.True(t, meta.Headless)

	tr, err := Load(viper.New(), ServiceTranscript, "")
	require.NoError(t, err)
	assert.Equal(t, "5000", tr.Port)
	assert.Equal(t, 5, tr.TranscriptMaxAttempts)
	assert.Equal(t, 15*time.Second, tr.TranscriptRetryDelay)
	assert.Equal(t, 180*time.Second, tr.TranscriptResponseTimeout)
	assert.Equal(t, 45*time.Minute, tr.HTTPWriteTimeout)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("METADATA_MAX_ATTEMPTS", "4")
	t.Setenv("METADATA_RETRY_DELAY", "250ms")
	t.Setenv("HEADLESS", "false")

	cfg, err := Load(viper.New(), ServiceMetadata, "")
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 4, cfg.MetadataMaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.MetadataRetryDelay)
	assert.False(t, cfg.Headless)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TRANSCRIPT_MAX_ATTEMPTS=2\n"), 0o600))
	t.Setenv("TRANSCRIPT_MAX_ATTEMPTS", "")
	os.Unsetenv("TRANSCRIPT_MAX_ATTEMPTS")

	cfg, err := Load(viper.New(), ServiceTranscript, path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.TranscriptMaxAttempts)
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	_, err := Load(viper.New(), ServiceMetadata, filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown journal":      {"JOURNAL_BACKEND": "mongo"},
		"postgres without url": {"JOURNAL_BACKEND": "postgres"},
		"redis without addr":   {"JOURNAL_BACKEND": "redis"},
		"zero attempts":        {"METADATA_MAX_ATTEMPTS": "0"},
		"bad log level":        {"LOG_LEVEL": "verbose"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load(viper.New(), ServiceMetadata, "")
			assert.ErrorContains(t, err, "invalid config")
		})
	}
}

func TestLoadJournalBackends(t *testing.T) {
	t.Setenv("JOURNAL_BACKEND", "Redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("JOURNAL_TTL", "24h")

	cfg, err := Load(viper.New(), ServiceTranscript, "")
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.JournalBackend)
	assert.Equal(t, 24*time.Hour, cfg.JournalTTL)
}
