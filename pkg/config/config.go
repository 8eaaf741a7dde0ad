package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ServiceMetadata   = "metadata"
	ServiceTranscript = "transcript"
)

// Config holds the application configuration.
type Config struct {
	Service  string `mapstructure:"SERVICE" validate:"oneof=metadata transcript"`
	Port     string `mapstructure:"PORT" validate:"required"`
	LogLevel string `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`

	SharePattern string `mapstructure:"SHARE_URL_PATTERN" validate:"required"`
	ChromePath   string `mapstructure:"CHROME_PATH"`
	Headless     bool   `mapstructure:"HEADLESS"`
	UserAgent    string `mapstructure:"USER_AGENT"`

	MetadataMaxAttempts       int           `mapstructure:"METADATA_MAX_ATTEMPTS" validate:"min=1"`
	MetadataRetryDelay        time.Duration `mapstructure:"METADATA_RETRY_DELAY" validate:"min=0"`
	MetadataNavigationTimeout time.Duration `mapstructure:"METADATA_NAVIGATION_TIMEOUT" validate:"gt=0"`
	MetadataAppTimeout        time.Duration `mapstructure:"METADATA_APP_TIMEOUT" validate:"gt=0"`

	TranscriptMaxAttempts       int           `mapstructure:"TRANSCRIPT_MAX_ATTEMPTS" validate:"min=1"`
	TranscriptRetryDelay        time.Duration `mapstructure:"TRANSCRIPT_RETRY_DELAY" validate:"min=0"`
	TranscriptNavigationTimeout time.Duration `mapstructure:"TRANSCRIPT_NAVIGATION_TIMEOUT" validate:"gt=0"`
	TranscriptContainerTimeout  time.Duration `mapstructure:"TRANSCRIPT_CONTAINER_TIMEOUT" validate:"gt=0"`
	TranscriptContentTimeout    time.Duration `mapstructure:"TRANSCRIPT_CONTENT_TIMEOUT" validate:"gt=0"`
	TranscriptResponseTimeout   time.Duration `mapstructure:"TRANSCRIPT_RESPONSE_TIMEOUT" validate:"min=0"`

	HTTPReadTimeout  time.Duration `mapstructure:"HTTP_READ_TIMEOUT"`
	HTTPWriteTimeout time.Duration `mapstructure:"HTTP_WRITE_TIMEOUT"`
	ShutdownTimeout  time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	// Failure journal. "none" disables it.
	JournalBackend string        `mapstructure:"JOURNAL_BACKEND" validate:"oneof=none postgres redis"`
	JournalTTL     time.Duration `mapstructure:"JOURNAL_TTL"`
	PostgresURL    string        `mapstructure:"POSTGRES_URL" validate:"required_if=JournalBackend postgres"`
	RedisAddr      string        `mapstructure:"REDIS_ADDR" validate:"required_if=JournalBackend redis"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int           `mapstructure:"REDIS_DB"`
}

// DefaultPort returns the listen port used when PORT is unset.
func DefaultPort(service string) string {
	if service == ServiceTranscript {
		return "5000"
	}
	return "6000"
}

// Load reads configuration for the given service from an optional env file,
// the process environment and any values already bound into v (e.g. cobra flags).
// A nil v uses the global viper instance.
func Load(v *viper.Viper, service, envFile string) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}

	// The env file is optional so that production can rely purely on the environment.
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v, service)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Service = service
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.JournalBackend = strings.ToLower(cfg.JournalBackend)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("SERVICE", service)
	v.SetDefault("PORT", DefaultPort(service))
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("SHARE_URL_PATTERN", "fathom.video/share")
	v.SetDefault("CHROME_PATH", "")
	v.SetDefault("HEADLESS", true)
	v.SetDefault("USER_AGENT", "")

	v.SetDefault("METADATA_MAX_ATTEMPTS", 3)
	v.SetDefault("METADATA_RETRY_DELAY", 10*time.Second)
	v.SetDefault("METADATA_NAVIGATION_TIMEOUT", 120*time.Second)
	v.SetDefault("METADATA_APP_TIMEOUT", 60*time.Second)

	v.SetDefault("TRANSCRIPT_MAX_ATTEMPTS", 5)
	v.SetDefault("TRANSCRIPT_RETRY_DELAY", 15*time.Second)
	v.SetDefault("TRANSCRIPT_NAVIGATION_TIMEOUT", 300*time.Second)
	v.SetDefault("TRANSCRIPT_CONTAINER_TIMEOUT", 300*time.Second)
	v.SetDefault("TRANSCRIPT_CONTENT_TIMEOUT", 300*time.Second)
	v.SetDefault("TRANSCRIPT_RESPONSE_TIMEOUT", 180*time.Second)

	v.SetDefault("HTTP_READ_TIMEOUT", 10*time.Second)
	v.SetDefault("HTTP_WRITE_TIMEOUT", 45*time.Minute)
	v.SetDefault("SHUTDOWN_TIMEOUT", 15*time.Second)

	v.SetDefault("JOURNAL_BACKEND", "none")
	v.SetDefault("JOURNAL_TTL", 7*24*time.Hour)
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
}
