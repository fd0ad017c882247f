package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vram-calculator/core/models"
)

// Config holds the application configuration
type Config struct {
	// Server
	ServerPort      string        `envconfig:"SERVER_PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"` // console or json

	// Export
	ExportDir string `envconfig:"EXPORT_DIR" default:"."`

	// AWS
	AWSRegion        string `envconfig:"AWS_REGION" default:"us-east-1"`
	AWSLookupEnabled bool   `envconfig:"AWS_LOOKUP_ENABLED" default:"false"`

	DefaultLanguage string `envconfig:"DEFAULT_LANGUAGE" default:"en"`
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// Language returns the configured default language
func (c Config) Language() models.Language {
	return models.ParseLanguage(c.DefaultLanguage)
}

// SetupLogging configures the global zerolog logger. An unknown level falls back to info.
func SetupLogging(level, format string, out io.Writer) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if out == nil {
		out = os.Stderr
	}
	if format == "json" {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: out})
}
