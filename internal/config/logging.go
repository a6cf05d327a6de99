package config

import (
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Logging configures the process logger.
type Logging struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// Optional rotating log file, written in addition to the console
	File       string `envconfig:"LOG_FILE"`
	MaxSizeMB  int    `envconfig:"LOG_MAX_SIZE_MB" default:"50"`
	MaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"5"`
	MaxAgeDays int    `envconfig:"LOG_MAX_AGE_DAYS" default:"14"`
	Compress   bool   `envconfig:"LOG_COMPRESS" default:"true"`
}

func NewLogging(_ *EnvFile) (*Logging, error) {
	var cfg Logging
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	cfg.Level = strings.ToLower(strings.TrimSpace(cfg.Level))
	cfg.File = strings.TrimSpace(cfg.File)

	return &cfg, nil
}
