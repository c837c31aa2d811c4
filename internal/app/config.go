package app

import (
	"errors"
	"fmt"

	"github.com/vk/gbtgo/internal/snapshot"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	SnapshotPaths []string // record files or directories
	ConfigPath    string   // hcl file or directory

	OutputPath   string // empty writes to the app's output writer
	OutputFormat string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	MaxBlocks       int // 0 keeps the configured value
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.SnapshotPaths) == 0 && cfg.ConfigPath == "" {
		return nil, errors.New("at least one snapshot path or a config path is required")
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = string(snapshot.FormatJSON)
	}
	format, err := snapshot.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return nil, fmt.Errorf("invalid output format: %w", err)
	}
	cfg.OutputFormat = string(format)
	if cfg.MaxBlocks < 0 {
		return nil, fmt.Errorf("max-blocks must not be negative, got %d", cfg.MaxBlocks)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("healthcheck-port out of range: %d", cfg.HealthcheckPort)
	}
	return &cfg, nil
}
