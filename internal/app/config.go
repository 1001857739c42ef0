package app

import (
	"errors"
	"fmt"

	"github.com/vk/pipesgo/internal/document"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	StatePath  string // state document holding the `pipes` plan
	OutputPath string // where the final state is written; empty writes nothing

	DryRun    bool
	KeepGoing bool
	List      bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.StatePath == "" && !cfg.List {
		return nil, errors.New("StatePath is a required configuration field and cannot be empty")
	}
	if cfg.StatePath != "" {
		if _, _, err := document.FormatFromPath(cfg.StatePath); err != nil {
			return nil, fmt.Errorf("invalid state file: %w", err)
		}
	}
	if cfg.OutputPath != "" {
		if _, _, err := document.FormatFromPath(cfg.OutputPath); err != nil {
			return nil, fmt.Errorf("invalid output file: %w", err)
		}
	}
	return &cfg, nil
}
