package app

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath    string // pipeline .hcl file
	WorkspacePath string // directory holding *.module.json files
	Runtimes      []string

	LogFormat     string
	LogLevel      string
	ReportURL     string
	SaveWorkspace bool
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	var errs []error
	if cfg.ConfigPath == "" {
		errs = append(errs, errors.New("ConfigPath is a required configuration field and cannot be empty"))
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat))
	}
	for _, rt := range cfg.Runtimes {
		if strings.TrimSpace(rt) == "" {
			errs = append(errs, errors.New("runtime names must not be empty"))
			break
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	cfg.Runtimes = append([]string(nil), cfg.Runtimes...)
	return &cfg, nil
}
