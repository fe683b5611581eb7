package main

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alnah/go-mdpreview/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides desktop- and CI-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // MDPREVIEW_CONFIG: config file path
	Theme      string        // MDPREVIEW_THEME: auto, light, dark
	Timeout    time.Duration // MDPREVIEW_TIMEOUT: per-stage timeout
	Converter  string        // MDPREVIEW_CONVERTER: user converter path
	Generic    string        // MDPREVIEW_GENERIC: pandoc-compatible program
}

// knownEnvVars lists valid MDPREVIEW_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MDPREVIEW_CONFIG":    true,
	"MDPREVIEW_THEME":     true,
	"MDPREVIEW_TIMEOUT":   true,
	"MDPREVIEW_CONVERTER": true,
	"MDPREVIEW_GENERIC":   true,
	"MDPREVIEW_CONTAINER": true,
}

// loadEnvConfig reads configuration from environment variables.
// An unparsable or non-positive MDPREVIEW_TIMEOUT is ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("MDPREVIEW_CONFIG"),
		Theme:      os.Getenv("MDPREVIEW_THEME"),
		Converter:  os.Getenv("MDPREVIEW_CONVERTER"),
		Generic:    os.Getenv("MDPREVIEW_GENERIC"),
	}

	if timeout := os.Getenv("MDPREVIEW_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MDPREVIEW_* variables.
func warnUnknownEnvVars(logger *slog.Logger) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "MDPREVIEW_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				logger.Warn("unknown environment variable (typo?)", "name", name)
			}
		}
	}
}

// applyEnvConfig overrides file values with set environment variables.
// Flags are applied afterwards, giving: flags > env > file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Theme != "" {
		cfg.Theme.Mode = strings.ToLower(env.Theme)
	}
	if env.Timeout > 0 {
		cfg.Timeouts.Stage = env.Timeout.String()
	}
	if env.Converter != "" {
		cfg.Converters.User = env.Converter
	}
	if env.Generic != "" {
		cfg.Converters.Generic = env.Generic
	}
}
