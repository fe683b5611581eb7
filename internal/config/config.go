// Package config loads mdpreview.yaml: converter locations, theme policy,
// per-stage timeouts, browser and preview-server settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-mdpreview/internal/fileutil"
	"github.com/alnah/go-mdpreview/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Theme modes.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Defaults mirror the locations the GNOME previewer plugin looks at.
const (
	DefaultUserConverter    = "~/.local/bin/sushi-markdown-converter"
	DefaultSystemConverter  = "/usr/local/bin/sushi-markdown-converter"
	DefaultGenericConverter = "pandoc"
	DefaultStageTimeout     = 30 * time.Second
	DefaultThemeTimeout     = 2 * time.Second
	DefaultLoadTimeout      = 30 * time.Second
	DefaultServeAddr        = "127.0.0.1:8089"
)

// DefaultThemeQuery is the desktop settings lookup for the GTK theme name.
var DefaultThemeQuery = []string{"gsettings", "get", "org.gnome.desktop.interface", "gtk-theme"}

// Field length limits.
const (
	MaxPathLength  = 4096
	MaxAddrLength  = 255
	MaxQueryLength = 16 // argv entries
)

// Config holds all configuration for the previewer.
type Config struct {
	Converters ConvertersConfig `yaml:"converters"`
	Theme      ThemeConfig      `yaml:"theme"`
	Timeouts   TimeoutsConfig   `yaml:"timeouts"`
	Browser    BrowserConfig    `yaml:"browser"`
	Serve      ServeConfig      `yaml:"serve"`
}

// ConvertersConfig locates the external converter programs.
type ConvertersConfig struct {
	User    string `yaml:"user"`    // user-installed converter (~ expanded)
	System  string `yaml:"system"`  // system-installed converter
	Generic string `yaml:"generic"` // pandoc-compatible tool, name or path
}

// ThemeConfig selects the light/dark palette.
type ThemeConfig struct {
	Mode  string   `yaml:"mode"`  // "auto", "light", "dark"
	Query []string `yaml:"query"` // argv of the desktop theme query (auto mode)
}

// TimeoutsConfig bounds every external wait. Values are Go durations.
type TimeoutsConfig struct {
	Stage      string `yaml:"stage"`
	ThemeQuery string `yaml:"themeQuery"`
	Load       string `yaml:"load"`
}

// BrowserConfig configures the headless Chrome surface.
type BrowserConfig struct {
	Bin       string `yaml:"bin"`       // empty = ROD_BROWSER_BIN or auto-detect
	NoSandbox bool   `yaml:"noSandbox"` // sandbox stays on unless set
}

// ServeConfig configures the live preview server.
type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	cfg := &Config{
		Converters: ConvertersConfig{
			User:    DefaultUserConverter,
			System:  DefaultSystemConverter,
			Generic: DefaultGenericConverter,
		},
		Theme: ThemeConfig{
			Mode:  ThemeAuto,
			Query: append([]string(nil), DefaultThemeQuery...),
		},
		Timeouts: TimeoutsConfig{
			Stage:      DefaultStageTimeout.String(),
			ThemeQuery: DefaultThemeTimeout.String(),
			Load:       DefaultLoadTimeout.String(),
		},
		Serve: ServeConfig{Addr: DefaultServeAddr},
	}
	cfg.expandPaths()
	return cfg
}

// StageTimeout returns the per-stage converter budget.
func (c *Config) StageTimeout() time.Duration {
	return parseDurationOr(c.Timeouts.Stage, DefaultStageTimeout)
}

// ThemeQueryTimeout returns the budget of the desktop theme query.
func (c *Config) ThemeQueryTimeout() time.Duration {
	return parseDurationOr(c.Timeouts.ThemeQuery, DefaultThemeTimeout)
}

// LoadTimeout returns the browser page-load budget.
func (c *Config) LoadTimeout() time.Duration {
	return parseDurationOr(c.Timeouts.Load, DefaultLoadTimeout)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Validate checks enumerations, durations, and field lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Theme.Mode) {
	case "", ThemeAuto, ThemeLight, ThemeDark:
	default:
		return fmt.Errorf("%w: theme.mode %q (must be auto, light, or dark)", ErrInvalidValue, c.Theme.Mode)
	}
	if len(c.Theme.Query) > MaxQueryLength {
		return fmt.Errorf("%w: theme.query (%d args, max %d)", ErrFieldTooLong, len(c.Theme.Query), MaxQueryLength)
	}

	for _, f := range []struct{ name, value string }{
		{"timeouts.stage", c.Timeouts.Stage},
		{"timeouts.themeQuery", c.Timeouts.ThemeQuery},
		{"timeouts.load", c.Timeouts.Load},
	} {
		if f.value == "" {
			continue
		}
		d, err := time.ParseDuration(f.value)
		if err != nil {
			return fmt.Errorf("%w: %s %q: %v", ErrInvalidValue, f.name, f.value, err)
		}
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidValue, f.name, f.value)
		}
	}

	for _, f := range []struct {
		name, value string
		max         int
	}{
		{"converters.user", c.Converters.User, MaxPathLength},
		{"converters.system", c.Converters.System, MaxPathLength},
		{"converters.generic", c.Converters.Generic, MaxPathLength},
		{"browser.bin", c.Browser.Bin, MaxPathLength},
		{"serve.addr", c.Serve.Addr, MaxAddrLength},
	} {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// expandPaths resolves "~" in converter and browser paths.
func (c *Config) expandPaths() {
	c.Converters.User = fileutil.ExpandHome(c.Converters.User)
	c.Converters.System = fileutil.ExpandHome(c.Converters.System)
	c.Converters.Generic = fileutil.ExpandHome(c.Converters.Generic)
	c.Browser.Bin = fileutil.ExpandHome(c.Browser.Bin)
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Keys absent from the file keep their defaults.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	f, err := os.Open(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg := DefaultConfig()
	if err := yamlutil.DecodeStrict(f, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists the locations tried for a config name, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "go-mdpreview", name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations:
// current directory first, then the user config directory.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
