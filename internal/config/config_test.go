package config

// Notes:
// - Tests that call LoadConfig by name chdir or set HOME/XDG_CONFIG_HOME and
//   cannot run in parallel.
// - DefaultConfig expands "~" using the real home directory; assertions only
//   check that the prefix was replaced.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestDefaultConfig - Defaults match the previewer plugin locations
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if strings.HasPrefix(cfg.Converters.User, "~") {
		t.Errorf("Converters.User = %q, want ~ expanded", cfg.Converters.User)
	}
	if !strings.HasSuffix(cfg.Converters.User, filepath.Join(".local", "bin", "sushi-markdown-converter")) {
		t.Errorf("Converters.User = %q, want ~/.local/bin/sushi-markdown-converter", cfg.Converters.User)
	}
	if cfg.Converters.System != DefaultSystemConverter {
		t.Errorf("Converters.System = %q, want %q", cfg.Converters.System, DefaultSystemConverter)
	}
	if cfg.Converters.Generic != "pandoc" {
		t.Errorf("Converters.Generic = %q, want pandoc", cfg.Converters.Generic)
	}
	if cfg.Theme.Mode != ThemeAuto {
		t.Errorf("Theme.Mode = %q, want auto", cfg.Theme.Mode)
	}
	if strings.Join(cfg.Theme.Query, " ") != "gsettings get org.gnome.desktop.interface gtk-theme" {
		t.Errorf("Theme.Query = %v", cfg.Theme.Query)
	}
	if cfg.StageTimeout() != DefaultStageTimeout {
		t.Errorf("StageTimeout() = %v, want %v", cfg.StageTimeout(), DefaultStageTimeout)
	}
	if cfg.ThemeQueryTimeout() != DefaultThemeTimeout {
		t.Errorf("ThemeQueryTimeout() = %v, want %v", cfg.ThemeQueryTimeout(), DefaultThemeTimeout)
	}
	if cfg.Browser.NoSandbox {
		t.Error("Browser.NoSandbox = true, want sandbox enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestDefaultConfig_QueryNotShared(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Theme.Query[0] = "changed"
	if DefaultThemeQuery[0] != "gsettings" {
		t.Error("DefaultConfig must copy DefaultThemeQuery")
	}
}

// ---------------------------------------------------------------------------
// TestValidate - Enumerations, durations and lengths
// ---------------------------------------------------------------------------

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "dark mode", mutate: func(c *Config) { c.Theme.Mode = "dark" }},
		{name: "mode is case-insensitive", mutate: func(c *Config) { c.Theme.Mode = "LIGHT" }},
		{name: "unknown mode", mutate: func(c *Config) { c.Theme.Mode = "sepia" }, wantErr: ErrInvalidValue},
		{name: "bad stage duration", mutate: func(c *Config) { c.Timeouts.Stage = "soon" }, wantErr: ErrInvalidValue},
		{name: "negative load duration", mutate: func(c *Config) { c.Timeouts.Load = "-1s" }, wantErr: ErrInvalidValue},
		{name: "empty duration uses default", mutate: func(c *Config) { c.Timeouts.ThemeQuery = "" }},
		{name: "path too long", mutate: func(c *Config) { c.Converters.Generic = strings.Repeat("a", MaxPathLength+1) }, wantErr: ErrFieldTooLong},
		{name: "query too long", mutate: func(c *Config) { c.Theme.Query = make([]string, MaxQueryLength+1) }, wantErr: ErrFieldTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTimeoutAccessors_Fallback(t *testing.T) {
	t.Parallel()

	cfg := &Config{Timeouts: TimeoutsConfig{Stage: "5s", ThemeQuery: "garbage", Load: ""}}
	if got := cfg.StageTimeout(); got != 5*time.Second {
		t.Errorf("StageTimeout() = %v, want 5s", got)
	}
	if got := cfg.ThemeQueryTimeout(); got != DefaultThemeTimeout {
		t.Errorf("ThemeQueryTimeout() = %v, want default", got)
	}
	if got := cfg.LoadTimeout(); got != DefaultLoadTimeout {
		t.Errorf("LoadTimeout() = %v, want default", got)
	}
}

// ---------------------------------------------------------------------------
// TestLoadConfig - File loading, merging onto defaults
// ---------------------------------------------------------------------------

func TestLoadConfig_FromPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "mdpreview.yaml")
	content := `converters:
  generic: /opt/pandoc/bin/pandoc
theme:
  mode: dark
timeouts:
  stage: 10s
browser:
  noSandbox: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Converters.Generic != "/opt/pandoc/bin/pandoc" {
		t.Errorf("Converters.Generic = %q", cfg.Converters.Generic)
	}
	if cfg.Converters.System != DefaultSystemConverter {
		t.Errorf("Converters.System = %q, want default kept", cfg.Converters.System)
	}
	if cfg.Theme.Mode != ThemeDark {
		t.Errorf("Theme.Mode = %q, want dark", cfg.Theme.Mode)
	}
	if len(cfg.Theme.Query) == 0 {
		t.Error("Theme.Query should keep its default when absent from the file")
	}
	if cfg.StageTimeout() != 10*time.Second {
		t.Errorf("StageTimeout() = %v, want 10s", cfg.StageTimeout())
	}
	if !cfg.Browser.NoSandbox {
		t.Error("Browser.NoSandbox = false, want true")
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	unknown := filepath.Join(dir, "unknown.yaml")
	if err := os.WriteFile(unknown, []byte("themes:\n  mode: dark\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("theme:\n  mode: sepia\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "empty name", input: "", wantErr: ErrEmptyConfigName},
		{name: "missing path", input: filepath.Join(dir, "missing.yaml"), wantErr: ErrConfigNotFound},
		{name: "unknown key", input: unknown, wantErr: ErrConfigParse},
		{name: "invalid value", input: invalid, wantErr: ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadConfig(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadConfig(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

// NOTE: This test changes the working directory and cannot run in parallel.
func TestLoadConfig_ByNameInCurrentDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	if err := os.WriteFile("mdpreview.yml", []byte("serve:\n  addr: 0.0.0.0:9000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig("mdpreview")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Serve.Addr != "0.0.0.0:9000" {
		t.Errorf("Serve.Addr = %q, want 0.0.0.0:9000", cfg.Serve.Addr)
	}
}

// NOTE: This test changes the working directory and cannot run in parallel.
func TestLoadConfig_ByNameNotFound(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	_, err := LoadConfig("mdpreview")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("error = %v, want ErrConfigNotFound", err)
	}
	if !strings.Contains(err.Error(), "mdpreview.yaml") {
		t.Errorf("error should list tried paths, got %q", err.Error())
	}
}
