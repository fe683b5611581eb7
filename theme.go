package mdpreview

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/alnah/go-mdpreview/internal/process"
)

// DefaultThemeQuery asks GNOME for the GTK theme name.
var DefaultThemeQuery = []string{"gsettings", "get", "org.gnome.desktop.interface", "gtk-theme"}

// DefaultThemeTimeout bounds the theme query.
const DefaultThemeTimeout = 2 * time.Second

// ThemeResolver decides between the light and dark palette.
type ThemeResolver struct {
	runner   process.Runner
	query    []string
	timeout  time.Duration
	override Theme
	logger   *slog.Logger
}

// ThemeOption configures a ThemeResolver.
type ThemeOption func(*ThemeResolver)

// WithThemeOverride skips the query and always returns t.
// An empty theme keeps the query.
func WithThemeOverride(t Theme) ThemeOption {
	return func(r *ThemeResolver) { r.override = t }
}

// WithThemeQuery replaces the query argv. Ignored when empty.
func WithThemeQuery(argv []string) ThemeOption {
	return func(r *ThemeResolver) {
		if len(argv) > 0 {
			r.query = append([]string(nil), argv...)
		}
	}
}

// WithThemeTimeout sets the query budget. Ignored when not positive.
func WithThemeTimeout(d time.Duration) ThemeOption {
	return func(r *ThemeResolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithThemeRunner sets the command runner.
func WithThemeRunner(runner process.Runner) ThemeOption {
	return func(r *ThemeResolver) { r.runner = runner }
}

// WithThemeLogger sets the logger for query failures.
func WithThemeLogger(l *slog.Logger) ThemeOption {
	return func(r *ThemeResolver) { r.logger = l }
}

// NewThemeResolver creates a resolver that queries gsettings.
func NewThemeResolver(opts ...ThemeOption) *ThemeResolver {
	r := &ThemeResolver{
		runner:  &process.ExecRunner{},
		query:   DefaultThemeQuery,
		timeout: DefaultThemeTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns dark when the desktop theme name contains "dark" and light
// otherwise. Query failures are logged at debug level and yield light.
func (r *ThemeResolver) Resolve(ctx context.Context) Theme {
	if r.override != "" {
		return r.override
	}

	log := logger(r.logger)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := r.runner.Run(ctx, r.query[0], r.query[1:]...)
	if err != nil {
		log.Debug("theme query failed", "bin", r.query[0], "error", err, "stderr", out.Stderr)
		return ThemeLight
	}
	return ParseThemeName(out.Stdout)
}

// ParseThemeName classifies a raw theme name as printed by gsettings.
func ParseThemeName(raw string) Theme {
	name := strings.ToLower(strings.Trim(strings.TrimSpace(raw), `'"`))
	if strings.Contains(name, "dark") {
		return ThemeDark
	}
	return ThemeLight
}
