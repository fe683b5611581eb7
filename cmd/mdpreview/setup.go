package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	mdpreview "github.com/alnah/go-mdpreview"
	"github.com/alnah/go-mdpreview/internal/config"
	"github.com/alnah/go-mdpreview/internal/hints"
)

// defaultConfigName is searched when neither --config nor MDPREVIEW_CONFIG is set.
const defaultConfigName = "mdpreview"

// app bundles what every preview command needs.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	env     *Environment
	flavor  mdpreview.Flavor
	metrics *mdpreview.Metrics
}

// newApp resolves configuration and logging for a command.
func newApp(f *cliFlags, env *Environment) (*app, error) {
	logger := newLogger(env.Stderr, f.common.quiet, f.common.verbose)
	warnUnknownEnvVars(logger)

	cfg, err := resolveConfig(f, loadEnvConfig())
	if err != nil {
		return nil, err
	}

	flavor, err := parseFlavorFlag(f.preview.flavor)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, env: env, flavor: flavor}, nil
}

// newLogger builds the CLI text logger on w.
func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// resolveConfig applies flags > env > file > defaults.
// A missing default config file is not an error; an explicit one is.
func resolveConfig(f *cliFlags, env *envConfig) (*config.Config, error) {
	path := f.common.config
	if path == "" {
		path = env.ConfigPath
	}

	var cfg *config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchPaths(path)))
			}
			return nil, err
		}
		cfg = loaded
	} else {
		loaded, err := config.LoadConfig(defaultConfigName)
		switch {
		case err == nil:
			cfg = loaded
		case errors.Is(err, config.ErrConfigNotFound):
			cfg = config.DefaultConfig()
		default:
			return nil, err
		}
	}

	applyEnvConfig(env, cfg)
	if err := mergeFlags(f, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFlags writes explicitly set flags over cfg.
func mergeFlags(f *cliFlags, cfg *config.Config) error {
	if f.preview.theme != "" {
		mode := strings.ToLower(f.preview.theme)
		switch mode {
		case config.ThemeAuto, config.ThemeLight, config.ThemeDark:
			cfg.Theme.Mode = mode
		default:
			return fmt.Errorf("%w: %q (must be auto, light, or dark)", ErrInvalidTheme, f.preview.theme)
		}
	}
	if f.preview.timeout != "" {
		d, err := time.ParseDuration(f.preview.timeout)
		if err != nil || d <= 0 {
			return usageError(fmt.Sprintf("--timeout %q must be a positive duration", f.preview.timeout))
		}
		cfg.Timeouts.Stage = d.String()
	}
	if f.addr != "" {
		cfg.Serve.Addr = f.addr
	}
	return nil
}

// parseFlavorFlag validates --flavor. Empty means detect from the file name.
func parseFlavorFlag(s string) (mdpreview.Flavor, error) {
	switch fl := mdpreview.Flavor(strings.ToLower(s)); fl {
	case "", mdpreview.FlavorGFM, mdpreview.FlavorGitLab, mdpreview.FlavorMMD:
		return fl, nil
	}
	return "", fmt.Errorf("%w: %q (must be gfm, gitlab, or mmd)", ErrInvalidFlavor, s)
}

// chain builds the converter chain from configuration.
func (a *app) chain() *mdpreview.Chain {
	opts := []mdpreview.ChainOption{
		mdpreview.WithUserConverterPath(a.cfg.Converters.User),
		mdpreview.WithSystemConverterPath(a.cfg.Converters.System),
		mdpreview.WithGenericConverter(a.cfg.Converters.Generic),
		mdpreview.WithStageTimeout(a.cfg.StageTimeout()),
		mdpreview.WithLogger(a.logger),
		mdpreview.WithMetrics(a.metrics),
	}
	if a.env.Runner != nil {
		opts = append(opts, mdpreview.WithRunner(a.env.Runner))
	}
	return mdpreview.NewChain(opts...)
}

// themes builds the theme resolver; light and dark modes skip the query.
func (a *app) themes() *mdpreview.ThemeResolver {
	opts := []mdpreview.ThemeOption{
		mdpreview.WithThemeQuery(a.cfg.Theme.Query),
		mdpreview.WithThemeTimeout(a.cfg.ThemeQueryTimeout()),
		mdpreview.WithThemeLogger(a.logger),
	}
	if theme, ok := mdpreview.ParseTheme(a.cfg.Theme.Mode); ok {
		opts = append(opts, mdpreview.WithThemeOverride(theme))
	}
	if a.env.Runner != nil {
		opts = append(opts, mdpreview.WithThemeRunner(a.env.Runner))
	}
	return mdpreview.NewThemeResolver(opts...)
}

// previewOptions returns the options shared by print and serve previews.
func (a *app) previewOptions() []mdpreview.PreviewOption {
	opts := []mdpreview.PreviewOption{
		mdpreview.WithThemeResolver(a.themes()),
		mdpreview.WithPreviewLogger(a.logger),
		mdpreview.WithPreviewMetrics(a.metrics),
	}
	if a.flavor != "" {
		opts = append(opts, mdpreview.WithFlavor(a.flavor))
	}
	return opts
}

// initBrowser applies the process-wide sandbox setting once.
func (a *app) initBrowser() {
	mdpreview.Init(mdpreview.InitOptions{DisableSandbox: a.cfg.Browser.NoSandbox})
}

// singleFile validates that exactly one markdown file was given.
func singleFile(command string, args []string) (string, error) {
	if len(args) != 1 {
		return "", usageError(fmt.Sprintf("%s requires exactly one markdown file", command))
	}
	return args[0], nil
}

// withHints appends actionable hints to known error kinds.
func (a *app) withHints(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mdpreview.ErrBrowserConnect):
		return fmt.Errorf("%w%s", err, hints.ForBrowserConnect())
	case errors.Is(err, mdpreview.ErrFileRead):
		return fmt.Errorf("%w%s", err, hints.ForFileRead())
	case errors.Is(err, mdpreview.ErrSpawn):
		return fmt.Errorf("%w%s", err, hints.ForTimeout())
	}
	return err
}
