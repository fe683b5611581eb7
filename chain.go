package mdpreview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/alnah/go-mdpreview/internal/fileutil"
	"github.com/alnah/go-mdpreview/internal/pipeline"
	"github.com/alnah/go-mdpreview/internal/process"
)

// Default converter locations and budget.
const (
	DefaultUserConverter    = "~/.local/bin/sushi-markdown-converter"
	DefaultSystemConverter  = "/usr/local/bin/sushi-markdown-converter"
	DefaultGenericConverter = "pandoc"
	DefaultStageTimeout     = 30 * time.Second
)

// Chain converts a Markdown file to HTML, trying each stage in order until
// one succeeds: user converter, system converter, generic converter, raw view.
type Chain struct {
	runner       process.Runner
	injector     pipeline.StyleInjector
	userPath     string
	systemPath   string
	generic      string
	stageTimeout time.Duration
	logger       *slog.Logger
	metrics      *Metrics
	isExecutable func(string) bool
	pending      atomic.Bool
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithUserConverterPath sets the per-user converter location ("~" expands).
func WithUserConverterPath(path string) ChainOption {
	return func(c *Chain) { c.userPath = fileutil.ExpandHome(path) }
}

// WithSystemConverterPath sets the system-wide converter location.
func WithSystemConverterPath(path string) ChainOption {
	return func(c *Chain) { c.systemPath = fileutil.ExpandHome(path) }
}

// WithGenericConverter sets the pandoc-compatible program, name or path.
func WithGenericConverter(nameOrPath string) ChainOption {
	return func(c *Chain) { c.generic = fileutil.ExpandHome(nameOrPath) }
}

// WithStageTimeout bounds every stage. Panics if d <= 0 (programmer error,
// similar to time.NewTicker).
func WithStageTimeout(d time.Duration) ChainOption {
	if d <= 0 {
		panic("mdpreview: WithStageTimeout duration must be positive")
	}
	return func(c *Chain) { c.stageTimeout = d }
}

// WithLogger sets the logger for stage failures.
func WithLogger(l *slog.Logger) ChainOption {
	return func(c *Chain) { c.logger = l }
}

// WithMetrics records stage outcomes and durations.
func WithMetrics(m *Metrics) ChainOption {
	return func(c *Chain) { c.metrics = m }
}

// WithRunner replaces the process runner.
func WithRunner(r process.Runner) ChainOption {
	return func(c *Chain) { c.runner = r }
}

// withExecutableCheck replaces the converter presence check (tests).
func withExecutableCheck(fn func(string) bool) ChainOption {
	return func(c *Chain) { c.isExecutable = fn }
}

// NewChain creates a Chain with the default converter locations.
func NewChain(opts ...ChainOption) *Chain {
	c := &Chain{
		runner:       &process.ExecRunner{},
		injector:     &pipeline.HeadStyleInjection{},
		userPath:     fileutil.ExpandHome(DefaultUserConverter),
		systemPath:   DefaultSystemConverter,
		generic:      DefaultGenericConverter,
		stageTimeout: DefaultStageTimeout,
		isExecutable: fileutil.IsExecutable,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert runs the chain synchronously. Stage failures are logged and fall
// through; the only terminal errors are a raw-stage read failure (wrapping
// ErrFileRead) and cancellation of ctx.
func (c *Chain) Convert(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Theme != ThemeDark {
		req.Theme = ThemeLight
	}
	log := logger(c.logger).With("path", req.Path, "theme", string(req.Theme), "flavor", string(req.Flavor))

	for _, stage := range []struct {
		stage Stage
		bin   string
	}{
		{StageUser, c.userPath},
		{StageSystem, c.systemPath},
	} {
		if stage.bin == "" || !c.isExecutable(stage.bin) {
			log.Debug("converter not installed", "stage", stage.stage.String(), "bin", stage.bin)
			c.metrics.observeStage(stage.stage, outcomeSkipped, 0)
			continue
		}
		res, err := c.runConverter(ctx, stage.stage, stage.bin, req)
		if err == nil {
			return res, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logStageFailure(log, stage.stage, stage.bin, err)
	}

	res, err := c.runGeneric(ctx, req)
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	c.logStageFailure(log, StageGeneric, c.generic, err)

	return c.runRaw(req)
}

// ConvertAsync runs Convert on a goroutine and calls done exactly once.
// The chain stays pending until done returns, so a second call cannot
// start while the first result is being rendered; it gets
// ErrConversionPending.
func (c *Chain) ConvertAsync(ctx context.Context, req Request, done func(*Result, error)) error {
	return c.convertAsync(ctx, req, done, nil)
}

// convertAsync is ConvertAsync with idle, called once the chain accepts
// new work again.
func (c *Chain) convertAsync(ctx context.Context, req Request, done func(*Result, error), idle func()) error {
	if !c.pending.CompareAndSwap(false, true) {
		return ErrConversionPending
	}
	go func() {
		res, err := c.Convert(ctx, req)
		done(res, err)
		c.pending.Store(false)
		if idle != nil {
			idle()
		}
	}()
	return nil
}

// Pending reports whether an async conversion is running.
func (c *Chain) Pending() bool {
	return c.pending.Load()
}

// runConverter invokes a user or system converter; its stdout is the page.
func (c *Chain) runConverter(ctx context.Context, stage Stage, bin string, req Request) (*Result, error) {
	start := time.Now()
	stageCtx, cancel := context.WithTimeout(ctx, c.stageTimeout)
	defer cancel()

	out, err := c.runner.Run(stageCtx, bin, req.Path, "--theme", string(req.Theme), "--flavor", string(req.Flavor))
	elapsed := time.Since(start)
	if err != nil {
		err = stageError(err, out.Stderr)
		c.metrics.observeStage(stage, outcomeFailed, elapsed)
		return nil, err
	}

	c.metrics.observeStage(stage, outcomeOK, elapsed)
	return &Result{HTML: out.Stdout, Stage: stage, Duration: elapsed}, nil
}

// runGeneric invokes pandoc and injects the base stylesheet.
func (c *Chain) runGeneric(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	stageCtx, cancel := context.WithTimeout(ctx, c.stageTimeout)
	defer cancel()

	out, err := c.runner.Run(stageCtx, c.generic, GenericArgs(req)...)
	elapsed := time.Since(start)
	if err != nil {
		err = stageError(err, out.Stderr)
		c.metrics.observeStage(StageGeneric, outcomeFailed, elapsed)
		return nil, err
	}

	html := c.injector.InjectStyle(ctx, out.Stdout, BaseCSS(req.Theme))
	c.metrics.observeStage(StageGeneric, outcomeOK, elapsed)
	return &Result{HTML: html, Stage: StageGeneric, Duration: elapsed}, nil
}

// runRaw shows the escaped source. A read failure ends the chain.
func (c *Chain) runRaw(req Request) (*Result, error) {
	start := time.Now()
	read := req.Source
	if read == nil {
		read = func() ([]byte, error) {
			return os.ReadFile(req.Path) // #nosec G304 -- previewing a user-chosen file
		}
	}
	data, err := read()
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.observeStage(StageRaw, outcomeFailed, elapsed)
		if errors.Is(err, ErrFileRead) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrFileRead, err)
	}
	c.metrics.observeStage(StageRaw, outcomeOK, elapsed)
	return &Result{HTML: RawDocument(req.Theme, string(data)), Stage: StageRaw, Duration: elapsed}, nil
}

// GenericArgs returns the pandoc argv (without the program name).
func GenericArgs(req Request) []string {
	style := "pygments"
	if req.Theme == ThemeDark {
		style = "zenburn"
	}
	return []string{
		req.Path,
		"-f", "gfm",
		"-t", "html5",
		"--standalone",
		"--highlight-style=" + style,
		"--mathjax",
	}
}

// StageError carries the stderr of a failed converter.
type StageError struct {
	Err    error
	Stderr string
}

func (e *StageError) Error() string { return e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// stageError maps process errors onto the stage sentinels.
// A timeout wraps both ErrSpawn and context.DeadlineExceeded.
func stageError(err error, stderr string) error {
	var mapped error
	switch {
	case errors.Is(err, process.ErrNotFound):
		mapped = fmt.Errorf("%w: %v", ErrBinaryNotFound, err)
	case errors.Is(err, process.ErrExit):
		mapped = fmt.Errorf("%w: %v", ErrProcessExit, err)
	case errors.Is(err, process.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		mapped = fmt.Errorf("%w: %w", ErrSpawn, context.DeadlineExceeded)
	default:
		mapped = fmt.Errorf("%w: %v", ErrSpawn, err)
	}
	return &StageError{Err: mapped, Stderr: stderr}
}

func (c *Chain) logStageFailure(log *slog.Logger, stage Stage, bin string, err error) {
	var stderr string
	var se *StageError
	if errors.As(err, &se) {
		stderr = se.Stderr
	}
	log.Warn("conversion stage failed",
		"stage", stage.String(),
		"bin", bin,
		"error", err,
		"stderr", stderr,
	)
}
