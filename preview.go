package mdpreview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"unicode"
)

// ReadyListener is notified once, when the preview becomes ready.
type ReadyListener func()

// Preview drives one document through conversion and onto a surface.
type Preview struct {
	doc     Document
	surface Surface
	chain   *Chain
	themes  *ThemeResolver
	flavor  Flavor
	logger  *slog.Logger
	metrics *Metrics

	loading atomic.Bool
	closed  atomic.Bool

	mu           sync.Mutex
	ready        bool
	theme        Theme
	loadSeq      int
	printSeq     int
	showingError bool
	errorShown   bool
	listeners    []ReadyListener
	done         chan struct{}
	loadErr      error
}

// PreviewOption configures a Preview.
type PreviewOption func(*Preview)

// WithThemeResolver replaces the default gsettings resolver.
func WithThemeResolver(r *ThemeResolver) PreviewOption {
	return func(p *Preview) { p.themes = r }
}

// WithFlavor skips filename detection.
func WithFlavor(f Flavor) PreviewOption {
	return func(p *Preview) { p.flavor = f }
}

// WithPreviewLogger sets the logger for lifecycle events.
func WithPreviewLogger(l *slog.Logger) PreviewOption {
	return func(p *Preview) { p.logger = l }
}

// WithPreviewMetrics records load and print outcomes.
func WithPreviewMetrics(m *Metrics) PreviewOption {
	return func(p *Preview) { p.metrics = m }
}

// NewPreview creates a preview of doc on surface. If the surface reports
// load events, the preview registers itself as its listener.
func NewPreview(doc Document, surface Surface, chain *Chain, opts ...PreviewOption) *Preview {
	p := &Preview{
		doc:     doc,
		surface: surface,
		chain:   chain,
		theme:   ThemeLight,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.chain == nil {
		p.chain = NewChain()
	}
	if p.themes == nil {
		p.themes = NewThemeResolver(WithThemeLogger(p.logger))
	}
	if ls, ok := surface.(ListenerSetter); ok {
		ls.SetLoadListener(p)
	}
	return p
}

// Ready reports whether a page finished loading. It never reverts.
func (p *Preview) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// Fullscreen is always false.
func (p *Preview) Fullscreen() bool { return false }

// MoveOnClick is always false: clicks select text.
func (p *Preview) MoveOnClick() bool { return false }

// Theme returns the theme resolved by the last load.
func (p *Preview) Theme() Theme {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.theme
}

// AddReadyListener registers fn for the ready transition. If the preview is
// already ready, fn runs immediately.
func (p *Preview) AddReadyListener(fn ReadyListener) {
	p.mu.Lock()
	if p.ready {
		p.mu.Unlock()
		fn()
		return
	}
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}

// Load resolves theme and flavor, then converts asynchronously and renders
// the result. Use Wait to block until the page is on the surface.
func (p *Preview) Load(ctx context.Context) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if !p.loading.CompareAndSwap(false, true) {
		return ErrLoadInProgress
	}

	theme := p.themes.Resolve(ctx)
	flavor := p.flavor
	if flavor == "" {
		flavor = DetectFlavor(p.doc.Basename())
	}

	done := make(chan struct{})
	p.mu.Lock()
	p.theme = theme
	p.errorShown = false
	p.done = done
	p.loadErr = nil
	p.mu.Unlock()

	logger(p.logger).Debug("loading preview", "path", p.doc.Path(), "theme", string(theme), "flavor", string(flavor))

	req := Request{Path: p.doc.Path(), Theme: theme, Flavor: flavor, Source: p.doc.ReadAll}
	err := p.chain.convertAsync(ctx, req, func(res *Result, err error) {
		p.finishConversion(ctx, res, err)
	}, func() {
		p.loading.Store(false)
		close(done)
	})
	if err != nil {
		p.loading.Store(false)
		close(done)
		return err
	}
	return nil
}

// Wait blocks until the current load has rendered. It returns the
// conversion or load error even when an error page was shown instead.
func (p *Preview) Wait(ctx context.Context) error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loadErr
}

// finishConversion renders a chain result, or the error page.
func (p *Preview) finishConversion(ctx context.Context, res *Result, err error) {
	if p.closed.Load() {
		p.setLoadErr(ErrClosed)
		return
	}
	log := logger(p.logger)

	if err != nil {
		p.setLoadErr(err)
		if ctx.Err() != nil {
			log.Debug("conversion canceled", "path", p.doc.Path(), "error", err)
			p.metrics.observeLoad("canceled")
			return
		}
		log.Error("conversion failed", "path", p.doc.Path(), "error", err)
		_ = p.RenderError(ctx, err.Error())
		return
	}

	log.Info("converted", "path", p.doc.Path(), "stage", res.Stage.String(), "duration", res.Duration)
	_ = p.Render(ctx, res.HTML)
}

// Render hands html to the surface with the document URI as base.
// A surface error is routed to OnLoadFailed and returned.
func (p *Preview) Render(ctx context.Context, html string) error {
	return p.render(ctx, html, false)
}

// RenderError shows the error page for msg.
func (p *Preview) RenderError(ctx context.Context, msg string) error {
	p.mu.Lock()
	theme := p.theme
	p.mu.Unlock()
	return p.render(ctx, ErrorDocument(theme, msg), true)
}

func (p *Preview) render(ctx context.Context, html string, isErrorPage bool) error {
	if p.closed.Load() {
		return ErrClosed
	}

	p.mu.Lock()
	p.loadSeq++
	p.showingError = isErrorPage
	if isErrorPage {
		p.errorShown = true
	}
	p.mu.Unlock()

	if err := p.surface.LoadHTML(ctx, html, p.doc.URI()); err != nil {
		loadErr := fmt.Errorf("%w: %v", ErrLoad, err)
		p.OnLoadFailed(ctx, loadErr)
		return loadErr
	}
	return nil
}

// OnLoadFinished marks the preview ready and injects the print stylesheet,
// once per load.
func (p *Preview) OnLoadFinished(ctx context.Context) {
	p.mu.Lock()
	var notify []ReadyListener
	if !p.ready {
		p.ready = true
		notify = p.listeners
		p.listeners = nil
	}
	inject := p.printSeq != p.loadSeq
	p.printSeq = p.loadSeq
	showingError := p.showingError
	p.mu.Unlock()

	for _, fn := range notify {
		fn()
	}
	if !inject {
		return
	}

	if showingError {
		p.metrics.observeLoad("error_page")
	} else {
		p.metrics.observeLoad("ok")
	}
	if err := p.surface.RunScript(ctx, PrintStyleScript()); err != nil {
		logger(p.logger).Warn("print style injection failed", "path", p.doc.Path(), "error", err)
	}
}

// OnLoadFailed logs the failure and shows the error page, unless the page
// that failed was already an error page or one was already attempted.
func (p *Preview) OnLoadFailed(ctx context.Context, err error) {
	log := logger(p.logger)
	log.Error("preview load failed", "path", p.doc.Path(), "error", err)
	if !errors.Is(err, ErrLoad) {
		err = fmt.Errorf("%w: %v", ErrLoad, err)
	}
	p.setLoadErr(err)
	p.metrics.observeLoad("failed")

	p.mu.Lock()
	retry := !p.showingError && !p.errorShown
	p.mu.Unlock()
	if !retry || p.closed.Load() {
		return
	}
	_ = p.RenderError(ctx, "Failed to load markdown content: "+err.Error())
}

// setLoadErr keeps the first error of the current load.
func (p *Preview) setLoadErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loadErr == nil {
		p.loadErr = err
	}
}

// OnContextMenu returns the preview's context menu entries.
func (p *Preview) OnContextMenu() []MenuItem {
	return []MenuItem{MenuPrint, MenuSeparator, MenuCopy, MenuSelectAll}
}

// OnKeyPress handles Ctrl+P by printing. It returns true when the key was
// consumed.
func (p *Preview) OnKeyPress(ev KeyEvent) bool {
	if ev.Modifiers&ModControl == 0 || unicode.ToLower(ev.Key) != 'p' {
		return false
	}
	if err := p.Print(context.Background()); err != nil {
		logger(p.logger).Error("print failed", "path", p.doc.Path(), "error", err)
	}
	return true
}

// Print opens the surface's print facility, falling back to window.print().
func (p *Preview) Print(ctx context.Context) error {
	if p.closed.Load() {
		return ErrClosed
	}
	err := p.surface.PrintDialog(ctx)
	if err == nil {
		p.metrics.observePrint("dialog")
		return nil
	}

	logger(p.logger).Warn("print dialog failed, using window.print()", "path", p.doc.Path(), "error", err)
	if scriptErr := p.surface.RunScript(ctx, "window.print();"); scriptErr != nil {
		return fmt.Errorf("%w: %v", ErrPrint, errors.Join(err, scriptErr))
	}
	p.metrics.observePrint("script")
	return nil
}

// Close releases the surface. A conversion still running is discarded.
func (p *Preview) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.surface.Close()
}

// Compile-time interface check.
var _ LoadListener = (*Preview)(nil)
