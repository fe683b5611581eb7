package mdpreview

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-mdpreview/internal/fileutil"
	"github.com/alnah/go-mdpreview/internal/hints"
	"github.com/alnah/go-mdpreview/internal/pipeline"
)

// DefaultLoadTimeout bounds a page load on the Rod surface.
const DefaultLoadTimeout = 30 * time.Second

// RodSurface displays previews in headless Chrome driven by go-rod.
// Chrome is launched on the first load. Printing writes a PDF.
type RodSurface struct {
	bin       string
	noSandbox bool
	pdfPath   string
	timeout   time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	launch   *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	cleanup  func()
	listener LoadListener
	closed   bool
}

// RodOption configures a RodSurface.
type RodOption func(*RodSurface)

// WithPDFOutput sets the file PrintDialog writes to.
func WithPDFOutput(path string) RodOption {
	return func(s *RodSurface) { s.pdfPath = path }
}

// WithBrowserBin uses a pre-installed Chrome instead of the rod download.
func WithBrowserBin(path string) RodOption {
	return func(s *RodSurface) { s.bin = path }
}

// WithNoSandbox disables the Chrome sandbox for this surface.
func WithNoSandbox(v bool) RodOption {
	return func(s *RodSurface) { s.noSandbox = v }
}

// WithLoadTimeout bounds each page load. Panics if d <= 0.
func WithLoadTimeout(d time.Duration) RodOption {
	if d <= 0 {
		panic("mdpreview: load timeout must be positive")
	}
	return func(s *RodSurface) { s.timeout = d }
}

// WithRodLogger sets the surface logger.
func WithRodLogger(l *slog.Logger) RodOption {
	return func(s *RodSurface) { s.logger = l }
}

// NewRodSurface creates a surface. No browser is started until LoadHTML.
func NewRodSurface(opts ...RodOption) *RodSurface {
	s := &RodSurface{timeout: DefaultLoadTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetLoadListener attaches the receiver of load events.
func (s *RodSurface) SetLoadListener(l LoadListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

// ensureBrowser lazily launches and connects to Chrome. Caller holds s.mu.
func (s *RodSurface) ensureBrowser() error {
	if s.browser != nil {
		return nil
	}

	l := launcher.New()

	bin := s.bin
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		l = l.Bin(bin)
	}

	if s.sandboxOff(bin) {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	s.launch = l
	s.browser = browser
	return nil
}

// sandboxOff reports whether Chrome must run without its sandbox: when Init
// disabled it, when configured, or in CI and container environments.
func (s *RodSurface) sandboxOff(bin string) bool {
	return s.noSandbox ||
		!SandboxEnabled() ||
		os.Getenv("CI") == "true" ||
		bin != "" ||
		hints.IsInContainer()
}

// LoadHTML writes html to a temporary file with a <base> pointing at
// baseURI, navigates to it and waits for the load event.
func (s *RodSurface) LoadHTML(ctx context.Context, html, baseURI string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := pipeline.InjectBaseHref(html, baseURI)
	if err != nil {
		doc = html
	}

	path, cleanup, err := fileutil.WriteTempFile(doc, "html")
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cleanup()
		return ErrClosed
	}
	err = s.navigate(ctx, fileutil.PathToFileURL(path))
	if err != nil {
		s.mu.Unlock()
		cleanup()
		return err
	}
	if s.cleanup != nil {
		s.cleanup()
	}
	s.cleanup = cleanup
	listener := s.listener
	s.mu.Unlock()

	logger(s.logger).Debug("page loaded", "path", path)
	if listener != nil {
		listener.OnLoadFinished(ctx)
	}
	return nil
}

// navigate opens url in the preview page and waits for it. Caller holds s.mu.
func (s *RodSurface) navigate(ctx context.Context, url string) error {
	if err := s.ensureBrowser(); err != nil {
		return err
	}

	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return context.DeadlineExceeded
		}
	}

	if s.page == nil {
		page, err := s.browser.Page(proto.TargetCreateTarget{URL: url})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPageCreate, err)
		}
		s.page = page
	} else if err := s.page.Context(ctx).Navigate(url); err != nil {
		return fmt.Errorf("%w: %v", ErrLoad, err)
	}

	if err := s.page.Context(ctx).Timeout(timeout).WaitLoad(); err != nil {
		return fmt.Errorf("%w: %v", ErrLoad, err)
	}
	return ctx.Err()
}

// RunScript evaluates js in the current page.
func (s *RodSurface) RunScript(ctx context.Context, js string) error {
	s.mu.Lock()
	page, closed := s.page, s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if page == nil {
		return fmt.Errorf("%w: no page loaded", ErrLoad)
	}

	res, err := proto.RuntimeEvaluate{Expression: js}.Call(page.Context(ctx))
	if err != nil {
		return err
	}
	if res.ExceptionDetails != nil {
		return fmt.Errorf("script exception: %s", res.ExceptionDetails.Text)
	}
	return nil
}

// PrintDialog prints the current page to the configured PDF path.
func (s *RodSurface) PrintDialog(ctx context.Context) error {
	s.mu.Lock()
	page, out, closed := s.page, s.pdfPath, s.closed
	s.mu.Unlock()

	if closed {
		return ErrClosed
	}
	if out == "" {
		return fmt.Errorf("%w: no PDF output configured", ErrPrint)
	}
	if page == nil {
		return fmt.Errorf("%w: no page loaded", ErrPrint)
	}

	reader, err := page.Context(ctx).PDF(&proto.PagePrintToPDF{PrintBackground: true})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPrint, err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("%w: reading PDF stream: %v", ErrPrint, err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil { // #nosec G306 -- user output file
		return fmt.Errorf("%w: %v", ErrPrint, err)
	}

	logger(s.logger).Info("printed", "path", out, "bytes", len(data))
	return nil
}

// Close closes the browser, kills its process group and removes the
// current temporary page. Later calls on the surface return ErrClosed.
func (s *RodSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true

	var err error
	if s.browser != nil {
		err = s.browser.Close()
		s.browser = nil
		s.page = nil
	}
	if s.launch != nil {
		s.launch.Kill()
		s.launch = nil
	}
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
	return err
}

// Compile-time interface checks.
var (
	_ Surface        = (*RodSurface)(nil)
	_ ListenerSetter = (*RodSurface)(nil)
)
