// Package server serves previews over HTTP with live reload.
//
// HTTPSurface implements mdpreview.Surface: every LoadHTML replaces the page
// served at "/", and browsers waiting on "/events" reload. Files next to the
// previewed document are served under "/doc/" so relative links and images
// resolve.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mdpreview "github.com/alnah/go-mdpreview"
	"github.com/alnah/go-mdpreview/internal/pipeline"
)

// DocPrefix is the URL path under which the document directory is served.
const DocPrefix = "/doc/"

// DefaultPollTimeout bounds one /events long-poll.
const DefaultPollTimeout = 25 * time.Second

// waitingPage is served before the first load.
const waitingPage = "<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>Markdown Preview</title></head>\n<body><p>Converting...</p></body>\n</html>\n"

// HTTPSurface is a Surface whose display is any browser pointed at Handler.
type HTTPSurface struct {
	logger      *slog.Logger
	gatherer    prometheus.Gatherer
	pollTimeout time.Duration

	mu       sync.Mutex
	page     string
	docDir   string
	scripts  []string
	print    bool
	version  uint64
	changed  chan struct{}
	closed   bool
	listener mdpreview.LoadListener
}

// Option configures an HTTPSurface.
type Option func(*HTTPSurface)

// WithLogger sets the request and surface logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *HTTPSurface) { s.logger = l }
}

// WithGatherer selects the registry exposed at /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *HTTPSurface) { s.gatherer = g }
}

// WithPollTimeout bounds how long /events holds a request open.
func WithPollTimeout(d time.Duration) Option {
	return func(s *HTTPSurface) {
		if d > 0 {
			s.pollTimeout = d
		}
	}
}

// New creates an empty surface.
func New(opts ...Option) *HTTPSurface {
	s := &HTTPSurface{
		pollTimeout: DefaultPollTimeout,
		gatherer:    prometheus.DefaultGatherer,
		page:        waitingPage,
		changed:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// SetLoadListener attaches the receiver of load events.
func (s *HTTPSurface) SetLoadListener(l mdpreview.LoadListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

// LoadHTML stores html as the served page and reports the load as finished.
// Relative links resolve against the directory of baseURI.
func (s *HTTPSurface) LoadHTML(ctx context.Context, html, baseURI string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	page, err := pipeline.InjectBaseHref(html, DocPrefix)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return mdpreview.ErrClosed
	}
	s.page = page
	s.docDir = docDir(baseURI)
	s.scripts = nil
	s.print = false
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		listener.OnLoadFinished(ctx)
	}
	s.bump()
	return nil
}

// RunScript adds js to the served page.
func (s *HTTPSurface) RunScript(_ context.Context, js string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return mdpreview.ErrClosed
	}
	s.scripts = append(s.scripts, js)
	return nil
}

// PrintDialog makes the next page view call window.print().
func (s *HTTPSurface) PrintDialog(context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return mdpreview.ErrClosed
	}
	s.print = true
	s.mu.Unlock()
	s.bump()
	return nil
}

// Close releases waiting pollers. Later loads fail with ErrClosed.
func (s *HTTPSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.changed)
	return nil
}

// Version returns the current page version.
func (s *HTTPSurface) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// bump increments the version and wakes pollers.
func (s *HTTPSurface) bump() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.version++
	close(s.changed)
	s.changed = make(chan struct{})
}

// Handler returns the HTTP routes of the surface.
func (s *HTTPSurface) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handlePage)
	r.Get("/events", s.handleEvents)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get(DocPrefix+"*", s.handleDoc)
	return r
}

func (s *HTTPSurface) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		if r.URL.Path == "/events" {
			return
		}
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

// handlePage serves the current document with its scripts and the reload
// client. A pending print request is consumed by the first view.
func (s *HTTPSurface) handlePage(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	page := s.page
	version := s.version
	var tail strings.Builder
	for _, js := range s.scripts {
		tail.WriteString(scriptTag(js))
	}
	if s.print {
		tail.WriteString(scriptTag("window.print();"))
		s.print = false
	}
	s.mu.Unlock()

	tail.WriteString(scriptTag(reloadScript(version)))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(pipeline.InjectBeforeBodyEnd(page, tail.String())))
}

type eventResponse struct {
	Version uint64 `json:"version"`
}

// handleEvents long-polls until the version differs from ?v, the poll
// timeout passes, or the client goes away.
func (s *HTTPSurface) handleEvents(w http.ResponseWriter, r *http.Request) {
	seen, err := strconv.ParseUint(r.URL.Query().Get("v"), 10, 64)
	if err != nil {
		http.Error(w, "invalid version", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	current, changed := s.version, s.changed
	s.mu.Unlock()

	if current == seen {
		timer := time.NewTimer(s.pollTimeout)
		defer timer.Stop()
		select {
		case <-changed:
		case <-timer.C:
		case <-r.Context().Done():
			return
		}
		current = s.Version()
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(eventResponse{Version: current}); err != nil {
		s.logger.Debug("events response encode failed", "error", err)
	}
}

// handleDoc serves files from the document directory.
func (s *HTTPSurface) handleDoc(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	dir := s.docDir
	s.mu.Unlock()
	if dir == "" {
		http.NotFound(w, r)
		return
	}
	http.StripPrefix(DocPrefix, http.FileServer(http.Dir(dir))).ServeHTTP(w, r)
}

// docDir returns the directory of a file:// URI, or "" for anything else.
func docDir(baseURI string) string {
	u, err := url.Parse(baseURI)
	if err != nil || u.Scheme != "file" || u.Path == "" {
		return ""
	}
	return filepath.Dir(filepath.FromSlash(u.Path))
}

// scriptTag wraps js in a script element. "</" is split so the code cannot
// close the element early.
func scriptTag(js string) string {
	return "<script>" + strings.ReplaceAll(js, "</", `<\/`) + "</script>\n"
}

// reloadScript polls /events and reloads the page when the version moves.
func reloadScript(version uint64) string {
	return fmt.Sprintf(`(function () {
  var v = %d;
  function poll() {
    fetch('/events?v=' + v, {cache: 'no-store'})
      .then(function (r) { return r.json(); })
      .then(function (d) { if (d.version !== v) { location.reload(); } else { poll(); } })
      .catch(function () { setTimeout(poll, 2000); });
  }
  poll();
})();`, version)
}

// Compile-time interface checks.
var (
	_ mdpreview.Surface        = (*HTTPSurface)(nil)
	_ mdpreview.ListenerSetter = (*HTTPSurface)(nil)
)
