package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	mdpreview "github.com/alnah/go-mdpreview"
	"github.com/alnah/go-mdpreview/internal/server"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// runServe serves a live preview of one file and reloads it on change.
func runServe(ctx context.Context, args []string, env *Environment) error {
	f, rest, err := parseCommandFlags("serve", args)
	if err != nil {
		return err
	}
	path, err := singleFile("serve", rest)
	if err != nil {
		return err
	}
	a, err := newApp(f, env)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = mdpreview.NewMetrics(reg)

	doc, err := mdpreview.NewFileDocument(path)
	if err != nil {
		return err
	}

	surface := server.New(server.WithLogger(a.logger), server.WithGatherer(reg))
	chain := a.chain()
	opts := a.previewOptions()

	// Each reload gets a fresh Preview on the shared surface. Previews are
	// not closed here: closing one would close the surface.
	reload := newReloader(func(ctx context.Context) error {
		preview := mdpreview.NewPreview(doc, surface, chain, opts...)
		if err := preview.Load(ctx); err != nil {
			return err
		}
		return preview.Wait(ctx)
	}, a.logger)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	dir := filepath.Dir(doc.Path())
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	ln, err := net.Listen("tcp", a.cfg.Serve.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Serve.Addr, err)
	}
	srv := &http.Server{Handler: surface.Handler(), ReadHeaderTimeout: readHeaderTimeout}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()
	go reload.Run(ctx)
	reload.Request()

	debounce := newDebouncer(debounceDelay, reload.Request)
	defer debounce.Stop()
	go watchDocument(ctx, watcher, doc.Basename(), debounce.Trigger, a.logger)

	a.logger.Info("serving preview", "url", "http://"+ln.Addr().String()+"/", "path", doc.Path())

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	}
	cancel()

	a.logger.Info("shutting down preview server")
	// Closing the surface releases pending long-polls before Shutdown waits on them.
	_ = surface.Close()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("HTTP server shutdown error", "error", err)
	}
	return runErr
}
