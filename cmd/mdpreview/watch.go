package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay collapses editor save bursts into one reload.
const debounceDelay = 300 * time.Millisecond

// debouncer calls fn once, delay after the last Trigger.
type debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
	fn    func()
}

func newDebouncer(delay time.Duration, fn func()) *debouncer {
	return &debouncer{delay: delay, fn: fn}
}

// Trigger restarts the delay.
func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

// Stop cancels a pending call.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// reloader runs one load at a time. Requests made while a load runs
// collapse into a single follow-up load.
type reloader struct {
	requests chan struct{}
	load     func(context.Context) error
	logger   *slog.Logger
}

func newReloader(load func(context.Context) error, logger *slog.Logger) *reloader {
	return &reloader{
		requests: make(chan struct{}, 1),
		load:     load,
		logger:   logger,
	}
}

// Request schedules a load without blocking.
func (r *reloader) Request() {
	select {
	case r.requests <- struct{}{}:
	default:
	}
}

// Run serves requests until ctx is done.
func (r *reloader) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.requests:
			start := time.Now()
			if err := r.load(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				r.logger.Warn("preview load failed", "error", err)
				continue
			}
			r.logger.Info("preview updated", "duration", time.Since(start))
		}
	}
}

// isDocumentEvent reports whether ev touches the watched file. Editors
// that save by rename surface as Create or Rename on the directory.
func isDocumentEvent(ev fsnotify.Event, base string) bool {
	if filepath.Base(ev.Name) != base {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// watchDocument forwards changes of base to trigger until ctx is done or
// the watcher closes.
func watchDocument(ctx context.Context, watcher *fsnotify.Watcher, base string, trigger func(), logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if isDocumentEvent(ev, base) {
				logger.Debug("file change detected", "path", ev.Name, "op", ev.Op.String())
				trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}
