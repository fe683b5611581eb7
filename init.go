package mdpreview

import (
	"sync"
	"sync/atomic"
)

// InitOptions configures process-wide behavior. The zero value keeps the
// browser sandbox enabled.
type InitOptions struct {
	DisableSandbox bool
}

var (
	initOnce        sync.Once
	sandboxDisabled atomic.Bool
)

// Init applies opts once per process. Later calls are no-ops.
func Init(opts InitOptions) {
	initOnce.Do(func() {
		sandboxDisabled.Store(opts.DisableSandbox)
	})
}

// SandboxEnabled reports whether browsers launch with their sandbox.
func SandboxEnabled() bool {
	return !sandboxDisabled.Load()
}
