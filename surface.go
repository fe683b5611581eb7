package mdpreview

import "context"

// Surface displays HTML. Implementations report a successful load to the
// attached LoadListener before LoadHTML returns; a failed load is returned
// as an error and not reported to the listener.
type Surface interface {
	LoadHTML(ctx context.Context, html, baseURI string) error
	RunScript(ctx context.Context, js string) error
	PrintDialog(ctx context.Context) error
	Close() error
}

// LoadListener receives load lifecycle events from a Surface.
type LoadListener interface {
	OnLoadFinished(ctx context.Context)
	OnLoadFailed(ctx context.Context, err error)
}

// ListenerSetter is implemented by surfaces that report load events.
// NewPreview attaches itself through it.
type ListenerSetter interface {
	SetLoadListener(l LoadListener)
}
