package assets

import "errors"

// AssetResolver tries each source in order and moves on only when an asset
// is missing. Any other error stops the lookup.
type AssetResolver struct {
	sources []*FSLoader
}

// NewAssetResolver returns a resolver over the embedded assets, with dir
// consulted first when it is not empty.
func NewAssetResolver(dir string) (*AssetResolver, error) {
	r := &AssetResolver{}
	if dir != "" {
		custom, err := NewDirLoader(dir)
		if err != nil {
			return nil, err
		}
		r.sources = append(r.sources, custom)
	}
	r.sources = append(r.sources, NewEmbeddedLoader())
	return r, nil
}

// LoadStyle returns the first styles/<name>.css found.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.first(func(l *FSLoader) (string, error) { return l.LoadStyle(name) })
}

// LoadTemplate returns the first templates/<name>.html found.
func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.first(func(l *FSLoader) (string, error) { return l.LoadTemplate(name) })
}

func (r *AssetResolver) first(load func(*FSLoader) (string, error)) (string, error) {
	var err error
	for _, src := range r.sources {
		var content string
		content, err = load(src)
		if !errors.Is(err, ErrAssetNotFound) {
			return content, err
		}
	}
	return "", err
}

// HasOverrides reports whether a directory source is configured.
func (r *AssetResolver) HasOverrides() bool {
	return len(r.sources) > 1
}

// Close releases every directory source.
func (r *AssetResolver) Close() error {
	var errs []error
	for _, src := range r.sources {
		errs = append(errs, src.Close())
	}
	return errors.Join(errs...)
}

var _ AssetLoader = (*AssetResolver)(nil)
