package cache

// ScopedKeyer wraps a Keyer with a prefix so independent runs can share
// one cache directory without colliding. Batch runs scope per input
// image; interactive preview sessions scope per session.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "batch:ch01:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SourceKey generates a prefixed key for base image caching.
func (k *ScopedKeyer) SourceKey(path string, opts SourceKeyOpts) string {
	return k.prefix + k.inner.SourceKey(path, opts)
}

// PreviewKey generates a prefixed key for preview artifact caching.
func (k *ScopedKeyer) PreviewKey(sourceKey string, opts PreviewKeyOpts) string {
	return k.prefix + k.inner.PreviewKey(sourceKey, opts)
}

// TemplateKey generates a prefixed key for template sheet caching.
func (k *ScopedKeyer) TemplateKey(paper, orientation string, dpi float64) string {
	return k.prefix + k.inner.TemplateKey(paper, orientation, dpi)
}
